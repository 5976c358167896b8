package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered document providers",
	RunE:  runProviders,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List documents in the catalog",
	RunE:  runDocuments,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runProviders(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
	}
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	for _, id := range adminService.Providers() {
		cmd.Println(id)
	}
	return nil
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
	}
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	docs, err := adminService.Documents(cmd.Context())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents in the catalog.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %s", doc.ID, doc.Title)
		if len(doc.Tags) > 0 {
			cmd.Printf("  [%s]", strings.Join(doc.Tags, ", "))
		}
		cmd.Printf("  (%d sections)\n", len(doc.Sections))
	}
	return nil
}
