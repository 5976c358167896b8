package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

var (
	askUser   string
	askTenant string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get a cited answer",
	Long: `Run one question through the full pipeline: license check, document
search, section selection, bounded excerpt extraction and answer
composition. The audit record is written like any other request.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "requesting user id (required)")
	askCmd.Flags().StringVarP(&askTenant, "tenant", "t", "", "requesting tenant id (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.MarkFlagRequired("user")   //nolint:errcheck
	askCmd.MarkFlagRequired("tenant") //nolint:errcheck
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
	}
	if askService == nil {
		return errors.New("ask service not configured")
	}

	answer, err := askService.Ask(cmd.Context(), domain.Query{
		Text:   args[0],
		User:   askUser,
		Tenant: askTenant,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	payload := struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Title       string `json:"title"`
			DocID       string `json:"docId"`
			Excerpt     string `json:"excerpt"`
			CitationURL string `json:"citationUrl"`
		} `json:"sources"`
		Meta struct {
			TTFAMs       int64 `json:"ttfaMs"`
			ExcerptTotal int   `json:"excerptTotal"`
			Degraded     bool  `json:"degraded,omitempty"`
		} `json:"meta"`
	}{Answer: answer.Text}

	for _, src := range answer.Sources {
		payload.Sources = append(payload.Sources, struct {
			Title       string `json:"title"`
			DocID       string `json:"docId"`
			Excerpt     string `json:"excerpt"`
			CitationURL string `json:"citationUrl"`
		}{src.Title, src.DocID, src.Excerpt, src.CitationURL})
	}
	payload.Meta.TTFAMs = answer.Meta.TTFAMs
	payload.Meta.ExcerptTotal = answer.Meta.ExcerptTotal
	payload.Meta.Degraded = answer.Meta.Degraded

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%s)\n", i+1, src.Title, src.DocID)
			cmd.Printf("      %s\n", src.CitationURL)
		}
	}

	cmd.Println()
	cmd.Printf("ttfa=%dms excerptTotal=%d", answer.Meta.TTFAMs, answer.Meta.ExcerptTotal)
	if answer.Meta.Degraded {
		cmd.Printf(" degraded=true")
	}
	cmd.Println()
	return nil
}
