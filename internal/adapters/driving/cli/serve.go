package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/eldin/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/eldin/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway serving the ask pipeline.

Endpoints:
  POST /ask     answer a question with cited excerpts
  GET  /health  liveness probe

License grants are hot-reloaded from the grants file while serving.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	addr := serveAddr
	if addr == "" {
		addr = a.config.GetString("http.addr")
	}
	if addr == "" {
		addr = defaultHTTPAddr
	}

	var opts []httpapi.Option
	if rps := a.config.GetFloat("http.rate_per_second"); rps > 0 {
		burst := a.config.GetInt("http.burst")
		if burst <= 0 {
			burst = httpapi.DefaultBurst
		}
		opts = append(opts, httpapi.WithRateLimit(rps, burst))
	}
	server := httpapi.NewServer(a.gateway, opts...)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		if err := a.guard.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("license grants watcher stopped: %v", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "eldin gateway listening on %s\n", addr)
	return server.Run(ctx, addr)
}
