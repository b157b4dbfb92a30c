package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/provider"
	"github.com/majorcontext/sluice/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveSource string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve model invocations over HTTP",
	Long: `Serve POST /generate backed by one credential source.

Request:   {"prompt": "...", "model_id": "amazon.titan-text-express-v1"}
Response:  {"output_text": "..."}

Failed invocations return 502; details are in the server log. Requests are
rate limited per serve.rate_limit / serve.burst. GET /health reports status.

Examples:
  sluice serve
  sluice serve --source roles-anywhere --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSource, "source", "task-role", "credential source (task-role, roles-anywhere)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8085)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	src, err := provider.Lookup(serveSource)
	if err != nil {
		return err
	}

	serveCfg := cfg.Serve
	if serveAddr != "" {
		serveCfg.Addr = serveAddr
	}

	history := openHistory(cfg)
	if history != nil {
		defer history.Close()
	}

	r := newResponder(cfg, src, history)
	defer r.Close()

	s := server.New(serveCfg, r, src.Name())
	if err := s.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	// Serve loop; a nil error means Stop was called.
	eg.Go(func() error {
		return <-s.Done()
	})

	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	})

	return eg.Wait()
}
