package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/a2a"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve valuation requests from other agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		handler := newServeHandler(env.Runner)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("agent", cfg.A2A.AgentName),
			zap.Bool("a2a_enabled", cfg.A2A.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newServeHandler wires the A2A service around r using cfg.
func newServeHandler(r a2a.Runner) http.Handler {
	svc := a2a.NewService(r, cfg.A2A.AgentName, a2a.WithConfidenceThreshold(confidenceThreshold()))
	return a2a.NewServer(svc, cfg.A2A, cfg.Server).Handler()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
