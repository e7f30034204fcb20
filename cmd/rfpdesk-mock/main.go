// Command rfpdesk-mock serves an in-memory rfpdesk backend seeded with demo
// data, for trying the CLI and review screen without a real server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/logging"
	"github.com/felixgeelhaar/rfpdesk/internal/mockapi"
)

var (
	addr      string
	token     string
	questions int
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "rfpdesk-mock",
	Short: "Run an in-memory rfpdesk backend with demo data",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func newServer(log *logging.Logger) (*mockapi.Server, *http.Server) {
	gin.SetMode(gin.ReleaseMode)
	opts := []mockapi.Option{mockapi.WithLogger(log.Logger)}
	if token != "" {
		opts = append(opts, mockapi.WithToken(token))
	}
	backend := mockapi.New(opts...)
	return backend, &http.Server{
		Addr:         addr,
		Handler:      backend.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.New(logging.Options{Level: logLevel, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer log.Close()

	backend, srv := newServer(log)
	project := backend.SeedDemo(questions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on %s\nDemo project: %s (%d questions)\n", addr, project.ID, questions)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	rootCmd.Flags().StringVar(&token, "token", "", "Require this bearer token (any token when empty)")
	rootCmd.Flags().IntVar(&questions, "questions", 30, "Questions in the demo project")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
