package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/config"
	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/logging"
	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/wiring"
)

// session bundles what a command needs to talk to the backend.
type session struct {
	*wiring.AppServices
	ctx context.Context
	log *logging.Logger
}

func (s *session) close() {
	_ = s.AppServices.Close()
	_ = s.log.Close()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, NewCLIError("invalid configuration", "Run 'rfpdesk config show' to inspect settings", err)
	}
	return cfg, nil
}

// openSession loads config, the logger and the services for one command.
// The caller must close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logging.New(logging.Options{Level: level, File: logFile, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, loadErr := wiring.BuildAppServices(ctx, cfg, log.Logger)
	if services == nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", loadErr)
	}

	return &session{AppServices: services, ctx: services.Context(ctx), log: log}, nil
}
