package wiring

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/config"
	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// AppServices exposes the application layer services wired to one backend.
type AppServices struct {
	Config  *config.Config
	Client  *sdk.Client
	Cache   *cache.Cache
	Library *application.LibraryService
	Uploads *application.UploadService
	Exports *application.ExportService
	Logger  *slog.Logger

	store cache.Store
}

// BuildAppServices constructs the client, cache and services for cfg. When
// the configured cache backend is unreachable the services fall back to the
// in-memory cache and the returned error explains why; services are usable
// in that case.
func BuildAppServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := sdk.NewClient(cfg.APIURL, cfg.TokenSource(),
		sdk.WithTimeout(cfg.HTTPTimeout()),
		sdk.WithRetry(cfg.RetryMaxAttempts, cfg.RetryBaseDelay()),
		sdk.WithLogger(logger.With("component", "sdk")),
	)
	if err != nil {
		return nil, err
	}

	var loadErr error
	store, err := cache.Open(ctx, cfg.Cache.Backend, cfg.Cache.RedisURL)
	if err != nil {
		loadErr = fmt.Errorf("cache fallback to memory: %w", err)
		logger.Warn("cache backend unavailable", "backend", cfg.Cache.Backend, "error", err)
		store = cache.NewMemory()
	}
	c := cache.New(store, cfg.Organization, cfg.CacheTTL(), logger.With("component", "cache")).WithScope(sdk.OrganizationFrom)

	return &AppServices{
		Config:  cfg,
		Client:  client,
		Cache:   c,
		Library: application.NewLibraryService(client, client, c, logger),
		Uploads: application.NewUploadService(client, c, logger),
		Exports: application.NewExportService(client, client, c, cfg.ExportDir, logger),
		Logger:  logger,
		store:   store,
	}, loadErr
}

// Context scopes ctx to the configured organization.
func (s *AppServices) Context(ctx context.Context) context.Context {
	return sdk.WithOrganization(ctx, s.Config.Organization)
}

// NewWorkspace starts a review session using the configured page size and
// trust thresholds.
func (s *AppServices) NewWorkspace() (*application.Workspace, error) {
	return application.NewWorkspace(s.Client, s.Cache, application.WorkspaceConfig{
		PageSize:   s.Config.PageSize,
		Thresholds: s.Config.Trust,
	}, s.Logger)
}

// Close releases the cache connection.
func (s *AppServices) Close() error {
	if closer, ok := s.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
