package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// LibraryService serves the cached list reads and deletions.
type LibraryService struct {
	projects ProjectBackend
	library  LibraryBackend
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewLibraryService(projects ProjectBackend, library LibraryBackend, c *cache.Cache, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c = orgScoped(c, logger)
	return &LibraryService{projects: projects, library: library, cache: c, logger: logger.With("component", "library")}
}

// Projects lists all projects.
func (s *LibraryService) Projects(ctx context.Context) ([]rfp.Project, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyProjects, s.projects.ListProjects)
}

// Project returns one project with its questions.
func (s *LibraryService) Project(ctx context.Context, projectID string) (rfp.Project, error) {
	return cache.Fetch(ctx, s.cache, cache.ProjectKey(projectID), func(ctx context.Context) (rfp.Project, error) {
		return s.projects.GetProject(ctx, projectID)
	})
}

// Documents lists the knowledge-base documents.
func (s *LibraryService) Documents(ctx context.Context) ([]rfp.Document, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyDocuments, s.library.ListDocuments)
}

// Attributes lists the knowledge-base attributes.
func (s *LibraryService) Attributes(ctx context.Context) ([]rfp.Attribute, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyAttributes, s.library.ListAttributes)
}

// Usage returns the monthly usage summary.
func (s *LibraryService) Usage(ctx context.Context) (rfp.UsageStats, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyUsageStats, s.library.UsageStats)
}

// Delete removes a record and invalidates the reads it appears in.
func (s *LibraryService) Delete(ctx context.Context, entity sdk.Entity, id string) error {
	if err := s.library.DeleteEntity(ctx, entity, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", entity, id, err)
	}
	switch entity {
	case sdk.EntityProject:
		s.cache.Invalidate(ctx, cache.KeyProjects, cache.ProjectKey(id), cache.KeyUsageStats)
	case sdk.EntityDocument:
		s.cache.Invalidate(ctx, cache.KeyDocuments, cache.KeyUsageStats)
	case sdk.EntityAttribute:
		s.cache.Invalidate(ctx, cache.KeyAttributes)
	}
	s.logger.Info("deleted", "entity", entity, "id", id)
	return nil
}
