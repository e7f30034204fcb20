package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// ProjectBackend is the part of the backend the review workspace needs.
type ProjectBackend interface {
	ListProjects(ctx context.Context) ([]rfp.Project, error)
	GetProject(ctx context.Context, projectID string) (rfp.Project, error)
	UpdateQuestionAnswer(ctx context.Context, projectID, questionID, text string) (rfp.Question, error)
	RephraseAnswer(ctx context.Context, projectID, questionID string, req sdk.RephraseRequest) (string, error)
}

// UploadBackend accepts document and project uploads.
type UploadBackend interface {
	UploadFiles(ctx context.Context, files []sdk.UploadFile, opts sdk.UploadOptions) (*sdk.UploadResult, error)
	UploadProject(ctx context.Context, file sdk.UploadFile, name string) (rfp.Project, error)
}

// ExportBackend renders project exports.
type ExportBackend interface {
	ExportProject(ctx context.Context, projectID, format string) (*sdk.ExportFile, error)
}

// LibraryBackend reads the knowledge base and account usage.
type LibraryBackend interface {
	ListDocuments(ctx context.Context) ([]rfp.Document, error)
	ListAttributes(ctx context.Context) ([]rfp.Attribute, error)
	UsageStats(ctx context.Context) (rfp.UsageStats, error)
	DeleteEntity(ctx context.Context, entity sdk.Entity, id string) error
}

// Backend is everything the application layer calls remotely. *sdk.Client
// implements it.
type Backend interface {
	ProjectBackend
	UploadBackend
	ExportBackend
	LibraryBackend
}

var _ Backend = (*sdk.Client)(nil)

// orgScoped keys cached reads by the organization of each request.
func orgScoped(c *cache.Cache, logger *slog.Logger) *cache.Cache {
	if c == nil {
		c = cache.New(cache.Noop{}, "", 0, logger)
	}
	return c.WithScope(sdk.OrganizationFrom)
}
