package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

var (
	// ErrNoFiles indicates an upload without files.
	ErrNoFiles = errors.New("no files selected")

	// ErrDuplicateFile indicates two files with the same name in one batch.
	ErrDuplicateFile = errors.New("duplicate file name")
)

// UploadFile is one file of a batch.
type UploadFile struct {
	Name string
	Data []byte
}

// LoadUploadFiles reads files from disk, naming each by its base name.
func LoadUploadFiles(paths []string) ([]UploadFile, error) {
	files := make([]UploadFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, UploadFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// UploadMetadata applies to every file of a batch.
type UploadMetadata struct {
	DocType rfp.DocType
	Tags    []string
}

// FailedUpload is a file the backend did not accept.
type FailedUpload struct {
	Name   string
	Reason string
}

// BatchResult accounts for every file of one submission. Succeeded and
// Failed are disjoint and keep submission order.
type BatchResult struct {
	Submitted []string
	Succeeded []string
	Failed    []FailedUpload
	pending   []UploadFile
}

// AllFailed reports whether nothing was accepted.
func (r *BatchResult) AllFailed() bool {
	return len(r.Succeeded) == 0
}

// ShouldNavigate reports whether the form can be left: at least one file
// was accepted.
func (r *BatchResult) ShouldNavigate() bool {
	return len(r.Succeeded) > 0
}

// Pending returns the files that were not accepted, for resubmission.
func (r *BatchResult) Pending() []UploadFile {
	out := make([]UploadFile, len(r.pending))
	copy(out, r.pending)
	return out
}

// Summary is a one-line outcome for the reviewer.
func (r *BatchResult) Summary() string {
	switch {
	case len(r.Failed) == 0:
		return fmt.Sprintf("Uploaded %d file(s)", len(r.Succeeded))
	case r.AllFailed():
		return fmt.Sprintf("All %d file(s) failed to upload", len(r.Failed))
	default:
		return fmt.Sprintf("Uploaded %d file(s), %d failed", len(r.Succeeded), len(r.Failed))
	}
}

// UploadService submits knowledge-base and RFP uploads.
type UploadService struct {
	backend UploadBackend
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewUploadService(backend UploadBackend, c *cache.Cache, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c = orgScoped(c, logger)
	return &UploadService{backend: backend, cache: c, logger: logger.With("component", "upload")}
}

// ValidateBatch rejects empty batches and repeated names before any request.
func ValidateBatch(files []UploadFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return errors.New("upload file without a name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Submit sends files as one request. A partial failure is not an error: the
// result says which files were accepted. An error means the request itself
// failed and nothing was accepted.
func (s *UploadService) Submit(ctx context.Context, files []UploadFile, meta UploadMetadata) (*BatchResult, error) {
	if err := ValidateBatch(files); err != nil {
		return nil, err
	}
	docType := meta.DocType
	if docType == "" {
		docType = rfp.DocOther
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: %s", rfp.ErrUnknownDocType, docType)
	}

	req := make([]sdk.UploadFile, len(files))
	for i, f := range files {
		req[i] = sdk.UploadFile{Name: f.Name, Data: f.Data}
	}
	res, err := s.backend.UploadFiles(ctx, req, sdk.UploadOptions{DocType: docType, Tags: cleanTags(meta.Tags)})
	if err != nil {
		s.logger.Warn("upload request failed", "files", len(files), "error", err)
		return nil, fmt.Errorf("upload files: %w", err)
	}

	result := s.account(files, res)
	if result.ShouldNavigate() {
		s.cache.Invalidate(ctx, cache.KeyDocuments, cache.KeyUsageStats)
	}
	s.logger.Info("upload finished", "submitted", len(files), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

func (s *UploadService) account(files []UploadFile, res *sdk.UploadResult) *BatchResult {
	submitted := make(map[string]struct{}, len(files))
	for _, f := range files {
		submitted[f.Name] = struct{}{}
	}
	ok := make(map[string]struct{}, len(res.Uploaded))
	for _, u := range res.Uploaded {
		if _, known := submitted[u.Filename]; !known {
			s.logger.Warn("backend reported an unknown upload", "filename", u.Filename)
			continue
		}
		ok[u.Filename] = struct{}{}
	}
	reasons := make(map[string]string, len(res.Failed))
	for _, f := range res.Failed {
		if _, known := submitted[f.Filename]; !known {
			s.logger.Warn("backend reported an unknown failure", "filename", f.Filename)
			continue
		}
		reasons[f.Filename] = f.Error
	}

	result := &BatchResult{Submitted: make([]string, 0, len(files))}
	for _, f := range files {
		result.Submitted = append(result.Submitted, f.Name)
		if _, accepted := ok[f.Name]; accepted {
			if _, alsoFailed := reasons[f.Name]; alsoFailed {
				s.logger.Warn("backend reported a file as both uploaded and failed", "filename", f.Name)
			}
			result.Succeeded = append(result.Succeeded, f.Name)
			continue
		}
		reason, reported := reasons[f.Name]
		if !reported {
			reason = "not reported by server"
		} else if reason == "" {
			reason = "rejected by server"
		}
		result.Failed = append(result.Failed, FailedUpload{Name: f.Name, Reason: reason})
		result.pending = append(result.pending, f)
	}
	return result
}

// UploadProject uploads an RFP for question extraction.
func (s *UploadService) UploadProject(ctx context.Context, file UploadFile, name string) (rfp.Project, error) {
	if strings.TrimSpace(file.Name) == "" || len(file.Data) == 0 {
		return rfp.Project{}, ErrNoFiles
	}
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	}
	project, err := s.backend.UploadProject(ctx, sdk.UploadFile{Name: file.Name, Data: file.Data}, name)
	if err != nil {
		return rfp.Project{}, fmt.Errorf("upload project: %w", err)
	}
	s.cache.Invalidate(ctx, cache.KeyProjects, cache.KeyUsageStats)
	s.logger.Info("project uploaded", "project", project.ID, "name", project.Name)
	return project, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
