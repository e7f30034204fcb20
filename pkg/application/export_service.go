package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

// ErrUnknownFormat indicates an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export rendering.
type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatDocument    Format = "docx"
	FormatPDF         Format = "pdf"
)

// AllFormats returns the supported formats.
func AllFormats() []Format {
	return []Format{FormatSpreadsheet, FormatDocument, FormatPDF}
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "xlsx", "spreadsheet", "excel":
		return FormatSpreadsheet, nil
	case "docx", "document", "word":
		return FormatDocument, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q (want xlsx, docx or pdf)", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// DisplayName returns a human-readable name.
func (f Format) DisplayName() string {
	switch f {
	case FormatSpreadsheet:
		return "Excel"
	case FormatDocument:
		return "Word"
	case FormatPDF:
		return "PDF"
	default:
		return string(f)
	}
}

// ExportResult describes a written export.
type ExportResult struct {
	Path   string
	Format Format
	Bytes  int64
}

// ExportService downloads project exports into a directory.
type ExportService struct {
	backend  ExportBackend
	projects ProjectBackend
	cache    *cache.Cache
	dir      string
	logger   *slog.Logger
}

// NewExportService writes exports into dir. projects is used only to name
// files when the backend suggests no filename and may be nil.
func NewExportService(backend ExportBackend, projects ProjectBackend, c *cache.Cache, dir string, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c = orgScoped(c, logger)
	if dir == "" {
		dir = "."
	}
	return &ExportService{backend: backend, projects: projects, cache: c, dir: dir, logger: logger.With("component", "export")}
}

// WithDir returns a copy of the service that writes into dir.
func (s *ExportService) WithDir(dir string) *ExportService {
	c := *s
	c.dir = dir
	return &c
}

// Export renders a project and saves it. Nothing is retained between calls;
// a failed export leaves no partial file behind.
func (s *ExportService) Export(ctx context.Context, projectID string, format Format) (*ExportResult, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	file, err := s.backend.ExportProject(ctx, projectID, format.Extension())
	if err != nil {
		s.logger.Warn("export failed", "project", projectID, "format", format, "error", err)
		return nil, fmt.Errorf("export %s as %s: %w", projectID, format.DisplayName(), err)
	}

	name := file.Filename
	if name == "" {
		name = s.projectName(ctx, projectID)
	}
	path := filepath.Join(s.dir, ExportFilename(name, format))

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	n, err := writeAtomic(s.dir, path, file.Data)
	if err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}
	s.logger.Info("export written", "project", projectID, "format", format, "path", path, "bytes", n)
	return &ExportResult{Path: path, Format: format, Bytes: n}, nil
}

func (s *ExportService) projectName(ctx context.Context, projectID string) string {
	if s.projects == nil {
		return projectID
	}
	project, err := cache.Fetch(ctx, s.cache, cache.ProjectKey(projectID), func(ctx context.Context) (rfp.Project, error) {
		return s.projects.GetProject(ctx, projectID)
	})
	if err != nil || strings.TrimSpace(project.Name) == "" {
		return projectID
	}
	return project.Name
}

// ExportFilename returns a safe file name for name with the format's
// extension.
func ExportFilename(name string, format Format) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := "." + format.Extension()
	if strings.EqualFold(filepath.Ext(name), ext) {
		name = name[:len(name)-len(ext)]
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = "export"
	}
	return name + ext
}

func writeAtomic(dir, path string, data []byte) (int64, error) {
	tmp, err := os.CreateTemp(dir, ".rfpdesk-export-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	n, err := tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	return int64(n), nil
}
