package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

func threeFiles() []application.UploadFile {
	return []application.UploadFile{
		{Name: "a.pdf", Data: []byte("a")},
		{Name: "b.pdf", Data: []byte("b")},
		{Name: "c.pdf", Data: []byte("c")},
	}
}

func seededCache(t *testing.T) (*cache.Cache, *cache.Memory) {
	t.Helper()
	store := cache.NewMemory()
	c := cache.New(store, "org-1", time.Minute, nil)
	for _, k := range []string{cache.KeyDocuments, cache.KeyUsageStats, cache.KeyProjects} {
		if err := cache.Put(context.Background(), c, k, "cached"); err != nil {
			t.Fatal(err)
		}
	}
	return c, store
}

func TestUploadService_PartialFailure(t *testing.T) {
	backend := &MockBackend{Upload: &sdk.UploadResult{
		Uploaded: []sdk.UploadedFile{{Filename: "a.pdf"}, {Filename: "c.pdf"}},
		Failed:   []sdk.FailedFile{{Filename: "b.pdf", Error: "unsupported"}},
	}}
	c, store := seededCache(t)
	svc := application.NewUploadService(backend, c, nil)

	res, err := svc.Submit(context.Background(), threeFiles(), application.UploadMetadata{DocType: rfp.DocReport, Tags: []string{" q3 ", ""}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(backend.UploadReqs) != 1 || len(backend.UploadReqs[0]) != 3 {
		t.Fatalf("requests = %v", backend.UploadReqs)
	}
	if backend.UploadOpts.DocType != rfp.DocReport || len(backend.UploadOpts.Tags) != 1 || backend.UploadOpts.Tags[0] != "q3" {
		t.Errorf("options = %+v", backend.UploadOpts)
	}
	if len(res.Succeeded) != 2 || res.Succeeded[0] != "a.pdf" || res.Succeeded[1] != "c.pdf" {
		t.Errorf("succeeded = %v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].Name != "b.pdf" || res.Failed[0].Reason != "unsupported" {
		t.Errorf("failed = %v", res.Failed)
	}
	if !res.ShouldNavigate() || res.AllFailed() {
		t.Error("partial success should navigate")
	}
	if pending := res.Pending(); len(pending) != 1 || pending[0].Name != "b.pdf" {
		t.Errorf("pending = %v", pending)
	}
	if store.Len() != 1 {
		t.Errorf("cache entries = %d, want only projects left", store.Len())
	}
	if res.Summary() != "Uploaded 2 file(s), 1 failed" {
		t.Errorf("summary = %q", res.Summary())
	}
}

func TestUploadService_AllFailed(t *testing.T) {
	backend := &MockBackend{Upload: &sdk.UploadResult{
		Failed: []sdk.FailedFile{{Filename: "a.pdf"}, {Filename: "b.pdf"}, {Filename: "c.pdf"}},
	}}
	c, store := seededCache(t)
	svc := application.NewUploadService(backend, c, nil)

	res, err := svc.Submit(context.Background(), threeFiles(), application.UploadMetadata{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.AllFailed() || res.ShouldNavigate() {
		t.Error("all failed should stay on the form")
	}
	if len(res.Pending()) != 3 {
		t.Errorf("pending = %d", len(res.Pending()))
	}
	if store.Len() != 3 {
		t.Errorf("cache invalidated on total failure")
	}
	if backend.UploadOpts.DocType != rfp.DocOther {
		t.Errorf("default doc type = %q", backend.UploadOpts.DocType)
	}
}

func TestUploadService_UnreportedFilesCountAsFailed(t *testing.T) {
	backend := &MockBackend{Upload: &sdk.UploadResult{
		Uploaded: []sdk.UploadedFile{{Filename: "a.pdf"}, {Filename: "ghost.pdf"}},
	}}
	svc := application.NewUploadService(backend, nil, nil)

	res, err := svc.Submit(context.Background(), threeFiles(), application.UploadMetadata{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Succeeded) != 1 || len(res.Failed) != 2 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Submitted) != 3 {
		t.Errorf("submitted = %v", res.Submitted)
	}
}

func TestUploadService_Validation(t *testing.T) {
	backend := &MockBackend{}
	svc := application.NewUploadService(backend, nil, nil)

	if _, err := svc.Submit(context.Background(), nil, application.UploadMetadata{}); !errors.Is(err, application.ErrNoFiles) {
		t.Errorf("no files: %v", err)
	}
	dup := []application.UploadFile{{Name: "a.pdf"}, {Name: "a.pdf"}}
	if _, err := svc.Submit(context.Background(), dup, application.UploadMetadata{}); !errors.Is(err, application.ErrDuplicateFile) {
		t.Errorf("duplicate: %v", err)
	}
	if len(backend.UploadReqs) != 0 {
		t.Error("validation failure reached the backend")
	}
}

func TestUploadService_TransportFailure(t *testing.T) {
	backend := &MockBackend{UploadErr: errors.New("connection reset")}
	c, store := seededCache(t)
	svc := application.NewUploadService(backend, c, nil)

	res, err := svc.Submit(context.Background(), threeFiles(), application.UploadMetadata{})
	if err == nil || res != nil {
		t.Fatalf("Submit = %v, %v", res, err)
	}
	if store.Len() != 3 {
		t.Error("cache invalidated on transport failure")
	}
}

func TestUploadService_UploadProject(t *testing.T) {
	backend := &MockBackend{}
	svc := application.NewUploadService(backend, nil, nil)

	p, err := svc.UploadProject(context.Background(), application.UploadFile{Name: "acme-rfp.pdf", Data: []byte("x")}, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "acme-rfp" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestLoadUploadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o600); err != nil {
		t.Fatal(err)
	}
	files, err := application.LoadUploadFiles([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if files[0].Name != "policy.pdf" || string(files[0].Data) != "pdf" {
		t.Errorf("files = %+v", files)
	}
	if _, err := application.LoadUploadFiles([]string{filepath.Join(dir, "missing.pdf")}); err == nil {
		t.Error("expected error for missing file")
	}
}
