package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// MockBackend is an in-memory Backend. Gates, when set, block the matching
// call until closed so tests can interleave operations.
type MockBackend struct {
	mu sync.Mutex

	Project    rfp.Project
	GetErr     error
	GetCalls   int
	Saves      []string
	SaveErr    error
	SaveGate   chan struct{}
	SaveStart  chan struct{}
	Rephrased  string
	RephErr    error
	RephGate   chan struct{}
	RephStart  chan struct{}
	RephCalls  int
	Upload     *sdk.UploadResult
	UploadErr  error
	UploadReqs [][]sdk.UploadFile
	UploadOpts sdk.UploadOptions
	Export     *sdk.ExportFile
	ExportErr  error
	Deleted    []string
}

func (m *MockBackend) ListProjects(ctx context.Context) ([]rfp.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []rfp.Project{m.Project}, m.GetErr
}

func (m *MockBackend) GetProject(ctx context.Context, id string) (rfp.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return rfp.Project{}, m.GetErr
	}
	if id != m.Project.ID {
		return rfp.Project{}, fmt.Errorf("project %s: %w", id, sdk.ErrNotFound)
	}
	p := m.Project
	p.Questions = append([]rfp.Question(nil), m.Project.Questions...)
	return p, nil
}

func (m *MockBackend) UpdateQuestionAnswer(ctx context.Context, projectID, questionID, text string) (rfp.Question, error) {
	m.mu.Lock()
	gate, start := m.SaveGate, m.SaveStart
	m.Saves = append(m.Saves, text)
	m.mu.Unlock()
	if start != nil {
		start <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return rfp.Question{}, m.SaveErr
	}
	for i := range m.Project.Questions {
		q := &m.Project.Questions[i]
		if q.ID == questionID {
			saved := text
			q.Answer = &saved
			q.UserEdited = true
			return *q, nil
		}
	}
	return rfp.Question{}, sdk.ErrNotFound
}

func (m *MockBackend) RephraseAnswer(ctx context.Context, projectID, questionID string, req sdk.RephraseRequest) (string, error) {
	m.mu.Lock()
	gate, start := m.RephGate, m.RephStart
	m.RephCalls++
	m.mu.Unlock()
	if start != nil {
		start <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rephrased, m.RephErr
}

func (m *MockBackend) UploadFiles(ctx context.Context, files []sdk.UploadFile, opts sdk.UploadOptions) (*sdk.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadReqs = append(m.UploadReqs, files)
	m.UploadOpts = opts
	return m.Upload, m.UploadErr
}

func (m *MockBackend) UploadProject(ctx context.Context, file sdk.UploadFile, name string) (rfp.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return rfp.Project{}, m.UploadErr
	}
	return rfp.Project{ID: "new", Name: name, Status: rfp.StatusProcessing}, nil
}

func (m *MockBackend) ExportProject(ctx context.Context, projectID, format string) (*sdk.ExportFile, error) {
	return m.Export, m.ExportErr
}

func (m *MockBackend) ListDocuments(ctx context.Context) ([]rfp.Document, error) {
	return nil, nil
}

func (m *MockBackend) ListAttributes(ctx context.Context) ([]rfp.Attribute, error) {
	return nil, nil
}

func (m *MockBackend) UsageStats(ctx context.Context) (rfp.UsageStats, error) {
	return rfp.UsageStats{}, nil
}

func (m *MockBackend) DeleteEntity(ctx context.Context, entity sdk.Entity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, string(entity)+"/"+id)
	return nil
}

func (m *MockBackend) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saves)
}

func strPtr(s string) *string { return &s }

// newProject builds a project with n questions q1..qn answered "answer i".
func newProject(n int) rfp.Project {
	p := rfp.Project{ID: "p1", Name: "Acme RFP", Status: rfp.StatusCompleted}
	for i := 1; i <= n; i++ {
		p.Questions = append(p.Questions, rfp.Question{
			ID:         fmt.Sprintf("q%d", i),
			Text:       fmt.Sprintf("question %d", i),
			Answer:     strPtr(fmt.Sprintf("answer %d", i)),
			TrustScore: 0.8,
		})
	}
	return p
}
