package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/draft"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
)

var (
	// ErrNoProject indicates no project has been opened.
	ErrNoProject = errors.New("no project open")

	// ErrQuestionNotFound indicates the question is not part of the open project.
	ErrQuestionNotFound = errors.New("question not found")

	ErrNoDraft        = draft.ErrNoDraft
	ErrNothingToSave  = draft.ErrNothingToSave
	ErrSaveInProgress = draft.ErrSaveInProgress
)

// WorkspaceConfig tunes the review workspace.
type WorkspaceConfig struct {
	PageSize   int
	Thresholds trust.Thresholds
}

// DefaultWorkspaceConfig returns a page size of 25 and the default trust tiers.
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{PageSize: listing.DefaultPageSize, Thresholds: trust.DefaultThresholds()}
}

// Workspace is one reviewer's editing session over a project. It holds the
// question list and at most one Draft. Methods are safe for concurrent use;
// remote calls run without holding the lock and their results are dropped
// when the session moved on in the meantime.
type Workspace struct {
	backend ProjectBackend
	cache   *cache.Cache
	cfg     WorkspaceConfig
	logger  *slog.Logger

	mu           sync.Mutex
	machine      *draft.Machine
	project      rfp.Project
	loaded       bool
	draft        draft.Draft
	epoch        uint64
	userSelected bool
	instruction  string
	notices      noticeLog
}

// NewWorkspace creates an empty session. A nil cache disables caching and a
// nil logger discards output.
func NewWorkspace(backend ProjectBackend, c *cache.Cache, cfg WorkspaceConfig, logger *slog.Logger) (*Workspace, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = listing.DefaultPageSize
	}
	if cfg.Thresholds == (trust.Thresholds{}) {
		cfg.Thresholds = trust.DefaultThresholds()
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c = orgScoped(c, logger)
	machine, err := draft.NewMachine()
	if err != nil {
		return nil, err
	}
	return &Workspace{
		backend: backend,
		cache:   c,
		cfg:     cfg,
		logger:  logger.With("component", "workspace"),
		machine: machine,
	}, nil
}

// Open loads a project and its questions. Opening another project ends the
// current draft; reopening the same one keeps it. The first question is
// selected automatically only if the reviewer has never selected one in
// this workspace, whichever project that was in.
func (w *Workspace) Open(ctx context.Context, projectID string) error {
	project, err := w.loadProject(ctx, projectID)
	if err != nil {
		w.mu.Lock()
		w.notices.push(NoticeError, fmt.Sprintf("Failed to load project: %v", err))
		w.mu.Unlock()
		return fmt.Errorf("open project %s: %w", projectID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded && w.project.ID != project.ID {
		w.resetLocked()
	}
	w.applyProjectLocked(project)

	if w.machine.Current() == draft.StateIdle && !w.userSelected && len(project.Questions) > 0 {
		w.selectLocked(project.Questions[0])
	}
	w.logger.Info("project opened", "project", project.ID, "questions", project.QuestionCount())
	return nil
}

// Reload re-reads the open project from the backend, bypassing the cache.
func (w *Workspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return ErrNoProject
	}
	projectID := w.project.ID
	w.mu.Unlock()

	w.cache.Invalidate(ctx, cache.ProjectKey(projectID))
	return w.Open(ctx, projectID)
}

func (w *Workspace) loadProject(ctx context.Context, projectID string) (rfp.Project, error) {
	return cache.Fetch(ctx, w.cache, cache.ProjectKey(projectID), func(ctx context.Context) (rfp.Project, error) {
		return w.backend.GetProject(ctx, projectID)
	})
}

// applyProjectLocked swaps in fresh project data. A clean draft follows the
// server text; a dirty or saving draft is left alone.
func (w *Workspace) applyProjectLocked(project rfp.Project) {
	w.project = project
	w.loaded = true

	if w.machine.Current() == draft.StateIdle {
		return
	}
	q, ok := project.Question(w.draft.QuestionID)
	if !ok {
		w.logger.Warn("selected question disappeared", "question", w.draft.QuestionID)
		w.closeLocked()
		return
	}
	if w.machine.Current() == draft.StateHydrated && q.AnswerText() != w.draft.Baseline {
		w.draft = draft.New(q.ID, q.AnswerText())
	}
}

func (w *Workspace) resetLocked() {
	w.closeLocked()
	w.project = rfp.Project{}
	w.loaded = false
}

// Project returns the open project.
func (w *Workspace) Project() (rfp.Project, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loaded {
		return rfp.Project{}, ErrNoProject
	}
	return w.project, nil
}

// Questions returns the questions in server order.
func (w *Workspace) Questions() []rfp.Question {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]rfp.Question, len(w.project.Questions))
	copy(out, w.project.Questions)
	return out
}

// QuestionRow is one question as listed, with its trust badge.
type QuestionRow struct {
	Index    int
	Question rfp.Question
	Badge    trust.Badge
	Selected bool
}

// QuestionPage is one page of the question list.
type QuestionPage struct {
	Rows       []QuestionRow
	Page       int
	TotalPages int
	First      int
	Last       int
	Total      int
}

// QuestionPage returns page (1-based) of the question list. Out-of-range
// pages are empty; callers clamp with listing.ClampPage.
func (w *Workspace) QuestionPage(page int) QuestionPage {
	w.mu.Lock()
	defer w.mu.Unlock()

	questions := w.project.Questions
	items, total := listing.Page(questions, w.cfg.PageSize, page)
	first, last := listing.Window(len(questions), w.cfg.PageSize, page)
	rows := make([]QuestionRow, len(items))
	selected := ""
	if w.machine.Current() != draft.StateIdle {
		selected = w.draft.QuestionID
	}
	for i, q := range items {
		rows[i] = QuestionRow{
			Index:    first + i,
			Question: q,
			Badge:    trust.Annotate(q.TrustScore, w.cfg.Thresholds),
			Selected: q.ID == selected,
		}
	}
	return QuestionPage{Rows: rows, Page: page, TotalPages: total, First: first, Last: last, Total: len(questions)}
}

// PageOf returns the page that lists questionID.
func (w *Workspace) PageOf(questionID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, q := range w.project.Questions {
		if q.ID == questionID {
			return i/w.cfg.PageSize + 1
		}
	}
	return 1
}

// SelectQuestion makes id the active draft. Any unsaved edit of the previous
// draft is dropped; nothing is sent to the backend.
func (w *Workspace) SelectQuestion(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loaded {
		return ErrNoProject
	}
	q, ok := w.project.Question(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	if w.machine.Current() == draft.StateDirty {
		w.logger.Debug("discarding unsaved draft", "question", w.draft.QuestionID)
	}
	w.selectLocked(q)
	w.userSelected = true
	return nil
}

func (w *Workspace) selectLocked(q rfp.Question) {
	if err := w.machine.Fire(draft.EventSelect); err != nil {
		w.logger.Error("select rejected", "error", err)
		return
	}
	w.draft = draft.New(q.ID, q.AnswerText())
	w.epoch++
	w.instruction = ""
}

// EditDraft replaces the draft text. Nothing is sent to the backend. While a
// save is in flight the text changes but the state stays saving.
func (w *Workspace) EditDraft(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setTextLocked(text)
}

func (w *Workspace) setTextLocked(text string) error {
	state := w.machine.Current()
	switch state {
	case draft.StateIdle:
		return ErrNoDraft
	case draft.StateSaving:
		w.draft.Text = text
		return nil
	}
	w.draft.Text = text
	switch {
	case w.draft.Dirty():
		return w.machine.Fire(draft.EventEdit)
	case state == draft.StateDirty:
		return w.machine.Fire(draft.EventRevert)
	}
	return nil
}

// Save persists the draft. It is legal only with unsaved changes and only
// one save runs at a time. On failure the draft keeps its text and stays
// dirty so the reviewer can retry.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	switch w.machine.Current() {
	case draft.StateIdle:
		w.mu.Unlock()
		return ErrNoDraft
	case draft.StateSaving:
		w.mu.Unlock()
		return ErrSaveInProgress
	case draft.StateHydrated:
		w.mu.Unlock()
		return ErrNothingToSave
	}
	if err := w.machine.Fire(draft.EventSave); err != nil {
		w.mu.Unlock()
		return err
	}
	projectID := w.project.ID
	questionID := w.draft.QuestionID
	text := w.draft.Text
	epoch := w.epoch
	w.mu.Unlock()

	log := w.logger.With("project", projectID, "question", questionID)
	saved, err := w.backend.UpdateQuestionAnswer(ctx, projectID, questionID, text)

	w.mu.Lock()
	current := w.machine.Current() == draft.StateSaving && w.draft.QuestionID == questionID && w.epoch == epoch
	if err != nil {
		if current {
			if ferr := w.machine.Fire(draft.EventSaveFailed); ferr != nil {
				log.Error("save_failed rejected", "error", ferr)
			}
		}
		w.notices.push(NoticeError, fmt.Sprintf("Failed to save answer: %v", err))
		w.mu.Unlock()
		log.Warn("save failed", "error", err)
		return fmt.Errorf("save answer: %w", err)
	}

	w.replaceQuestionLocked(saved, projectID)
	if current {
		w.draft = w.draft.Rebase(saved.AnswerText())
		w.epoch++
		event := draft.EventSaveSucceeded
		if w.draft.Dirty() {
			event = draft.EventSaveSucceededDirty
		}
		if ferr := w.machine.Fire(event); ferr != nil {
			log.Error("save result rejected", "event", event, "error", ferr)
		}
	}
	w.notices.push(NoticeSuccess, "Answer saved")
	w.mu.Unlock()
	log.Info("answer saved")

	w.cache.Invalidate(ctx, cache.ProjectKey(projectID), cache.KeyProjects)
	w.refresh(ctx, projectID)
	return nil
}

// replaceQuestionLocked patches the saved question into the local list so
// the list reflects the save before the refresh lands.
func (w *Workspace) replaceQuestionLocked(saved rfp.Question, projectID string) {
	if w.project.ID != projectID {
		return
	}
	questions := make([]rfp.Question, len(w.project.Questions))
	copy(questions, w.project.Questions)
	for i, q := range questions {
		if q.ID != saved.ID {
			continue
		}
		if saved.ProjectID == "" {
			saved.ProjectID = q.ProjectID
		}
		if saved.Text == "" {
			saved.Text = q.Text
		}
		questions[i] = saved
	}
	w.project.Questions = questions
}

// refresh re-reads the project after a mutation so badges and flags follow
// the server. Failures leave the locally patched list in place.
func (w *Workspace) refresh(ctx context.Context, projectID string) {
	project, err := w.loadProject(ctx, projectID)
	if err != nil {
		w.logger.Warn("refresh after save failed", "project", projectID, "error", err)
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded && w.project.ID == projectID {
		w.applyProjectLocked(project)
	}
}

// Close ends the draft without saving.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeLocked()
}

func (w *Workspace) closeLocked() {
	if err := w.machine.Fire(draft.EventClose); err != nil {
		w.logger.Error("close rejected", "error", err)
	}
	w.draft = draft.Draft{}
	w.epoch++
	w.instruction = ""
}

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	ProjectID    string
	ProjectName  string
	State        draft.State
	QuestionID   string
	QuestionText string
	Text         string
	Baseline     string
	Dirty        bool
	UserEdited   bool
	Badge        trust.Badge
	Instruction  string
	LastNotice   Notice
}

// Snapshot returns the current session state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		ProjectID:   w.project.ID,
		ProjectName: w.project.Name,
		State:       w.machine.Current(),
		Instruction: w.instruction,
		LastNotice:  w.notices.last(),
	}
	if s.State == draft.StateIdle {
		return s
	}
	s.QuestionID = w.draft.QuestionID
	s.Text = w.draft.Text
	s.Baseline = w.draft.Baseline
	s.Dirty = w.draft.Dirty()
	if q, ok := w.project.Question(w.draft.QuestionID); ok {
		s.QuestionText = q.Text
		s.UserEdited = q.UserEdited
		s.Badge = trust.Annotate(q.TrustScore, w.cfg.Thresholds)
	}
	return s
}

// Notices returns the recent user-facing messages, oldest first.
func (w *Workspace) Notices() []Notice {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notices.list()
}

// Thresholds returns the trust tiers in use.
func (w *Workspace) Thresholds() trust.Thresholds {
	return w.cfg.Thresholds
}
