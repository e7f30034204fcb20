package tui

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/rfpdesk/internal/mockapi"
	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/cache"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

func newTestModel(t *testing.T, questions int) (Model, *mockapi.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := mockapi.New(mockapi.WithToken("tui-token"))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	p := rfp.Project{Name: "Acme Security"}
	for i := 1; i <= questions; i++ {
		answer := fmt.Sprintf("answer %d", i)
		p.Questions = append(p.Questions, rfp.Question{Text: fmt.Sprintf("Question %d?", i), Answer: &answer, TrustScore: 0.9})
	}
	project := backend.AddProject(p)

	client, err := sdk.NewClient(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tui-token"}), sdk.WithRetry(1, time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := application.NewWorkspace(client, cache.New(cache.NewMemory(), "org-tui", time.Minute, nil), application.DefaultWorkspaceConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := sdk.WithOrganization(context.Background(), "org-tui")

	m := New(ctx, ws, project.ID)
	m = step(t, m, m.Init()())
	return m, backend, project.ID
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the returned command when it is one of ours.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil || (msg.Type != tea.KeyCtrlS && msg.Type != tea.KeyCtrlR) {
		return m
	}
	return step(t, m, cmd())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadSelectsFirstQuestion(t *testing.T) {
	m, _, _ := newTestModel(t, 30)

	if len(m.rows) != 25 {
		t.Fatalf("expected 25 rows on page 1, got %d", len(m.rows))
	}
	if m.editor.Value() != "answer 1" {
		t.Errorf("editor = %q, want first answer", m.editor.Value())
	}
	if view := m.View(); !strings.Contains(view, "Acme Security") {
		t.Error("view should show the project name")
	}
}

func TestModel_PagingAndSelect(t *testing.T) {
	m, _, _ := newTestModel(t, 30)

	m = press(t, m, runes("n"))
	if m.page != 2 || len(m.rows) != 5 {
		t.Fatalf("page 2: page=%d rows=%d", m.page, len(m.rows))
	}
	m = press(t, m, runes("n"))
	if m.page != 2 {
		t.Errorf("paging past the end should clamp, got page %d", m.page)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.ws.Snapshot().QuestionID; got != m.rows[0].Question.ID {
		t.Errorf("selected %s, want %s", got, m.rows[0].Question.ID)
	}
	if m.editor.Value() != "answer 26" {
		t.Errorf("editor = %q, want answer 26", m.editor.Value())
	}

	m = press(t, m, runes("p"))
	if m.page != 1 {
		t.Errorf("expected page 1, got %d", m.page)
	}
}

func TestModel_EditAndSave(t *testing.T) {
	m, backend, projectID := newTestModel(t, 3)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusEditor {
		t.Fatalf("focus = %d, want editor", m.focus)
	}
	m = press(t, m, runes("!"))
	snap := m.ws.Snapshot()
	if !snap.Dirty || snap.Text != m.editor.Value() {
		t.Fatalf("draft should follow editor: dirty=%v text=%q editor=%q", snap.Dirty, snap.Text, m.editor.Value())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.ws.Snapshot().Dirty {
		t.Error("draft should be clean after save")
	}
	q, ok := backend.Question(projectID, snap.QuestionID)
	if !ok || q.AnswerText() != snap.Text || !q.UserEdited {
		t.Errorf("backend answer = %q edited=%v, want %q edited", q.AnswerText(), q.UserEdited, snap.Text)
	}
	if calls := backend.Calls("PATCH /api/rfps/:id/questions/:qid"); calls != 1 {
		t.Errorf("expected 1 PATCH, got %d", calls)
	}
}

func TestModel_SaveWithoutChangesIsNoop(t *testing.T) {
	m, backend, _ := newTestModel(t, 2)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if calls := backend.Calls("PATCH /api/rfps/:id/questions/:qid"); calls != 0 {
		t.Errorf("expected no PATCH, got %d", calls)
	}
	if m.busy != "" {
		t.Errorf("busy = %q", m.busy)
	}
}

func TestModel_Rephrase(t *testing.T) {
	m, _, _ := newTestModel(t, 2)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusInstruction {
		t.Fatalf("focus = %d, want instruction", m.focus)
	}
	m = press(t, m, runes("shorter"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	if got, want := m.editor.Value(), "answer 1 [shorter]"; got != want {
		t.Errorf("editor = %q, want %q", got, want)
	}
	if !m.ws.Snapshot().Dirty {
		t.Error("rephrased text must stay unsaved")
	}
	if m.instruction.Value() != "" {
		t.Error("instruction should clear after an applied rephrase")
	}
}

func TestModel_RephraseIgnoresRepeatWhileInFlight(t *testing.T) {
	m, backend, _ := newTestModel(t, 1)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("formal"))

	next, first := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	if first == nil || m.busy != "rephrasing" {
		t.Fatalf("first ctrl+r: cmd=%v busy=%q", first, m.busy)
	}
	next, second := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	if second != nil {
		t.Fatal("second ctrl+r while rephrasing must not start another request")
	}

	m = step(t, m, first())
	if calls := backend.Calls("POST /api/rfps/:id/questions/:qid/rephrase"); calls != 1 {
		t.Errorf("rephrase calls = %d, want 1", calls)
	}
	if m.busy != "" || m.editor.Value() != "answer 1 [formal]" {
		t.Errorf("busy=%q editor=%q", m.busy, m.editor.Value())
	}
}

func TestModel_RephraseNeedsInstruction(t *testing.T) {
	m, backend, _ := newTestModel(t, 1)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !strings.Contains(m.status, "Cannot rephrase") {
		t.Errorf("status = %q", m.status)
	}
	if calls := backend.Calls("POST /api/rfps/:id/questions/:qid/rephrase"); calls != 0 {
		t.Errorf("expected no rephrase call, got %d", calls)
	}
}

func TestModel_QuitWarnsOnceWhenDirty(t *testing.T) {
	m, _, _ := newTestModel(t, 1)
	if err := m.ws.EditDraft("changed"); err != nil {
		t.Fatal(err)
	}

	next, cmd := m.Update(runes("q"))
	m = next.(Model)
	if cmd != nil || !m.quitArmed {
		t.Fatal("first q should only warn")
	}
	_, cmd = m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("second q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_LoadError(t *testing.T) {
	m, _, _ := newTestModel(t, 1)
	fresh := New(m.ctx, mustWorkspace(t), "missing")
	fresh = step(t, fresh, loadedMsg{err: sdk.ErrNotFound})
	if fresh.err == nil || !strings.Contains(fresh.View(), "Error loading project") {
		t.Error("expected load error view")
	}
}

func mustWorkspace(t *testing.T) *application.Workspace {
	t.Helper()
	ws, err := application.NewWorkspace(nil, cache.New(cache.Noop{}, "", 0, nil), application.DefaultWorkspaceConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestBadgeLabel(t *testing.T) {
	tests := []struct {
		badge trust.Badge
		want  string
	}{
		{trust.Badge{Percent: 87, Tier: trust.TierHigh}, " 87% High"},
		{trust.Badge{Percent: 100, Tier: trust.TierHigh}, "100% High"},
		{trust.Badge{Percent: 5, Tier: trust.TierLow}, "  5% Low"},
	}
	for _, tt := range tests {
		if got := BadgeLabel(tt.badge); got != tt.want {
			t.Errorf("BadgeLabel(%+v) = %q, want %q", tt.badge, got, tt.want)
		}
		if !strings.Contains(RenderBadge(tt.badge), strings.TrimSpace(tt.want)) {
			t.Errorf("RenderBadge should contain the label")
		}
	}
}
