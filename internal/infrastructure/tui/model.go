package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/draft"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusEditor
	focusInstruction
)

// Messages carrying the outcome of network commands.
type (
	loadedMsg    struct{ err error }
	savedMsg     struct{ err error }
	rephrasedMsg struct {
		res application.RephraseResult
		err error
	}
)

// Model is the bubbletea model of the review screen.
type Model struct {
	ctx       context.Context
	ws        *application.Workspace
	projectID string

	table       table.Model
	editor      textarea.Model
	instruction textinput.Model
	focus       focusArea

	page      int
	rows      []application.QuestionRow
	busy      string
	status    string
	quitArmed bool
	err       error
}

// New creates the review model for projectID. ctx scopes every backend call.
func New(ctx context.Context, ws *application.Workspace, projectID string) Model {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "#", Width: 4},
		{Title: "Trust", Width: 11},
		{Title: "Question", Width: 60},
		{Title: "Answer", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	editor := textarea.New()
	editor.Placeholder = "Select a question to edit its answer"
	editor.SetWidth(88)
	editor.SetHeight(6)
	editor.CharLimit = 0

	instr := textinput.New()
	instr.Placeholder = "e.g. make it more concise"
	instr.Width = 80

	return Model{
		ctx:         ctx,
		ws:          ws,
		projectID:   projectID,
		table:       t,
		editor:      editor,
		instruction: instr,
		page:        1,
	}
}

// Run opens the review screen and blocks until the reviewer quits.
func Run(ctx context.Context, ws *application.Workspace, projectID string) error {
	p := tea.NewProgram(New(ctx, ws, projectID), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("review run failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	ws, ctx, id := m.ws, m.ctx, m.projectID
	return func() tea.Msg {
		return loadedMsg{err: ws.Open(ctx, id)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		return savedMsg{err: ws.Save(ctx)}
	}
}

func (m Model) rephraseCmd(instruction string) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		res, err := ws.Rephrase(ctx, instruction)
		return rephrasedMsg{res: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := max(msg.Width-4, 40)
		m.editor.SetWidth(width)
		m.instruction.Width = width - 4
		return m, nil

	case loadedMsg:
		m.busy = ""
		if msg.err != nil {
			if _, err := m.ws.Project(); err != nil {
				m.err = msg.err
			}
			return m, nil
		}
		m.err = nil
		if snap := m.ws.Snapshot(); snap.QuestionID != "" {
			m.page = m.ws.PageOf(snap.QuestionID)
		}
		m.refreshRows()
		m.syncEditor()
		return m, nil

	case savedMsg:
		m.busy = ""
		m.status = ""
		m.refreshRows()
		m.syncEditor()
		return m, nil

	case rephrasedMsg:
		m.busy = ""
		m.status = ""
		if msg.res.Applied {
			m.instruction.SetValue("")
			m.syncEditor()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.quitArmed = false
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.cycleFocus()
	case "ctrl+s":
		snap := m.ws.Snapshot()
		if m.busy == "saving" || !snap.Dirty {
			return m, nil
		}
		m.busy = "saving"
		m.status = "Saving..."
		return m, m.saveCmd()
	case "ctrl+r":
		if m.busy == "rephrasing" {
			return m, nil
		}
		snap := m.ws.Snapshot()
		instr := m.instruction.Value()
		if err := application.ValidateRephrase(snap.Text, instr); err != nil || snap.State == draft.StateSaving {
			if err != nil {
				m.status = "Cannot rephrase: " + err.Error()
			}
			return m, nil
		}
		m.busy = "rephrasing"
		m.status = "Rephrasing..."
		return m, m.rephraseCmd(instr)
	}

	switch m.focus {
	case focusEditor:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if v := m.editor.Value(); v != m.ws.Snapshot().Text {
			if err := m.ws.EditDraft(v); err != nil {
				m.status = err.Error()
			}
		}
		return m, cmd
	case focusInstruction:
		var cmd tea.Cmd
		m.instruction, cmd = m.instruction.Update(msg)
		m.ws.SetInstruction(m.instruction.Value())
		return m, cmd
	}

	switch key {
	case "q":
		if m.ws.Snapshot().Dirty && !m.quitArmed {
			m.quitArmed = true
			m.status = "Unsaved changes. Press q again to discard them and quit."
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		i := m.table.Cursor()
		if i < 0 || i >= len(m.rows) {
			return m, nil
		}
		if err := m.ws.SelectQuestion(m.rows[i].Question.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		m.refreshRows()
		m.syncEditor()
		return m, nil
	case "n", "right":
		return m.turnPage(1), nil
	case "p", "left":
		return m.turnPage(-1), nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	m.focus = (m.focus + 1) % 3
	m.table.Blur()
	m.editor.Blur()
	m.instruction.Blur()
	switch m.focus {
	case focusEditor:
		return m, m.editor.Focus()
	case focusInstruction:
		return m, m.instruction.Focus()
	}
	m.table.Focus()
	return m, nil
}

func (m Model) turnPage(delta int) Model {
	total := m.ws.QuestionPage(m.page).TotalPages
	next := listing.ClampPage(m.page+delta, total)
	if next != m.page {
		m.page = next
		m.refreshRows()
		m.table.SetCursor(0)
	}
	return m
}

func (m *Model) refreshRows() {
	qp := m.ws.QuestionPage(m.page)
	m.rows = qp.Rows
	rows := make([]table.Row, len(qp.Rows))
	cursor := -1
	for i, r := range qp.Rows {
		marker := " "
		if r.Selected {
			marker = ">"
			cursor = i
		}
		answer := "-"
		if r.Question.HasAnswer() {
			answer = "yes"
		}
		if r.Question.UserEdited {
			answer = "edited"
		}
		rows[i] = table.Row{marker, fmt.Sprint(r.Index), BadgeLabel(r.Badge), oneLine(r.Question.Text, 60), answer}
	}
	m.table.SetRows(rows)
	if cursor >= 0 {
		m.table.SetCursor(cursor)
	}
}

// syncEditor copies the draft text into the editor when they differ.
func (m *Model) syncEditor() {
	snap := m.ws.Snapshot()
	if m.editor.Value() != snap.Text {
		m.editor.SetValue(snap.Text)
	}
	if m.instruction.Value() != snap.Instruction {
		m.instruction.SetValue(snap.Instruction)
	}
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading project: %v\nPress q to quit.", m.err)
	}
	snap := m.ws.Snapshot()
	if snap.ProjectID == "" {
		return "Loading project...\n"
	}

	qp := m.ws.QuestionPage(m.page)
	header := headerStyle.Render(snap.ProjectName)
	pager := helpStyle.Render(fmt.Sprintf("Questions %d-%d of %d (page %d/%d)", qp.First, qp.Last, qp.Total, qp.Page, max(qp.TotalPages, 1)))

	var detail strings.Builder
	if snap.QuestionID != "" {
		detail.WriteString(labelStyle.Render("Question") + "  " + RenderBadge(snap.Badge))
		if snap.UserEdited {
			detail.WriteString(helpStyle.Render("  edited"))
		}
		if snap.Dirty {
			detail.WriteString("  " + dirtyStyle.Render("unsaved"))
		}
		detail.WriteString("\n" + lipgloss.NewStyle().Width(88).Render(snap.QuestionText) + "\n")
	}

	status := m.status
	level := application.NoticeInfo
	if status == "" {
		status = snap.LastNotice.Message
		level = snap.LastNotice.Level
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			pager,
			m.table.View(),
			detail.String(),
			labelStyle.Render("Answer"),
			m.editor.View(),
			labelStyle.Render("Rephrase instruction"),
			m.instruction.View(),
			noticeStyle(level).Render(status),
			helpStyle.Render("[enter] select  [n/p] page  [tab] focus  [ctrl+s] save  [ctrl+r] rephrase  [q] quit"),
		),
	) + "\n"
}

func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
