// Package draft models the in-memory, possibly unsaved edit of one question's
// answer and the state machine that guards it.
package draft

// Draft is a copy of one question's answer held by the active editing session.
// Baseline is the server text it was last hydrated from.
type Draft struct {
	QuestionID string
	Baseline   string
	Text       string
}

// New hydrates a clean draft from server text.
func New(questionID, serverText string) Draft {
	return Draft{QuestionID: questionID, Baseline: serverText, Text: serverText}
}

// Dirty reports whether the text differs from the last hydrated server text.
func (d Draft) Dirty() bool {
	return d.Text != d.Baseline
}

// Rebase records serverText as the new baseline, keeping the current text.
func (d Draft) Rebase(serverText string) Draft {
	d.Baseline = serverText
	return d
}
