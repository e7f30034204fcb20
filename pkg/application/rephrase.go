package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/draft"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

var (
	// ErrEmptyInstruction indicates a blank rephrase instruction.
	ErrEmptyInstruction = errors.New("rephrase instruction is empty")

	// ErrEmptyDraft indicates there is no answer text to rephrase.
	ErrEmptyDraft = errors.New("answer text is empty")
)

// CanRephrase reports whether a rephrase may be requested.
func CanRephrase(draftText, instruction string) bool {
	return ValidateRephrase(draftText, instruction) == nil
}

// ValidateRephrase checks the inputs before any request is made.
func ValidateRephrase(draftText, instruction string) error {
	if strings.TrimSpace(instruction) == "" {
		return ErrEmptyInstruction
	}
	if strings.TrimSpace(draftText) == "" {
		return ErrEmptyDraft
	}
	return nil
}

// RephraseResult reports what happened to a rephrase response.
type RephraseResult struct {
	QuestionID string
	Candidate  string
	// Applied is false when the session moved on before the response
	// arrived and the candidate was dropped.
	Applied bool
}

// SetInstruction stores the instruction being typed.
func (w *Workspace) SetInstruction(instruction string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.instruction = instruction
}

// Instruction returns the stored instruction. It survives a failed rephrase.
func (w *Workspace) Instruction() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.instruction
}

// Rephrase asks the backend to rewrite the draft. A candidate replaces the
// draft text and leaves it dirty; it is never saved here. Responses that
// arrive after the reviewer switched questions, edited the text, or while a
// save runs are discarded without error.
func (w *Workspace) Rephrase(ctx context.Context, instruction string) (RephraseResult, error) {
	w.mu.Lock()
	state := w.machine.Current()
	if state == draft.StateIdle {
		w.mu.Unlock()
		return RephraseResult{}, ErrNoDraft
	}
	if state == draft.StateSaving {
		w.mu.Unlock()
		return RephraseResult{}, ErrSaveInProgress
	}
	if err := ValidateRephrase(w.draft.Text, instruction); err != nil {
		w.mu.Unlock()
		return RephraseResult{}, err
	}
	w.instruction = instruction
	projectID := w.project.ID
	questionID := w.draft.QuestionID
	text := w.draft.Text
	epoch := w.epoch
	w.mu.Unlock()

	log := w.logger.With("project", projectID, "question", questionID)
	candidate, err := w.backend.RephraseAnswer(ctx, projectID, questionID, sdk.RephraseRequest{
		CurrentText: text,
		Instruction: instruction,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.notices.push(NoticeError, fmt.Sprintf("Failed to rephrase answer: %v", err))
		log.Warn("rephrase failed", "error", err)
		return RephraseResult{QuestionID: questionID}, fmt.Errorf("rephrase answer: %w", err)
	}

	result := RephraseResult{QuestionID: questionID, Candidate: candidate}
	state = w.machine.Current()
	if state == draft.StateIdle || state == draft.StateSaving || w.draft.QuestionID != questionID || w.epoch != epoch {
		log.Debug("discarding stale rephrase", "state", state)
		return result, nil
	}
	if w.draft.Text != text {
		// The reviewer kept typing; their text wins over the candidate.
		w.notices.push(NoticeInfo, "Answer changed while rephrasing. Suggestion discarded.")
		log.Debug("discarding rephrase for edited draft")
		return result, nil
	}
	if err := w.setTextLocked(candidate); err != nil {
		return result, err
	}
	w.instruction = ""
	w.notices.push(NoticeInfo, "Answer rephrased. Review and save to keep it.")
	result.Applied = true
	return result, nil
}
