package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/config"
	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/draft"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var recErr *rfp.RecordError
	if errors.As(err, &recErr) {
		return NewCLIError("backend returned a malformed record",
			fmt.Sprintf("Check that the server at api_url speaks the rfpdesk API (%s)", recErr.Kind), err)
	}

	var transErr *draft.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(transErr.Error(), "Wait for the current operation to finish, then retry", err)
	}

	switch {
	case errors.Is(err, sdk.ErrUnauthenticated):
		return &CLIError{Message: "not signed in", Hint: "Run 'rfpdesk config set token <token>'", Err: err, ExitCode: 2}
	case errors.Is(err, sdk.ErrNoOrganization):
		return NewCLIError("no organization selected", "Run 'rfpdesk config set organization <id>'", err)
	case errors.Is(err, sdk.ErrNotFound):
		return NewCLIError("not found", "Run 'rfpdesk projects' to list available projects", err)
	case errors.Is(err, application.ErrQuestionNotFound):
		return NewCLIError("question not found", "Run 'rfpdesk project show <id>' to list question IDs", err)
	case errors.Is(err, application.ErrNothingToSave):
		return NewCLIError("answer unchanged", "The new text matches the saved answer", err)
	case errors.Is(err, application.ErrEmptyInstruction):
		return NewCLIError("rephrase instruction is empty", "Pass --instruction \"make it shorter\"", err)
	case errors.Is(err, application.ErrEmptyDraft):
		return NewCLIError("nothing to rephrase", "Write an answer first with 'rfpdesk answer set'", err)
	case errors.Is(err, application.ErrNoFiles):
		return NewCLIError("no files to upload", "Pass one or more file paths", err)
	case errors.Is(err, application.ErrDuplicateFile):
		return NewCLIError("duplicate file in batch", "Each filename may appear once per upload", err)
	case errors.Is(err, application.ErrUnknownFormat):
		return NewCLIError("unknown export format", "Use --format xlsx, docx or pdf", err)
	case errors.Is(err, listing.ErrUnknownSortKey):
		return NewCLIError("unknown sort key", "See --help for the supported --sort values", err)
	case errors.Is(err, listing.ErrUnknownFilter):
		return NewCLIError("unknown filter", "See --help for the supported filter values", err)
	case errors.Is(err, rfp.ErrUnknownDocType):
		return NewCLIError("unknown document type", "Use --type proposal, contract, report, presentation or other", err)
	case errors.Is(err, config.ErrUnknownKey):
		return NewCLIError("unknown config key", "Run 'rfpdesk config show' to list keys", err)
	}

	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) && apiErr.Temporary() {
		return NewCLIError("backend temporarily unavailable", "Retry in a moment", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewCLIError("backend unreachable", "Check api_url with 'rfpdesk config show' and that the server is running", err)
	}

	return err
}
