package rfp

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned when a backend record fails boundary validation.
var ErrMalformedRecord = errors.New("malformed record")

// ErrUnknownDocType is returned for a document type outside the known set.
var ErrUnknownDocType = errors.New("unknown document type")

// Kind names a record type.
type Kind string

const (
	KindProject   Kind = "project"
	KindQuestion  Kind = "question"
	KindDocument  Kind = "document"
	KindAttribute Kind = "attribute"
	KindUsage     Kind = "usage"
)

// RecordError describes which record and field failed validation.
type RecordError struct {
	Kind   Kind
	ID     string
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	if e.Field == "" {
		return fmt.Sprintf("malformed %s %s: %s", e.Kind, id, e.Reason)
	}
	return fmt.Sprintf("malformed %s %s: %s: %s", e.Kind, id, e.Field, e.Reason)
}

// Is allows errors.Is to work with RecordError.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
