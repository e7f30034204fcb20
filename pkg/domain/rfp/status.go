package rfp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProjectStatus is the backend-driven lifecycle of a project. The workspace
// only reads it.
type ProjectStatus string

const (
	StatusPending    ProjectStatus = "pending"
	StatusProcessing ProjectStatus = "processing"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// AllProjectStatuses returns all valid project statuses in display order.
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		StatusCompleted,
		StatusProcessing,
		StatusPending,
		StatusFailed,
	}
}

// IsValid returns true if the status is a valid project status.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s ProjectStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the backend has stopped working on the project.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DisplayName returns a human-readable display name for the status.
func (s ProjectStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// ParseProjectStatus parses a string into a ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	status := ProjectStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid project status: %s", s)
	}
	return status, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *ProjectStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status, err := ParseProjectStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// SourceType records where a generated answer came from.
type SourceType string

const (
	SourceAttribute SourceType = "attribute"
	SourceRAG       SourceType = "rag"
)

// IsValid reports whether the source type is known. An empty source type is
// accepted for answers that predate provenance tracking.
func (s SourceType) IsValid() bool {
	switch s {
	case "", SourceAttribute, SourceRAG:
		return true
	default:
		return false
	}
}

// DocType classifies knowledge-base documents.
type DocType string

const (
	DocProposal     DocType = "proposal"
	DocContract     DocType = "contract"
	DocReport       DocType = "report"
	DocPresentation DocType = "presentation"
	DocOther        DocType = "other"
)

// ParseDocType accepts the lower-case form and the upper-case wire form.
func ParseDocType(s string) (DocType, error) {
	dt := DocType(strings.ToLower(strings.TrimSpace(s)))
	if dt == "" {
		return DocOther, nil
	}
	if !dt.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocType, s)
	}
	return dt, nil
}

// IsValid returns true if the type is known.
func (d DocType) IsValid() bool {
	switch d {
	case DocProposal, DocContract, DocReport, DocPresentation, DocOther:
		return true
	default:
		return false
	}
}

// Wire returns the form the upload endpoint expects.
func (d DocType) Wire() string {
	return strings.ToUpper(string(d))
}

// UnmarshalJSON normalizes either case.
func (d *DocType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	dt, err := ParseDocType(str)
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

// Category groups knowledge-base attributes.
type Category string

const (
	CategoryTechnical  Category = "technical"
	CategoryCompliance Category = "compliance"
	CategoryBusiness   Category = "business"
	CategoryProduct    Category = "product"
)

// AllCategories returns the attribute categories in display order.
func AllCategories() []Category {
	return []Category{CategoryTechnical, CategoryCompliance, CategoryBusiness, CategoryProduct}
}

// IsValid returns true if the category is known.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTechnical, CategoryCompliance, CategoryBusiness, CategoryProduct:
		return true
	default:
		return false
	}
}
