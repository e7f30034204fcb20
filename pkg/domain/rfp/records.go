package rfp

import (
	"fmt"
	"strings"
)

// Project is an uploaded RFP whose questions were extracted and answered.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"rfp_name"`
	FileURL   string        `json:"rfp_file_url,omitempty"`
	Status    ProjectStatus `json:"status"`
	CreatedAt Timestamp     `json:"created_at"`
	UpdatedAt Timestamp     `json:"updated_at"`
	Questions []Question    `json:"questions,omitempty"`
}

// QuestionCount returns the number of extracted questions.
func (p Project) QuestionCount() int {
	return len(p.Questions)
}

// FileName returns the last path segment of the uploaded file URL.
func (p Project) FileName() string {
	if i := strings.LastIndex(p.FileURL, "/"); i >= 0 {
		return p.FileURL[i+1:]
	}
	return p.FileURL
}

// Question returns the question with the given ID.
func (p Project) Question(id string) (Question, bool) {
	for _, q := range p.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Validate checks enum membership of the project and all of its questions.
func (p Project) Validate() error {
	if !p.Status.IsValid() {
		return &RecordError{Kind: KindProject, ID: p.ID, Field: "status", Reason: fmt.Sprintf("unknown value %q", p.Status)}
	}
	for _, q := range p.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Question is one extracted question/answer pair.
type Question struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id,omitempty"`
	Text       string     `json:"question_text"`
	Answer     *string    `json:"answer_text"`
	TrustScore float64    `json:"trust_score"`
	SourceType SourceType `json:"source_type,omitempty"`
	SourceIDs  []string   `json:"source_ids,omitempty"`
	UserEdited bool       `json:"user_edited"`
	CreatedAt  Timestamp  `json:"created_at"`
	UpdatedAt  Timestamp  `json:"updated_at"`
}

// AnswerText returns the answer, or "" when none was generated.
func (q Question) AnswerText() string {
	if q.Answer == nil {
		return ""
	}
	return *q.Answer
}

// HasAnswer reports whether a non-empty answer exists.
func (q Question) HasAnswer() bool {
	return strings.TrimSpace(q.AnswerText()) != ""
}

// Validate checks enum membership.
func (q Question) Validate() error {
	if !q.SourceType.IsValid() {
		return &RecordError{Kind: KindQuestion, ID: q.ID, Field: "source_type", Reason: fmt.Sprintf("unknown value %q", q.SourceType)}
	}
	return nil
}

// Document is a knowledge-base file.
type Document struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	FileURL          string    `json:"file_url,omitempty"`
	DocType          DocType   `json:"doc_type,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	FileSize         int64     `json:"file_size,omitempty"`
	UploadedAt       Timestamp `json:"uploaded_at"`
	ProcessingStatus string    `json:"processing_status,omitempty"`
}

// Extension returns the lower-case file extension without the dot.
func (d Document) Extension() string {
	i := strings.LastIndex(d.Filename, ".")
	if i < 0 || i == len(d.Filename)-1 {
		return ""
	}
	return strings.ToLower(d.Filename[i+1:])
}

// Validate checks enum membership.
func (d Document) Validate() error {
	if d.DocType != "" && !d.DocType.IsValid() {
		return &RecordError{Kind: KindDocument, ID: d.ID, Field: "doc_type", Reason: fmt.Sprintf("unknown value %q", d.DocType)}
	}
	return nil
}

// Attribute is a key/value fact extracted into the knowledge base.
type Attribute struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Category    Category  `json:"category"`
	SourceDocID *string   `json:"source_doc_id"`
	LastUpdated Timestamp `json:"last_updated"`
}

// Validate checks enum membership.
func (a Attribute) Validate() error {
	if !a.Category.IsValid() {
		return &RecordError{Kind: KindAttribute, ID: a.ID, Field: "category", Reason: fmt.Sprintf("unknown value %q", a.Category)}
	}
	return nil
}

// Quota is a monthly allowance.
type Quota struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Exhausted reports whether nothing remains of a limited quota.
func (q Quota) Exhausted() bool {
	return q.Limit > 0 && q.Remaining <= 0
}

// PlanInfo names the billing plan.
type PlanInfo struct {
	Tier string `json:"tier"`
	Name string `json:"name"`
}

// UsageStats is the monthly usage summary.
type UsageStats struct {
	Month string   `json:"month"`
	RFPs  Quota    `json:"rfps"`
	Docs  Quota    `json:"docs"`
	Plan  PlanInfo `json:"plan"`
}

// Validate is a no-op; usage has no enums.
func (u UsageStats) Validate() error {
	return nil
}
