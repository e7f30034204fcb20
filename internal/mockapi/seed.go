package mockapi

import (
	"fmt"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

// AddProject stores p, assigning IDs and timestamps that are missing.
func (s *Server) AddProject(p rfp.Project) rfp.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = rfp.StatusCompleted
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = rfp.Timestamp{Time: s.now()}
	}
	p.UpdatedAt = p.CreatedAt
	questions := make([]rfp.Question, len(p.Questions))
	for i, q := range p.Questions {
		if q.ID == "" {
			q.ID = newID()
		}
		q.ProjectID = p.ID
		questions[i] = q
	}
	p.Questions = questions
	s.projects = append(s.projects, p)
	s.usage.RFPs.Used++
	return p
}

// AddDocument stores d.
func (s *Server) AddDocument(d rfp.Document) rfp.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDocumentLocked(d)
}

func (s *Server) addDocumentLocked(d rfp.Document) rfp.Document {
	if d.ID == "" {
		d.ID = newID()
	}
	if d.DocType == "" {
		d.DocType = rfp.DocOther
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = rfp.Timestamp{Time: s.now()}
	}
	if d.ProcessingStatus == "" {
		d.ProcessingStatus = "completed"
	}
	s.documents = append(s.documents, d)
	s.usage.Docs.Used++
	return d
}

// AddAttribute stores a.
func (s *Server) AddAttribute(a rfp.Attribute) rfp.Attribute {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	if a.LastUpdated.IsZero() {
		a.LastUpdated = rfp.Timestamp{Time: s.now()}
	}
	s.attributes = append(s.attributes, a)
	return a
}

// Question returns the stored state of one question.
func (s *Server) Question(projectID, questionID string) (rfp.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProjectLocked(projectID)
	if p == nil {
		return rfp.Question{}, false
	}
	return p.Question(questionID)
}

// SeedDemo loads a project with generated questions of mixed trust, a few
// documents and attributes. It backs the rfpdesk-mock command.
func (s *Server) SeedDemo(questions int) rfp.Project {
	p := rfp.Project{Name: "Acme Cloud Security RFP", FileURL: "https://files.example.com/acme-rfp.pdf"}
	scores := []float64{0.92, 0.55, 0.31, 88, 47, 12}
	for i := 0; i < questions; i++ {
		answer := fmt.Sprintf("Draft answer %d covering the requested controls.", i+1)
		q := rfp.Question{
			Text:       fmt.Sprintf("Question %d: describe your approach to requirement %d.", i+1, i+1),
			Answer:     &answer,
			TrustScore: scores[i%len(scores)],
			SourceType: rfp.SourceRAG,
		}
		if i%5 == 4 {
			q.Answer = nil
		}
		p.Questions = append(p.Questions, q)
	}
	project := s.AddProject(p)

	s.AddDocument(rfp.Document{Filename: "security-whitepaper.pdf", DocType: rfp.DocReport, FileSize: 482133, Tags: []string{"security"}})
	s.AddDocument(rfp.Document{Filename: "msa-template.docx", DocType: rfp.DocContract, FileSize: 91220})
	s.AddAttribute(rfp.Attribute{Key: "Data residency", Value: "EU and US regions", Category: rfp.CategoryCompliance})
	s.AddAttribute(rfp.Attribute{Key: "Uptime SLA", Value: "99.95%", Category: rfp.CategoryTechnical})
	s.AddAttribute(rfp.Attribute{Key: "Support hours", Value: "24/7", Category: rfp.CategoryBusiness})
	return project
}
