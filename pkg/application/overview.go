package application

import (
	"context"
	"fmt"
	"math"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
)

// RecentLimit is the number of recent projects and documents an Overview
// carries.
const RecentLimit = 3

// Overview summarizes the account for the landing screen.
type Overview struct {
	Projects   int `json:"projects"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Documents  int `json:"documents"`
	// AverageTrust is the mean normalized trust score over the questions of
	// completed projects, or 0 when there are none.
	AverageTrust   int            `json:"average_trust"`
	TrustQuestions int            `json:"trust_questions"`
	Usage          rfp.UsageStats `json:"usage"`
	RecentProjects []rfp.Project  `json:"recent_projects"`
	RecentDocs     []rfp.Document `json:"recent_documents"`
}

// Overview loads projects, documents and usage and summarizes them. Recent
// items keep the order the backend lists them in.
func (s *LibraryService) Overview(ctx context.Context) (Overview, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("load projects: %w", err)
	}
	docs, err := s.Documents(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("load documents: %w", err)
	}
	usage, err := s.Usage(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("load usage: %w", err)
	}

	o := Summarize(projects, docs)
	o.Usage = usage
	return o, nil
}

// Summarize computes the counts, the average trust and the recent items.
func Summarize(projects []rfp.Project, docs []rfp.Document) Overview {
	o := Overview{
		Projects:       len(projects),
		Documents:      len(docs),
		RecentProjects: projects[:min(RecentLimit, len(projects))],
		RecentDocs:     docs[:min(RecentLimit, len(docs))],
	}

	sum := 0
	for _, p := range projects {
		switch p.Status {
		case rfp.StatusCompleted:
			o.Completed++
			for _, q := range p.Questions {
				sum += trust.Normalize(q.TrustScore)
				o.TrustQuestions++
			}
		case rfp.StatusProcessing:
			o.Processing++
		}
	}
	if o.TrustQuestions > 0 {
		o.AverageTrust = int(math.Round(float64(sum) / float64(o.TrustQuestions)))
	}
	return o
}
