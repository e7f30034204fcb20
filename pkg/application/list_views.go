package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

// Sort keys shared by the list views.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortName      = "name"
	SortQuestions = "questions"
	SortSize      = "size"
	SortCategory  = "category"
)

// ListPage is one page of a filtered, sorted list.
type ListPage[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	First      int
	Last       int
	// Matched counts items that passed search and filter.
	Matched int
	Total   int
}

func paginate[T any](all, filtered []T, page, pageSize int) ListPage[T] {
	if pageSize <= 0 {
		pageSize = listing.DefaultPageSize
	}
	total := listing.TotalPages(len(filtered), pageSize)
	page = listing.ClampPage(page, total)
	items, _ := listing.Page(filtered, pageSize, page)
	first, last := listing.Window(len(filtered), pageSize, page)
	return ListPage[T]{
		Items:      items,
		Page:       page,
		TotalPages: total,
		First:      first,
		Last:       last,
		Matched:    len(filtered),
		Total:      len(all),
	}
}

func unknownSort(key string, valid ...string) error {
	return fmt.Errorf("%w: %q (want one of %s)", listing.ErrUnknownSortKey, key, strings.Join(valid, ", "))
}

func isAll(filter string) bool {
	f := strings.ToLower(strings.TrimSpace(filter))
	return f == "" || f == listing.FilterAll
}

func projectTime(p rfp.Project) time.Time { return p.CreatedAt.Time }

// FilterProjects searches by name, filters by status and sorts.
func FilterProjects(items []rfp.Project, v listing.View) ([]rfp.Project, error) {
	var cmp func(a, b rfp.Project) int
	switch strings.ToLower(v.Sort) {
	case "", SortNewest:
		cmp = listing.ByTimeDesc(projectTime)
	case SortOldest:
		cmp = listing.ByTimeAsc(projectTime)
	case SortName:
		cmp = listing.ByName(func(p rfp.Project) string { return p.Name })
	case SortQuestions:
		cmp = listing.ByIntDesc(func(p rfp.Project) int64 { return int64(p.QuestionCount()) })
	default:
		return nil, unknownSort(v.Sort, SortNewest, SortOldest, SortName, SortQuestions)
	}

	var pred func(rfp.Project) bool
	if !isAll(v.Filter) {
		status, err := rfp.ParseProjectStatus(v.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", listing.ErrUnknownFilter, err)
		}
		pred = func(p rfp.Project) bool { return p.Status == status }
	}

	return listing.Apply(items, v.Query, func(p rfp.Project) []string { return []string{p.Name} }, pred, cmp), nil
}

// ProjectsView returns one page of the project list.
func ProjectsView(items []rfp.Project, v listing.View, pageSize int) (ListPage[rfp.Project], error) {
	filtered, err := FilterProjects(items, v)
	if err != nil {
		return ListPage[rfp.Project]{}, err
	}
	return paginate(items, filtered, v.Page, pageSize), nil
}

// ProjectStatusCounts counts projects per status, plus "all".
func ProjectStatusCounts(items []rfp.Project) map[string]int {
	counts := listing.Counts(items, func(p rfp.Project) string { return string(p.Status) })
	counts[listing.FilterAll] = len(items)
	return counts
}

func documentTime(d rfp.Document) time.Time { return d.UploadedAt.Time }

// FilterDocuments searches by filename and sorts.
func FilterDocuments(items []rfp.Document, v listing.View) ([]rfp.Document, error) {
	var cmp func(a, b rfp.Document) int
	switch strings.ToLower(v.Sort) {
	case "", SortNewest:
		cmp = listing.ByTimeDesc(documentTime)
	case SortOldest:
		cmp = listing.ByTimeAsc(documentTime)
	case SortName:
		cmp = listing.ByName(func(d rfp.Document) string { return d.Filename })
	case SortSize:
		cmp = listing.ByIntDesc(func(d rfp.Document) int64 { return d.FileSize })
	default:
		return nil, unknownSort(v.Sort, SortNewest, SortOldest, SortName, SortSize)
	}
	return listing.Apply(items, v.Query, func(d rfp.Document) []string { return []string{d.Filename} }, nil, cmp), nil
}

// DocumentsView returns one page of the document list.
func DocumentsView(items []rfp.Document, v listing.View, pageSize int) (ListPage[rfp.Document], error) {
	filtered, err := FilterDocuments(items, v)
	if err != nil {
		return ListPage[rfp.Document]{}, err
	}
	return paginate(items, filtered, v.Page, pageSize), nil
}

func attributeTime(a rfp.Attribute) time.Time { return a.LastUpdated.Time }

// FilterAttributes searches key or value, filters by category and sorts.
func FilterAttributes(items []rfp.Attribute, v listing.View) ([]rfp.Attribute, error) {
	var cmp func(a, b rfp.Attribute) int
	switch strings.ToLower(v.Sort) {
	case "", SortNewest:
		cmp = listing.ByTimeDesc(attributeTime)
	case SortOldest:
		cmp = listing.ByTimeAsc(attributeTime)
	case SortName:
		cmp = listing.ByName(func(a rfp.Attribute) string { return a.Key })
	case SortCategory:
		cmp = listing.ByString(func(a rfp.Attribute) string { return string(a.Category) })
	default:
		return nil, unknownSort(v.Sort, SortNewest, SortOldest, SortName, SortCategory)
	}

	var pred func(rfp.Attribute) bool
	if !isAll(v.Filter) {
		category := rfp.Category(strings.ToLower(strings.TrimSpace(v.Filter)))
		if !category.IsValid() {
			return nil, fmt.Errorf("%w: category %q", listing.ErrUnknownFilter, v.Filter)
		}
		pred = func(a rfp.Attribute) bool { return a.Category == category }
	}

	return listing.Apply(items, v.Query, func(a rfp.Attribute) []string { return []string{a.Key, a.Value} }, pred, cmp), nil
}

// AttributesView returns one page of the attribute list.
func AttributesView(items []rfp.Attribute, v listing.View, pageSize int) (ListPage[rfp.Attribute], error) {
	filtered, err := FilterAttributes(items, v)
	if err != nil {
		return ListPage[rfp.Attribute]{}, err
	}
	return paginate(items, filtered, v.Page, pageSize), nil
}

// AttributeCategoryCounts counts attributes per category, plus "all".
func AttributeCategoryCounts(items []rfp.Attribute) map[string]int {
	counts := listing.Counts(items, func(a rfp.Attribute) string { return string(a.Category) })
	counts[listing.FilterAll] = len(items)
	return counts
}
