// Package listing implements the search, sort and pagination pipeline shared
// by every list view: filter, then sort, then paginate.
package listing

// DefaultPageSize is the page size of the question list.
const DefaultPageSize = 25

// TotalPages returns ceil(count/pageSize), never less than 1 so an empty
// list still renders as page 1 of 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Page returns the items of the 1-based page and the total page count.
//
// Page does not clamp pageNumber. An out-of-range page yields an empty slice,
// which callers render as "no results"; use ClampPage first when the page
// number comes from user input.
func Page[T any](items []T, pageSize, pageNumber int) ([]T, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)
	if pageNumber < 1 {
		return []T{}, total
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(items) {
		return []T{}, total
	}
	end := min(start+pageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, total
}

// ClampPage bounds page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window returns the 1-based positions of the first and last item shown on a
// page, for "Showing first to last of count". Both are 0 when the page is empty.
func Window(count, pageSize, page int) (first, last int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	start := (page - 1) * pageSize
	if page < 1 || start >= count {
		return 0, 0
	}
	return start + 1, min(start+pageSize, count)
}
