package services

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// normalizePage clamps page to >= 1 and perPage to [1, max], using def when
// perPage is not set.
func normalizePage(page, perPage, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = def
	}
	if max > 0 && perPage > max {
		perPage = max
	}
	if perPage <= 0 {
		perPage = 1
	}
	return page, perPage
}

func newPage[T any](items []T, page, perPage int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total, LastPage: last}
}

func pageOffset(page, perPage int) int {
	return (page - 1) * perPage
}
