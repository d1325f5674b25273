package item

import "strings"

// Query describes one page of one filtered view of the dataset.
// A Limit of zero or less means no limit: every match from Offset onward is returned.
type Query struct {
	Search string
	Offset int
	Limit  int
}

// Page is the result of running a Query against a dataset.
type Page struct {
	Items  []Item `json:"items"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
}

// Showing returns the number of items on the page.
func (p Page) Showing() int {
	return len(p.Items)
}

// Matches reports whether it matches term as a case-insensitive substring of its
// name or category. An empty term matches everything.
func Matches(it Item, term string) bool {
	return matchesLower(it, strings.ToLower(term))
}

func matchesLower(it Item, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return containsFold(it.Name, lowerTerm) || containsFold(it.Category, lowerTerm)
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

// Filter returns the items matching search, preserving dataset order.
// When search is empty the input slice is returned as is.
func Filter(items []Item, search string) []Item {
	term := strings.ToLower(search)
	if term == "" {
		return items
	}

	out := make([]Item, 0)
	for _, it := range items {
		if matchesLower(it, term) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate slices filtered according to offset and limit. The end index is clamped
// to the slice length; an offset past the end yields an empty, non-nil page.
func Paginate(filtered []Item, offset, limit int) []Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []Item{}
	}

	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]Item, end-offset)
	copy(page, filtered[offset:end])
	return page
}

// Run filters the dataset and returns the requested page together with the size of
// the full filtered set.
func Run(dataset []Item, q Query) Page {
	filtered := Filter(dataset, q.Search)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return Page{
		Items:  Paginate(filtered, offset, q.Limit),
		Total:  len(filtered),
		Offset: offset,
	}
}

// FindByID returns the item with the given id or ErrNotFound.
func FindByID(dataset []Item, id int64) (Item, error) {
	for _, it := range dataset {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}
