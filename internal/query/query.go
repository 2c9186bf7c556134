// Package query derives the filtered, sorted and paginated views of a ledger.
package query

import (
	"slices"
	"strings"

	"kharcha/internal/core"
)

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 5

// Criteria selects expenses; empty fields match everything.
type Criteria struct {
	Category    string `json:"category,omitempty"`
	MonthPrefix string `json:"month,omitempty"`
	Search      string `json:"search,omitempty"`
}

func (c Criteria) IsZero() bool {
	return c.Category == "" && c.MonthPrefix == "" && c.Search == ""
}

// Match reports whether e satisfies every active criterion.
func (c Criteria) Match(e core.Expense) bool {
	if c.Category != "" && e.Category != c.Category {
		return false
	}
	if c.MonthPrefix != "" && !strings.HasPrefix(e.Date.String(), c.MonthPrefix) {
		return false
	}
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(e.Note), q) && !strings.Contains(strings.ToLower(e.Category), q) {
			return false
		}
	}
	return true
}

// Filter keeps the matching expenses in their original order.
func Filter(expenses []core.Expense, c Criteria) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDateDescending returns a copy with the most recent date first.
// Expenses on the same day keep their relative order.
func SortByDateDescending(expenses []core.Expense) []core.Expense {
	out := slices.Clone(expenses)
	slices.SortStableFunc(out, func(a, b core.Expense) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// Paginate returns page number page (1-based) of the given size.
func Paginate(expenses []core.Expense, page, size int) []core.Expense {
	if page < 1 || size < 1 || page-1 >= PageCount(len(expenses), size) {
		return []core.Expense{}
	}
	start := (page - 1) * size
	end := min(start+size, len(expenses))
	return expenses[start:end]
}

// PageCount is ceil(total/size).
func PageCount(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}

// ClampPage keeps page within [1, max(1, pages)].
func ClampPage(page, total, size int) int {
	return max(1, min(page, PageCount(total, size)))
}

type Page struct {
	Items      []core.Expense `json:"items"`
	Number     int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	HasPrev    bool           `json:"hasPrev"`
	HasNext    bool           `json:"hasNext"`
}

// NewPage clamps page and slices the already filtered and sorted expenses.
func NewPage(expenses []core.Expense, page, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(expenses), size)
	pages := PageCount(len(expenses), size)
	return Page{
		Items:      Paginate(expenses, page, size),
		Number:     page,
		PageSize:   size,
		Total:      len(expenses),
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}

// Table filters, sorts by date descending and paginates in one step.
func Table(expenses []core.Expense, c Criteria, page, size int) Page {
	return NewPage(SortByDateDescending(Filter(expenses, c)), page, size)
}

// Categories lists the distinct categories in lexical order.
func Categories(expenses []core.Expense) []string {
	seen := make(map[string]struct{}, len(expenses))
	out := make([]string, 0)
	for _, e := range expenses {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	slices.Sort(out)
	return out
}
