package domain

import (
	"math"
	"strconv"
)

// Page restricts list results. A zero Limit means no limit.
type Page struct {
	Limit int
	Skip  int
}

// ParsePage interprets the limit and page query values. limit is honoured
// only when it is a positive integer; page only when it is a positive integer
// and limit was honoured, in which case limit*page records are skipped.
func ParsePage(limit, page string) Page {
	var p Page
	n, err := strconv.Atoi(limit)
	if err != nil || n <= 0 {
		return p
	}
	p.Limit = n
	if pg, err := strconv.Atoi(page); err == nil && pg > 0 && pg <= math.MaxInt/n {
		p.Skip = n * pg
	}
	return p
}

// Apply slices items according to the page.
func Apply[T any](items []T, p Page) []T {
	if p.Skip >= len(items) {
		return items[:0]
	}
	items = items[p.Skip:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
