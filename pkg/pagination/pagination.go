// Package pagination computes page windows over ordered collections.
//
// A page is addressed by a 1-based page number and a page size. Besides the
// page items every result carries NextPagesAmount, the number of pages left
// after the current one: ceil(max(0, N - page*size) / size).
package pagination

import "gorm.io/gorm"

const (
	DefaultPageNum  = 1
	DefaultPageSize = 6
)

// Params is bound from the page_num and page_size query parameters.
type Params struct {
	PageNum  int `form:"page_num" json:"page_num" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"`
}

// Page is one window of a collection.
type Page[T any] struct {
	Items           []T `json:"items"`
	PageNum         int `json:"page_num"`
	PageSize        int `json:"page_size"`
	NextPagesAmount int `json:"next_pages_amount"`
}

// Normalize fills unset values with the given defaults and caps the page size.
// maxSize <= 0 disables the cap.
func (p Params) Normalize(defaultNum, defaultSize, maxSize int) Params {
	if p.PageNum < 1 {
		p.PageNum = defaultNum
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Valid reports whether the params address a page. Callers reject invalid
// params before calling Slice or Scope.
func (p Params) Valid() bool {
	return p.PageNum >= 1 && p.PageSize >= 1
}

// Offset is the number of items preceding the page.
func (p Params) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}

// NextPagesAmount returns how many pages follow the page addressed by p in a
// collection of total items.
func NextPagesAmount(total int64, p Params) int {
	remaining := total - int64(p.PageNum)*int64(p.PageSize)
	if remaining <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return int((remaining + size - 1) / size)
}

// Slice returns the page of items addressed by p. A page past the end is empty.
func Slice[T any](items []T, p Params) Page[T] {
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}

	window := make([]T, end-start)
	copy(window, items[start:end])

	return Page[T]{
		Items:           window,
		PageNum:         p.PageNum,
		PageSize:        p.PageSize,
		NextPagesAmount: NextPagesAmount(int64(len(items)), p),
	}
}

// FromQuery builds a page from items already fetched with Scope and the total
// row count of the unpaginated query.
func FromQuery[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:           items,
		PageNum:         p.PageNum,
		PageSize:        p.PageSize,
		NextPagesAmount: NextPagesAmount(total, p),
	}
}

// Map converts the items of a page, keeping the window metadata.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(page.Items))
	for i, item := range page.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:           out,
		PageNum:         page.PageNum,
		PageSize:        page.PageSize,
		NextPagesAmount: page.NextPagesAmount,
	}
}

// Scope applies the page window to a gorm query.
func Scope(p Params) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}
