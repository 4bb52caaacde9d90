package query

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultSize = 20
	maxSize     = 100
)

type Page struct {
	Number int
	Size   int
}

func (p *Page) offset() int {
	return (p.Number - 1) * p.Size
}

func (p *Page) normalize() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
}

func NewPage(number, size int) Page {
	p := Page{Number: number, Size: size}
	p.normalize()
	return p
}

func DefaultPage() Page {
	return NewPage(1, defaultSize)
}

func PageFromGin(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	return NewPage(number, size)
}

type Result[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func (r *Result[T]) HasNext() bool {
	return r.Page < r.TotalPages
}

func newResult[T any](items []T, page Page, total int64) *Result[T] {
	totalPages := int(total) / page.Size
	if int(total)%page.Size > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return &Result[T]{
		Data:       items,
		Page:       page.Number,
		Size:       page.Size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// NewResult builds a page result from already loaded items, for in-memory stores.
func NewResult[T any](items []T, page Page, total int64) *Result[T] {
	page.normalize()
	return newResult(items, page, total)
}
