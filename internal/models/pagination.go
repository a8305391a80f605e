package models

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams are the paging and sorting options of a list request
type PageParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // ASC or DESC
	Search    string
}

// PageParamsFromQuery reads page, limit, sortBy, sortOrder and search from a query string
func PageParamsFromQuery(q url.Values) PageParams {
	p := PageParams{
		Page:      atoiDefault(q.Get("page"), DefaultPage),
		Limit:     atoiDefault(q.Get("limit"), DefaultLimit),
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToUpper(q.Get("sortOrder")),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	return p.Normalize()
}

// Normalize clamps paging values into range
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortOrder != "DESC" {
		p.SortOrder = "ASC"
	}
	return p
}

// Offset returns the number of rows to skip
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy returns an ORDER BY clause for sortBy if it is one of the allowed columns,
// otherwise for fallback
func (p PageParams) OrderBy(allowed map[string]string, fallback string) string {
	col, ok := allowed[p.SortBy]
	if !ok {
		col = fallback
	}
	return col + " " + p.SortOrder
}

// Page is one page of a listing
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage wraps items with the paging metadata
func NewPage[T any](items []T, total int64, p PageParams) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return &Page[T]{
		Data:       items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
