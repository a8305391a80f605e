package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParamsFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PageParams
	}{
		{"defaults", "", PageParams{Page: 1, Limit: 10, SortOrder: "ASC"}},
		{"explicit", "page=3&limit=25&sortBy=name&sortOrder=desc&search=+acme+", PageParams{Page: 3, Limit: 25, SortBy: "name", SortOrder: "DESC", Search: "acme"}},
		{"clamped", "page=0&limit=1000", PageParams{Page: 1, Limit: MaxLimit, SortOrder: "ASC"}},
		{"garbage", "page=x&limit=-4&sortOrder=sideways", PageParams{Page: 1, Limit: 10, SortOrder: "ASC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, PageParamsFromQuery(q))
		})
	}
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"name": "roles.name"}

	p := PageParams{SortBy: "name", SortOrder: "DESC"}
	assert.Equal(t, "roles.name DESC", p.OrderBy(allowed, "roles.created_at"))

	p = PageParams{SortBy: "name; DROP TABLE roles", SortOrder: "ASC"}
	assert.Equal(t, "roles.created_at ASC", p.OrderBy(allowed, "roles.created_at"))
}

func TestNewPage(t *testing.T) {
	page := NewPage[string](nil, 21, PageParams{Page: 2, Limit: 10})
	assert.NotNil(t, page.Data)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 10, PageParams{Page: 2, Limit: 10}.Offset())
}
