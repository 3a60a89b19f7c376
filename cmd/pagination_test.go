package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestValues(values map[string]string) func(name, fallback string) string {
	return func(name, fallback string) string {
		if v, ok := values[name]; ok {
			return v
		}
		return fallback
	}
}

func TestPaginationDefaults(t *testing.T) {
	p, problem := paginationFromRequest(requestValues(nil), 0)

	require.Nil(t, problem)
	assert.Equal(t, defaultPageSize, p.size)
	assert.Nil(t, p.lastItemOnPreviousPage)
	assert.Equal(t, 0, p.offset())
	assert.Equal(t, "", p.paginationKey())
}

func TestPaginationSizeClamped(t *testing.T) {
	p, problem := paginationFromRequest(requestValues(map[string]string{"size": "200"}), 0)

	require.Nil(t, problem)
	assert.Equal(t, maxPageSize, p.size)

	p, problem = paginationFromRequest(requestValues(map[string]string{"size": "-5"}), 0)

	require.Nil(t, problem)
	assert.Equal(t, defaultPageSize, p.size)
}

func TestPaginationServiceDefaultSize(t *testing.T) {
	p, problem := paginationFromRequest(requestValues(nil), 25)

	require.Nil(t, problem)
	assert.Equal(t, 25, p.size)
}

func TestPaginationInvalidSize(t *testing.T) {
	_, problem := paginationFromRequest(requestValues(map[string]string{"size": "string"}), 0)

	require.NotNil(t, problem)
	assert.Equal(t, "http://librarysimplified.org/terms/problem/invalid-input", problem.Type)
	assert.Equal(t, 400, problem.Status)
	assert.Equal(t, "Invalid page size: string", problem.Detail)
}

func TestPaginationInvalidKey(t *testing.T) {
	_, problem := paginationFromRequest(requestValues(map[string]string{"key": "not json"}), 0)

	require.NotNil(t, problem)
	assert.Equal(t, "Invalid page key: not json", problem.Detail)

	// an empty array is a well-formed but useless cursor
	_, problem = paginationFromRequest(requestValues(map[string]string{"key": "[]"}), 0)

	require.NotNil(t, problem)
	assert.Equal(t, "Invalid page key: []", problem.Detail)
}

func TestPaginationKeyRoundTrip(t *testing.T) {
	p, problem := paginationFromRequest(requestValues(map[string]string{"key": `["Little Women",123]`}), 0)

	require.Nil(t, problem)
	assert.Equal(t, []interface{}{"Little Women", float64(123)}, p.lastItemOnPreviousPage)
	assert.Equal(t, `["Little Women",123]`, p.paginationKey())
}

func TestPaginationItems(t *testing.T) {
	p := newSortKeyPagination(20)

	assert.Equal(t, [][2]string{{"size", "20"}}, p.items())

	p.lastItemOnPreviousPage = []interface{}{"key value", float64(7)}
	assert.Equal(t, [][2]string{
		{"key", `["key value",7]`},
		{"size", "20"},
	}, p.items())
}

func TestPaginationModifySearchRequest(t *testing.T) {
	p := newSortKeyPagination(30)

	var req esRequestJSON
	p.modifySearchRequest(&req)

	require.NotNil(t, req.Size)
	assert.Equal(t, 30, *req.Size)
	assert.Nil(t, req.SearchAfter)

	p.lastItemOnPreviousPage = []interface{}{"cursor", float64(9)}
	p.modifySearchRequest(&req)

	assert.Equal(t, []interface{}{"cursor", float64(9)}, req.SearchAfter)
}

func TestPaginationNextPage(t *testing.T) {
	p := newSortKeyPagination(2)

	// no page loaded yet
	assert.Nil(t, p.nextPage())

	hits := []esResponseHit{
		{ID: "1", Sort: []interface{}{"alpha", float64(1)}},
		{ID: "2", Sort: []interface{}{"beta", float64(2)}},
	}
	p.pageLoaded(hits)

	next := p.nextPage()
	require.NotNil(t, next)
	assert.Equal(t, 2, next.size)
	assert.Equal(t, []interface{}{"beta", float64(2)}, next.lastItemOnPreviousPage)

	// an empty page ends the sequence
	next.pageLoaded(nil)
	assert.Nil(t, next.nextPage())
}
