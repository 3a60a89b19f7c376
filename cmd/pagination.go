package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// sort-key pagination. instead of offsets, each page is identified by the
// sort key of the last item on the previous page, which stays correct as
// the index changes underneath the client.

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// problemDetail is an RFC 7807 style error document.
type problemDetail struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

var invalidInputProblem = problemDetail{
	Type:   "http://librarysimplified.org/terms/problem/invalid-input",
	Status: http.StatusBadRequest,
	Title:  "Invalid input.",
}

func (pd problemDetail) detailed(format string, args ...interface{}) *problemDetail {
	pd.Detail = fmt.Sprintf(format, args...)
	return &pd
}

type sortKeyPagination struct {
	size int

	// sort key of the last item on the previous page; nil on page one
	lastItemOnPreviousPage []interface{}

	// set once a page of results has been loaded
	loaded             bool
	thisPageSize       int
	lastItemOnThisPage []interface{}
}

func newSortKeyPagination(size int) *sortKeyPagination {
	if size <= 0 {
		size = defaultPageSize
	}

	if size > maxPageSize {
		size = maxPageSize
	}

	return &sortKeyPagination{size: size}
}

// paginationFromRequest builds pagination state from request values. get
// returns the named value or the fallback; defaultSize <= 0 means the
// standard default.
func paginationFromRequest(get func(name, fallback string) string, defaultSize int) (*sortKeyPagination, *problemDetail) {
	if defaultSize <= 0 {
		defaultSize = defaultPageSize
	}

	size := defaultSize

	if sizeStr := get("size", ""); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, invalidInputProblem.detailed("Invalid page size: %s", sizeStr)
		}
		size = parsed
	}

	pagination := newSortKeyPagination(size)

	if keyStr := get("key", ""); keyStr != "" {
		var key []interface{}
		if err := json.Unmarshal([]byte(keyStr), &key); err != nil || len(key) == 0 {
			return nil, invalidInputProblem.detailed("Invalid page key: %s", keyStr)
		}
		pagination.lastItemOnPreviousPage = key
	}

	return pagination, nil
}

// paginationKey serializes the previous page's last sort key for use in a
// URL or response body. empty on page one.
func (p *sortKeyPagination) paginationKey() string {
	if p.lastItemOnPreviousPage == nil {
		return ""
	}

	key, err := json.Marshal(p.lastItemOnPreviousPage)
	if err != nil {
		return ""
	}

	return string(key)
}

// items returns the request values that reproduce this page.
func (p *sortKeyPagination) items() [][2]string {
	var items [][2]string

	if key := p.paginationKey(); key != "" {
		items = append(items, [2]string{"key", key})
	}

	items = append(items, [2]string{"size", strconv.Itoa(p.size)})

	return items
}

// offset is always zero: the engine starts each page fresh from the key.
func (p *sortKeyPagination) offset() int {
	return 0
}

// modifySearchRequest applies the page size and, past page one, the
// search_after cursor.
func (p *sortKeyPagination) modifySearchRequest(req *esRequestJSON) {
	req.Size = &p.size

	if p.lastItemOnPreviousPage != nil {
		req.SearchAfter = p.lastItemOnPreviousPage
	}
}

// pageLoaded records what came back so nextPage knows where to resume.
func (p *sortKeyPagination) pageLoaded(hits []esResponseHit) {
	p.loaded = true
	p.thisPageSize = len(hits)

	if len(hits) > 0 {
		p.lastItemOnThisPage = hits[len(hits)-1].Sort
	}
}

// nextPage returns the pagination for the following page, nil until a page
// has loaded or once an empty page marks the end of the results.
func (p *sortKeyPagination) nextPage() *sortKeyPagination {
	if !p.loaded || p.thisPageSize == 0 {
		return nil
	}

	return &sortKeyPagination{
		size:                   p.size,
		lastItemOnPreviousPage: p.lastItemOnThisPage,
	}
}
