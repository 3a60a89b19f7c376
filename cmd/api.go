package main

// service API schemas.
// pagination state (size/key) travels in query parameters so page links
// are copyable; everything else is in the request body.

// SearchRequestFilters mirrors the filter model. unknown fields are
// rejected at decode time.
type SearchRequestFilters struct {
	MatchNothing                 bool                     `json:"match_nothing,omitempty"`
	Media                        []string                 `json:"media,omitempty"`
	Languages                    []string                 `json:"languages,omitempty"`
	Fiction                      string                   `json:"fiction,omitempty"` // "fiction" or "nonfiction"
	Audiences                    []string                 `json:"audiences,omitempty"`
	Series                       string                   `json:"series,omitempty"`
	TargetAge                    []*int                   `json:"target_age,omitempty"` // [lower, upper], either may be null
	Collections                  []int64                  `json:"collections,omitempty"`
	LicenseDataSources           []int64                  `json:"license_datasources,omitempty"`
	Genres                       [][]int64                `json:"genres,omitempty"`
	Customlists                  [][]int64                `json:"customlists,omitempty"`
	Author                       *SearchRequestAuthor     `json:"author,omitempty"`
	Identifiers                  []SearchRequestIdentifier `json:"identifiers,omitempty"`
	UpdatedAfter                 string                   `json:"updated_after,omitempty"` // RFC 3339
	ExcludedAudiobookDataSources []int64                  `json:"excluded_audiobook_datasources,omitempty"`
	AllowHolds                   *bool                    `json:"allow_holds,omitempty"`
	Availability                 string                   `json:"availability,omitempty"`
	Collection                   string                   `json:"collection,omitempty"`
}

type SearchRequestAuthor struct {
	SortName    string `json:"sort_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Viaf        string `json:"viaf,omitempty"`
	Lc          string `json:"lc,omitempty"`
}

type SearchRequestIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type SearchRequestSort struct {
	Order     string `json:"order"`               // title, author, last_update, ...
	Direction string `json:"direction,omitempty"` // asc (default) or desc
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query   string                `json:"query"`
	Filters *SearchRequestFilters `json:"filters,omitempty"`
	Sort    *SearchRequestSort    `json:"sort,omitempty"`
}

// SearchPagination reports the page that was served and how to get the
// next one.
type SearchPagination struct {
	Size    int    `json:"size"`
	Key     string `json:"key,omitempty"`      // key that produced this page
	NextKey string `json:"next_key,omitempty"` // absent on the last page
}

// WorkResult is one work in a search response.
type WorkResult struct {
	ID           string                 `json:"id"`
	Score        *float32               `json:"score,omitempty"`
	Work         workDocument           `json:"work"`
	SortKey      []interface{}          `json:"sort_key,omitempty"`
	ScriptFields map[string]interface{} `json:"script_fields,omitempty"`
}

// SearchResponse is the full response to a search request.
type SearchResponse struct {
	Query      string           `json:"query"`
	Total      int              `json:"total"`
	Pagination SearchPagination `json:"pagination"`
	Works      []WorkResult     `json:"works"`
	ElapsedMS  int64            `json:"elapsed_ms,omitempty"`
	Debug      *SearchDebug     `json:"debug,omitempty"`
}

type SearchDebug struct {
	RequestID string   `json:"request_id"`
	MaxScore  *float32 `json:"max_score,omitempty"`
}

// FacetValue is one bucket of a facet aggregation.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Facet struct {
	Name   string       `json:"name"`
	Values []FacetValue `json:"values"`
}

// FacetsResponse is the response to POST /api/search/facets.
type FacetsResponse struct {
	Facets []Facet `json:"facets"`
}

// IndexRequest is the body of POST /api/works: documents to (re)index.
type IndexRequest struct {
	Works []workDocument `json:"works"`
}

// IndexResponse reports per-document indexing outcomes.
type IndexResponse struct {
	Indexed  []int64       `json:"indexed"`
	Failures []bulkFailure `json:"failures,omitempty"`
}

// PoolIdentity describes this service to its clients, localized per
// request.
type PoolIdentity struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Mode        string       `json:"mode,omitempty"`
	SortOptions []SortOption `json:"sort_options,omitempty"`
}

type SortOption struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// Provider is a license data source works in this index may come from.
type Provider struct {
	Provider    string `json:"provider"`
	Label       string `json:"label,omitempty"`
	HomepageURL string `json:"homepage_url,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

type Providers struct {
	Providers []Provider `json:"providers"`
}
