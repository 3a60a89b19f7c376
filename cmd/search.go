package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// searchContext runs one request through the pipeline: parse the request,
// build the filter and query, compile the engine request, execute it, and
// map the hits back to API records.

type searchResponse struct {
	status int         // http status code
	data   interface{} // data to return as JSON
	err    error       // error, if any
}

type searchContext struct {
	pool   *poolContext
	client *clientContext

	req        SearchRequest
	filter     *searchFilter
	pagination *sortKeyPagination

	esReq *esRequest
	esRes *esResponse

	// status to report when the backend round trip fails
	svcStatus int
}

func (s *searchContext) init(p *poolContext, c *clientContext) {
	s.pool = p
	s.client = c
	s.svcStatus = http.StatusInternalServerError
}

func (s *searchContext) log(format string, args ...interface{}) {
	s.client.log(format, args...)
}

func (s *searchContext) err(format string, args ...interface{}) {
	s.client.err(format, args...)
}

func (s *searchContext) failure(status int, err error) searchResponse {
	return searchResponse{status: status, data: invalidInputProblem.detailed("%s", err.Error()), err: err}
}

// parseSearchRequest decodes the request body strictly: a filter field we
// do not recognize is a client error, not something to guess about.
func (s *searchContext) parseSearchRequest(body io.Reader) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&s.req); err != nil {
		return fmt.Errorf("invalid search request: %s", err.Error())
	}

	return nil
}

// buildSearchFilter maps the request filters onto the filter model,
// validating values as it goes.
func (s *searchContext) buildSearchFilter() error {
	f := newSearchFilter()

	req := s.req.Filters
	if req == nil {
		req = &SearchRequestFilters{}
	}

	f.matchNothing = req.MatchNothing

	if req.Media != nil {
		f.media = nonemptyValues(req.Media)
	}
	if req.Languages != nil {
		f.languages = nonemptyValues(req.Languages)
	}
	if req.Audiences != nil {
		f.audiences = nonemptyValues(req.Audiences)
	}
	f.series = req.Series
	f.collectionIDs = req.Collections
	f.licenseDataSourceIDs = req.LicenseDataSources
	f.genreRestrictionSets = req.Genres
	f.customlistRestrictionSets = req.Customlists
	f.excludedAudiobookDataSourceIDs = req.ExcludedAudiobookDataSources

	switch req.Fiction {
	case "":
	case "fiction":
		val := true
		f.fiction = &val
	case "nonfiction":
		val := false
		f.fiction = &val
	default:
		return fmt.Errorf("invalid fiction value: %s", req.Fiction)
	}

	switch len(req.TargetAge) {
	case 0:
	case 1:
		if req.TargetAge[0] != nil {
			f.targetAge = ageRangeFromInt(*req.TargetAge[0])
		}
	case 2:
		f.targetAge = ageRangeFromBounds(req.TargetAge[0], req.TargetAge[1])
	default:
		return fmt.Errorf("invalid target age: expected [lower, upper]")
	}

	if f.targetAge.lower != nil && f.targetAge.upper != nil && *f.targetAge.lower > *f.targetAge.upper {
		return fmt.Errorf("invalid target age: lower bound exceeds upper bound")
	}

	if req.Author != nil {
		f.author = &contributorQuery{
			sortName:    req.Author.SortName,
			displayName: req.Author.DisplayName,
			viaf:        req.Author.Viaf,
			lc:          req.Author.Lc,
		}
	}

	for _, ident := range req.Identifiers {
		if ident.Identifier == "" || ident.Type == "" {
			return fmt.Errorf("identifiers require both type and identifier")
		}
		f.identifiers = append(f.identifiers, workIdentifier{
			identifierType: ident.Type,
			identifier:     ident.Identifier,
		})
	}

	if req.UpdatedAfter != "" {
		when, err := time.Parse(time.RFC3339, req.UpdatedAfter)
		if err != nil {
			return fmt.Errorf("invalid updated_after value: %s", req.UpdatedAfter)
		}
		f.updatedAfter = &when
	}

	if req.AllowHolds != nil {
		f.allowHolds = *req.AllowHolds
	}

	switch req.Availability {
	case "", availabilityAll, availabilityNow, availabilityOpenAccess:
	default:
		return fmt.Errorf("invalid availability value: %s", req.Availability)
	}

	switch req.Collection {
	case "", subcollectionFull, subcollectionMain, subcollectionFeatured:
	default:
		return fmt.Errorf("invalid collection value: %s", req.Collection)
	}

	f.applyFacets(&defaultFacets{
		availability:           req.Availability,
		subcollection:          req.Collection,
		minimumFeaturedQuality: s.pool.config.Search.MinimumFeaturedQuality,
	})

	// the featured subcollection also reorders by featurability
	if req.Collection == subcollectionFeatured {
		f.applyFacets(&featuredFacets{
			minimumFeaturedQuality: s.pool.config.Search.MinimumFeaturedQuality,
			randomSeed:             s.client.reqID,
		})
	}

	if s.req.Sort != nil {
		order, ok := s.pool.maps.sortOrders[s.req.Sort.Order]
		if !ok {
			// allow engine order names directly as well as option xids
			if !sliceContainsString(validSortOrders(), s.req.Sort.Order, false) {
				return fmt.Errorf("invalid sort order: %s", s.req.Sort.Order)
			}
			order = s.req.Sort.Order
		}

		direction := s.req.Sort.Direction
		if direction == "" {
			direction = "asc"
		}

		if !isValidSortDirection(direction) {
			return fmt.Errorf("invalid sort direction: %s", direction)
		}

		f.order = order
		f.orderAscending = direction == "asc"
	}

	// surface the computed last-update time on each hit so clients see the
	// same value the sort used
	if f.order == orderLastUpdate {
		f.scriptFields = map[string]interface{}{
			"last_update": f.lastUpdateScriptField(),
		}
	}

	s.filter = f

	return nil
}

// buildSearchRequest assembles the full engine request: query context,
// filter context, nested filters, scoring functions, sort, pagination.
func (s *searchContext) buildSearchRequest() error {
	query := newSearchQuery(s.req.Query, s.filter, s.pool.lex, !s.pool.config.Search.DisableFuzzy).elasticsearchQuery()

	main, nested := s.filter.build(nil)

	filterContext := s.filter.universalBase()
	if main != nil {
		filterContext = append(filterContext, main)
	}

	// merge universal nested filters with the built ones, in path order
	// so the rendered request is deterministic
	merged := make(map[string][]esQuery)
	for path, clauses := range s.filter.universalNested() {
		merged[path] = append(merged[path], clauses...)
	}
	for path, clauses := range nested {
		merged[path] = append(merged[path], clauses...)
	}

	paths := make([]string, 0, len(merged))
	for path := range merged {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		filterContext = append(filterContext, nestedQuery(path, boolQuery(boolArgs{filter: merged[path]})))
	}

	full := boolQuery(boolArgs{
		must:   []esQuery{query},
		filter: filterContext,
	})

	if len(s.filter.scoringFunctions) > 0 {
		full = functionScoreQuery(full, s.filter.scoringFunctions)
	}

	sortKeys, err := s.filter.sortOrder()
	if err != nil {
		return err
	}

	s.esReq = &esRequest{
		json: esRequestJSON{
			Query:        full,
			Sort:         sortKeys,
			ScriptFields: s.filter.scriptFields,
		},
		meta: esRequestMeta{client: s.client},
	}

	s.pagination.modifySearchRequest(&s.esReq.json)

	return nil
}

func (s *searchContext) buildSearchResponse() *SearchResponse {
	s.pagination.pageLoaded(s.esRes.Hits.Hits)

	works := make([]WorkResult, 0, len(s.esRes.Hits.Hits))
	for _, hit := range s.esRes.Hits.Hits {
		works = append(works, WorkResult{
			ID:           hit.ID,
			Score:        hit.Score,
			Work:         hit.Source,
			SortKey:      hit.Sort,
			ScriptFields: hit.ScriptFields,
		})
	}

	res := &SearchResponse{
		Query: s.req.Query,
		Total: s.esRes.Hits.Total.Value,
		Pagination: SearchPagination{
			Size: s.pagination.size,
			Key:  s.pagination.paginationKey(),
		},
		Works:     works,
		ElapsedMS: int64(time.Since(s.client.start) / time.Millisecond),
	}

	if next := s.pagination.nextPage(); next != nil {
		res.Pagination.NextKey = next.paginationKey()
	}

	if s.client.opts.debug == true {
		res.Debug = &SearchDebug{
			RequestID: s.client.reqID,
			MaxScore:  s.esRes.Hits.MaxScore,
		}
	}

	return res
}

func (s *searchContext) handleSearchRequest() searchResponse {
	if err := s.parseSearchRequest(s.client.ginCtx.Request.Body); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	if err := s.buildSearchFilter(); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	pagination, problem := paginationFromRequest(s.client.requestValue, s.pool.config.Search.DefaultPageSize)
	if problem != nil {
		return searchResponse{status: problem.Status, data: problem, err: fmt.Errorf("%s", problem.Detail)}
	}
	s.pagination = pagination

	// a match-nothing filter never has results; skip the backend round trip
	if s.filter.matchNothing {
		s.pagination.pageLoaded(nil)
		return searchResponse{status: http.StatusOK, data: &SearchResponse{
			Query: s.req.Query,
			Pagination: SearchPagination{
				Size: s.pagination.size,
				Key:  s.pagination.paginationKey(),
			},
			Works: []WorkResult{},
		}}
	}

	if err := s.buildSearchRequest(); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	if err := s.esSearch(); err != nil {
		return searchResponse{status: s.svcStatus, err: err}
	}

	return searchResponse{status: http.StatusOK, data: s.buildSearchResponse()}
}

// facet aggregations requested alongside (or instead of) search results
var facetAggregations = []struct {
	name   string
	field  string
	nested string
}{
	{name: "audience", field: "audience"},
	{name: "language", field: "language"},
	{name: "medium", field: "medium"},
	{name: "genres", field: "genres.name", nested: "genres"},
}

func (s *searchContext) handleFacetsRequest() searchResponse {
	if err := s.parseSearchRequest(s.client.ginCtx.Request.Body); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	if err := s.buildSearchFilter(); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	if s.filter.matchNothing {
		return searchResponse{status: http.StatusOK, data: &FacetsResponse{Facets: []Facet{}}}
	}

	s.pagination = newSortKeyPagination(0)

	if err := s.buildSearchRequest(); err != nil {
		return s.failure(http.StatusBadRequest, err)
	}

	// facet requests want buckets, not rows

	zero := 0
	s.esReq.json.Size = &zero
	s.esReq.json.Sort = nil
	s.esReq.meta.requestAggs = true

	aggs := make(map[string]interface{})
	for _, facet := range facetAggregations {
		terms := map[string]interface{}{
			"terms": map[string]interface{}{"field": facet.field, "size": 100},
		}

		if facet.nested != "" {
			aggs[facet.name] = map[string]interface{}{
				"nested": map[string]interface{}{"path": facet.nested},
				"aggs":   map[string]interface{}{facet.name: terms},
			}
		} else {
			aggs[facet.name] = terms
		}
	}
	s.esReq.json.Aggs = aggs

	if err := s.esSearch(); err != nil {
		return searchResponse{status: s.svcStatus, err: err}
	}

	res := &FacetsResponse{Facets: []Facet{}}

	for _, facet := range facetAggregations {
		agg, ok := s.esRes.aggregations[facet.name]
		if ok == false {
			continue
		}

		values := make([]FacetValue, 0, len(agg.Buckets))
		for _, bucket := range agg.Buckets {
			values = append(values, FacetValue{
				Value: fmt.Sprintf("%v", bucket.Key),
				Count: bucket.DocCount,
			})
		}

		res.Facets = append(res.Facets, Facet{Name: facet.name, Values: values})
	}

	return searchResponse{status: http.StatusOK, data: res}
}

func (s *searchContext) handleWorkRequest(id string) searchResponse {
	one := 1

	s.esReq = &esRequest{
		json: esRequestJSON{
			Query: termQuery("work_id", id),
			Size:  &one,
		},
		meta: esRequestMeta{client: s.client},
	}

	if err := s.esSearch(); err != nil {
		return searchResponse{status: s.svcStatus, err: err}
	}

	if len(s.esRes.Hits.Hits) == 0 {
		err := fmt.Errorf("work not found: %s", id)
		return searchResponse{status: http.StatusNotFound, err: err}
	}

	hit := s.esRes.Hits.Hits[0]

	return searchResponse{status: http.StatusOK, data: WorkResult{
		ID:    hit.ID,
		Score: hit.Score,
		Work:  hit.Source,
	}}
}

// bulk indexing batch size
const indexBatchSize = 500

func (s *searchContext) handleIndexRequest() searchResponse {
	var req IndexRequest

	dec := json.NewDecoder(s.client.ginCtx.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return s.failure(http.StatusBadRequest, fmt.Errorf("invalid index request: %s", err.Error()))
	}

	if len(req.Works) == 0 {
		return s.failure(http.StatusBadRequest, fmt.Errorf("no works to index"))
	}

	res := &IndexResponse{Indexed: []int64{}}

	for _, batch := range chunkWorks(req.Works, indexBatchSize) {
		indexed, failures := s.esBulkUpdate(batch)
		res.Indexed = append(res.Indexed, indexed...)
		res.Failures = append(res.Failures, failures...)
	}

	s.log("[ES] indexed %d work(s), %d failure(s)", len(res.Indexed), len(res.Failures))

	return searchResponse{status: http.StatusOK, data: res}
}

func (s *searchContext) handlePingRequest() searchResponse {
	if err := s.esPing(); err != nil {
		return searchResponse{status: s.svcStatus, err: err}
	}

	return searchResponse{status: http.StatusOK}
}
