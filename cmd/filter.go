package main

import (
	"sort"
	"strings"
	"time"
)

// searchFilter carries every restriction the platform can place on a search:
// which collections a library draws from, its lane configuration (media,
// languages, audiences, target age, genres, customlists), author and
// identifier restrictions, and hold/audiobook licensing policy. build()
// compiles it into the engine's filter clauses.

type ageRange struct {
	lower *int
	upper *int
}

func intp(n int) *int {
	return &n
}

func ageRangeFromInt(age int) ageRange {
	return ageRange{lower: intp(age), upper: intp(age)}
}

func ageRangeFromBounds(lower, upper *int) ageRange {
	return ageRange{lower: lower, upper: upper}
}

// ageRangeFromEndpoints converts a possibly exclusive-bound range to the
// inclusive form used everywhere else.
func ageRangeFromEndpoints(lower, upper int, lowerInclusive, upperInclusive bool) ageRange {
	if !lowerInclusive {
		lower++
	}

	if !upperInclusive {
		upper--
	}

	return ageRange{lower: intp(lower), upper: intp(upper)}
}

func (r ageRange) empty() bool {
	return r.lower == nil && r.upper == nil
}

// contributorQuery identifies an author by any combination of name forms
// and authority identifiers.
type contributorQuery struct {
	sortName    string
	displayName string
	viaf        string
	lc          string
}

type workIdentifier struct {
	identifierType string
	identifier     string
}

type searchFilter struct {
	// force an empty result set regardless of any other setting
	matchNothing bool

	media     []string
	languages []string
	fiction   *bool
	audiences []string
	series    string
	targetAge ageRange

	// nil means no restriction; an empty, non-nil list matches nothing
	collectionIDs        []int64
	licenseDataSourceIDs []int64

	// each set restricts independently; a work must match every set
	genreRestrictionSets      [][]int64
	customlistRestrictionSets [][]int64

	author      *contributorQuery
	identifiers []workIdentifier

	updatedAfter *time.Time

	excludedAudiobookDataSourceIDs []int64
	allowHolds                     bool

	// facet-driven state, set by a searchFacets implementation
	availability           string
	subcollection          string
	minimumFeaturedQuality float64

	scriptFields     map[string]interface{}
	scoringFunctions []esQuery

	order          string
	orderAscending bool

	// overridable hooks for the clauses applied to every search
	baseFilterHook   func() []esQuery
	nestedFilterHook func() map[string][]esQuery
}

func newSearchFilter() *searchFilter {
	return &searchFilter{
		allowHolds:     true,
		orderAscending: true,
	}
}

// applyFacets lets a facets object rewrite the filter and contribute
// scoring functions. both effects are captured here, at construction time.
func (f *searchFilter) applyFacets(facets searchFacets) {
	if facets == nil {
		return
	}

	facets.modifySearchFilter(f)
	f.scoringFunctions = facets.scoringFunctions(f)
}

// scrubValue normalizes a display value the way the indexer does: lowercase
// with spaces removed, so "Young Adult" matches the indexed "youngadult".
func scrubValue(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "")
}

func scrubList(values []string) []string {
	if values == nil {
		return nil
	}

	scrubbed := make([]string, 0, len(values))
	for _, value := range values {
		scrubbed = append(scrubbed, scrubValue(value))
	}

	return scrubbed
}

// filterChain reduces a sequence of filter clauses into one. swapping the
// reducer lets callers observe or reorder the combination.
type filterChain func(existing esQuery, clause esQuery) esQuery

func chainFilters(existing esQuery, clause esQuery) esQuery {
	if existing == nil {
		return clause
	}

	return boolQuery(boolArgs{must: []esQuery{existing, clause}})
}

// universalBase returns the clauses applied to every search regardless of
// filter settings.
func (f *searchFilter) universalBase() []esQuery {
	if f.baseFilterHook != nil {
		return f.baseFilterHook()
	}

	return []esQuery{
		termQuery("presentation_ready", true),
	}
}

// universalNested returns the nested clauses applied to every search: no
// suppressed license pools, and every pool either licensed or open access.
func (f *searchFilter) universalNested() map[string][]esQuery {
	if f.nestedFilterHook != nil {
		return f.nestedFilterHook()
	}

	return map[string][]esQuery{
		"licensepools": {
			termQuery("licensepools.suppressed", false),
			boolQuery(boolArgs{should: []esQuery{
				termQuery("licensepools.licensed", true),
				termQuery("licensepools.open_access", true),
			}}),
		},
	}
}

// build compiles the filter into a main clause (nil when unrestricted) and
// per-path nested clauses. the nested clauses must be applied inside nested
// queries on their paths; build keeps them separate so the caller can merge
// them with the universal nested filters.
func (f *searchFilter) build(chain filterChain) (esQuery, map[string][]esQuery) {
	if chain == nil {
		chain = chainFilters
	}

	// match-nothing overrides everything else the filter says
	if f.matchNothing {
		return matchNoneQuery(), nil
	}

	var main esQuery
	nested := make(map[string][]esQuery)

	addNested := func(path string, clause esQuery) {
		nested[path] = append(nested[path], clause)
	}

	if len(f.media) > 0 {
		main = chain(main, termsQuery("medium", scrubList(f.media)))
	}

	if len(f.languages) > 0 {
		main = chain(main, termsQuery("language", scrubList(f.languages)))
	}

	if f.fiction != nil {
		value := scrubValue(nonfictionLabel)
		if *f.fiction {
			value = scrubValue(fictionLabel)
		}
		main = chain(main, termQuery("fiction", value))
	}

	if len(f.audiences) > 0 {
		main = chain(main, termsQuery("audience", scrubList(f.audiences)))
	}

	if f.series != "" {
		main = chain(main, termQuery("series.keyword", f.series))
	}

	if ageClause := targetAgeFilter(f.targetAge); ageClause != nil {
		main = chain(main, ageClause)
	}

	if f.updatedAfter != nil {
		since := float64(f.updatedAfter.UTC().Unix())
		main = chain(main, boolQuery(boolArgs{must: []esQuery{
			rangeQuery("last_update_time", map[string]interface{}{"gte": since}),
		}}))
	}

	if f.subcollection == subcollectionFeatured {
		main = chain(main, boolQuery(boolArgs{must: []esQuery{
			rangeQuery("quality", map[string]interface{}{"gte": f.minimumFeaturedQuality}),
		}}))
	}

	if f.collectionIDs != nil {
		addNested("licensepools", termsQuery("licensepools.collection_id", f.collectionIDs))
	}

	if len(f.licenseDataSourceIDs) > 0 {
		addNested("licensepools", termsQuery("licensepools.data_source_id", f.licenseDataSourceIDs))
	}

	if len(f.excludedAudiobookDataSourceIDs) > 0 {
		excluded := boolQuery(boolArgs{must: []esQuery{
			termQuery("licensepools.medium", mediumAudio),
			termsQuery("licensepools.data_source_id", f.excludedAudiobookDataSourceIDs),
		}})
		addNested("licensepools", boolQuery(boolArgs{mustNot: []esQuery{excluded}}))
	}

	if !f.allowHolds {
		addNested("licensepools", boolQuery(boolArgs{should: []esQuery{
			termQuery("licensepools.available", true),
			termQuery("licensepools.open_access", true),
		}}))
	}

	switch f.availability {
	case availabilityNow:
		addNested("licensepools", boolQuery(boolArgs{
			should: []esQuery{
				termQuery("licensepools.available", true),
				termQuery("licensepools.open_access", true),
			},
			minimumShouldMatch: 1,
		}))
	case availabilityOpenAccess:
		addNested("licensepools", termQuery("licensepools.open_access", true))
	}

	if f.subcollection == subcollectionMain {
		addNested("licensepools", boolQuery(boolArgs{should: []esQuery{
			termQuery("licensepools.open_access", false),
			rangeQuery("licensepools.quality", map[string]interface{}{"gte": 0.3}),
		}}))
	}

	for _, listIDs := range f.customlistRestrictionSets {
		addNested("customlists", termsQuery("customlists.list_id", listIDs))
	}

	for _, genreIDs := range f.genreRestrictionSets {
		addNested("genres", termsQuery("genres.term", genreIDs))
	}

	if f.author != nil {
		addNested("contributors", authorFilter(f.author))
	}

	if len(f.identifiers) > 0 {
		var matches []esQuery
		for _, ident := range f.identifiers {
			matches = append(matches, boolQuery(boolArgs{must: []esQuery{
				termQuery("identifiers.identifier", ident.identifier),
				termQuery("identifiers.type", ident.identifierType),
			}}))
		}
		addNested("identifiers", boolQuery(boolArgs{
			should:             matches,
			minimumShouldMatch: 1,
		}))
	}

	if len(nested) == 0 {
		nested = nil
	}

	return main, nested
}

// authorFilter matches works where a single contributor both has an
// authorship role and matches the given name forms or identifiers. name
// fields carrying the unknown-author sentinel are skipped; a descriptor
// with nothing left yields a clause that matches no one.
func authorFilter(author *contributorQuery) esQuery {
	var matches []esQuery

	if author.sortName != "" && author.sortName != unknownAuthor {
		matches = append(matches, termQuery("contributors.sort_name.keyword", author.sortName))
	}

	if author.displayName != "" && author.displayName != unknownAuthor {
		matches = append(matches, termQuery("contributors.display_name.keyword", author.displayName))
	}

	if author.viaf != "" {
		matches = append(matches, termQuery("contributors.viaf", author.viaf))
	}

	if author.lc != "" {
		matches = append(matches, termQuery("contributors.lc", author.lc))
	}

	if matches == nil {
		matches = []esQuery{}
	}

	// an all-sentinel descriptor leaves should empty, which matches no one
	nameMatch := esQuery{"bool": map[string]interface{}{
		"should":               matches,
		"minimum_should_match": 1,
	}}

	return boolQuery(boolArgs{must: []esQuery{
		termsQuery("contributors.role", authorMatchRoles),
		nameMatch,
	}})
}

// targetAgeFilter matches works whose age range overlaps the given range.
// each bound becomes a dichotomy: either the field satisfies the bound or
// the field is missing entirely.
func targetAgeFilter(r ageRange) esQuery {
	if r.empty() {
		return nil
	}

	var clauses []esQuery

	if r.lower != nil {
		clauses = append(clauses, boolQuery(boolArgs{
			should: []esQuery{
				rangeQuery("target_age.upper", map[string]interface{}{"gte": *r.lower}),
				boolQuery(boolArgs{mustNot: []esQuery{existsQuery("target_age.upper")}}),
			},
			minimumShouldMatch: 1,
		}))
	}

	if r.upper != nil {
		clauses = append(clauses, boolQuery(boolArgs{
			should: []esQuery{
				rangeQuery("target_age.lower", map[string]interface{}{"lte": *r.upper}),
				boolQuery(boolArgs{mustNot: []esQuery{existsQuery("target_age.lower")}}),
			},
			minimumShouldMatch: 1,
		}))
	}

	if len(clauses) == 1 {
		return clauses[0]
	}

	return boolQuery(boolArgs{must: clauses})
}

// customlistIDs returns the union of all customlist restriction sets, for
// use as stored-script params.
func (f *searchFilter) customlistIDs() []int64 {
	var ids []int64
	seen := make(map[int64]bool)

	for _, set := range f.customlistRestrictionSets {
		for _, id := range set {
			if !seen[id] {
				ids = append(ids, id)
				seen[id] = true
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
