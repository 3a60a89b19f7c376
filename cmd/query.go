package main

import (
	"strings"
)

// searchQuery turns a raw query string into the engine's query DSL. the
// string is matched against the index many different ways, each way a
// weighted hypothesis about what the user meant, and the final query is a
// dis_max across all of them so the best interpretation wins.

// base weights per field. the keyword, phrase, fuzzy and stemmed variants
// of a field scale off these.
var fieldWeights = map[string]float64{
	"title":     140,
	"subtitle":  100,
	"series":    120,
	"author":    120,
	"summary":   80,
	"publisher": 40,
	"imprint":   40,
}

// fields iterated for one-field hypotheses, in a fixed order so the built
// query is deterministic
var hypothesisFields = []string{"title", "subtitle", "series", "publisher", "imprint"}

// fields with a with_stopwords index variant
var stopwordFields = map[string]bool{
	"title":    true,
	"subtitle": true,
	"series":   true,
}

// fields whose bare form is stemmed at index time
var stemmableFields = map[string]bool{
	"title":    true,
	"subtitle": true,
	"series":   true,
}

const (
	// multiplier for an exact keyword match
	exactMatchWeight = 1000

	// a phrase match on the with_stopwords variant beats the baseline
	// phrase match, but only just
	slightlyAboveBaseline = 1.1

	// a stemmed match is weaker evidence than an unstemmed one
	stemmedMatchWeight = 0.75

	// fuzzy coefficient when the query looks clean
	reducedFuzzyWeight = 0.5

	// boost on hypotheses derived from parsed query structure
	parsedQueryBoost = 1.1

	// boost on a target age range recognized by the parser
	targetAgeParserBoost = 40
)

type hypothesis struct {
	query   esQuery
	weight  float64
	filters []esQuery
	allMust bool
}

type searchQuery struct {
	queryString       string
	filter            *searchFilter
	words             []string
	containsStopwords bool
	fuzzyCoefficient  float64
}

// newSearchQuery analyzes the query string against lex to fix the fuzzy
// coefficient up front. fuzzyEnabled false turns fuzzy hypotheses off
// entirely.
func newSearchQuery(queryString string, filter *searchFilter, lex lexicon, fuzzyEnabled bool) *searchQuery {
	q := &searchQuery{
		queryString: queryString,
		filter:      filter,
		words:       strings.Fields(strings.ToLower(queryString)),
	}

	allKnown := true
	for _, word := range q.words {
		if stopwords[word] {
			q.containsStopwords = true
		}

		if lex == nil || !lex.Known(word) {
			allKnown = false
		}
	}

	switch {
	case !fuzzyEnabled:
		q.fuzzyCoefficient = 0
	case q.containsStopwords || !allKnown:
		// a typo is more likely, so trust fuzzy matches at full weight
		q.fuzzyCoefficient = 1
	default:
		q.fuzzyCoefficient = reducedFuzzyWeight
	}

	return q
}

// elasticsearchQuery builds the full query-context clause.
func (q *searchQuery) elasticsearchQuery() esQuery {
	if strings.TrimSpace(q.queryString) == "" {
		return matchAllQuery()
	}

	var hypotheses []hypothesis

	for _, field := range hypothesisFields {
		hypotheses = append(hypotheses, q.oneFieldHypotheses(field, q.queryString, fieldWeights[field])...)
	}

	hypotheses = append(hypotheses, q.authorHypotheses()...)
	hypotheses = append(hypotheses, q.topicHypotheses()...)

	for _, other := range []string{"subtitle", "series", "author"} {
		hypotheses = append(hypotheses, q.titleMultiMatchFor(other)...)
	}

	hypotheses = append(hypotheses, q.parsedQueryHypotheses()...)

	return combineHypotheses(hypotheses)
}

func combineHypotheses(hypotheses []hypothesis) esQuery {
	if len(hypotheses) == 0 {
		return matchAllQuery()
	}

	queries := make([]esQuery, 0, len(hypotheses))
	for _, h := range hypotheses {
		queries = append(queries, boostQuery(h.weight, []esQuery{h.query}, h.filters, h.allMust))
	}

	return disMaxQuery(queries)
}

// oneFieldHypotheses generates every way queryString could match a single
// field: exact keyword, phrase, fuzzy, stopword-preserving phrase, and
// stemmed.
func (q *searchQuery) oneFieldHypotheses(field, queryString string, baseWeight float64) []hypothesis {
	var hypotheses []hypothesis

	hypotheses = append(hypotheses, hypothesis{
		query:  termQuery(field+".keyword", queryString),
		weight: baseWeight * exactMatchWeight,
	})

	hypotheses = append(hypotheses, hypothesis{
		query:  matchPhraseQuery(field+".minimal", queryString),
		weight: baseWeight,
	})

	if q.fuzzyCoefficient > 0 {
		hypotheses = append(hypotheses, hypothesis{
			query: matchQueryOpts(field+".minimal", map[string]interface{}{
				"query":                queryString,
				"fuzziness":            "AUTO",
				"minimum_should_match": 2,
			}),
			weight: baseWeight * q.fuzzyCoefficient,
		})
	}

	if stopwordFields[field] && q.containsStopwords {
		hypotheses = append(hypotheses, hypothesis{
			query:  matchPhraseQuery(field+".with_stopwords", queryString),
			weight: baseWeight * slightlyAboveBaseline,
		})
	}

	if stemmableFields[field] {
		hypotheses = append(hypotheses, hypothesis{
			query: matchQueryOpts(field, map[string]interface{}{
				"query":                queryString,
				"minimum_should_match": 2,
			}),
			weight: baseWeight * stemmedMatchWeight,
		})
	}

	return hypotheses
}

// authorHypotheses matches the query against contributor names. a query
// with no comma is also tried converted to "family, given" form against
// the sort name; a query that already looks like a sort name is tried
// as-is against both fields.
func (q *searchQuery) authorHypotheses() []hypothesis {
	query := strings.TrimSpace(q.queryString)
	if query == "" {
		return nil
	}

	var hypotheses []hypothesis

	hypotheses = append(hypotheses, q.authorFieldHypotheses("display_name", query)...)

	sortName := query
	if !strings.Contains(query, ",") {
		sortName = displayNameToSortName(query)
	}

	hypotheses = append(hypotheses, q.authorFieldHypotheses("sort_name", sortName)...)

	return hypotheses
}

// authorFieldHypotheses wraps each contributor-field hypothesis so the
// same contributor must also hold an authorship role, then nests it on
// the contributors path.
func (q *searchQuery) authorFieldHypotheses(field, queryString string) []hypothesis {
	base := q.oneFieldHypotheses("contributors."+field, queryString, fieldWeights["author"])

	wrapped := make([]hypothesis, 0, len(base))
	for _, h := range base {
		withRole := boolQuery(boolArgs{must: []esQuery{
			h.query,
			termsQuery("contributors.role", authorMatchRoles),
		}})

		h.query = nestedQuery("contributors", withRole)
		wrapped = append(wrapped, h)
	}

	return wrapped
}

// topicHypotheses covers queries that describe what a book is about
// rather than naming it.
func (q *searchQuery) topicHypotheses() []hypothesis {
	return []hypothesis{{
		query: multiMatchQuery(q.queryString, []string{"summary", "classifications.term"},
			map[string]interface{}{"type": "best_fields"}),
		weight: fieldWeights["summary"],
	}}
}

// titleMultiMatchFor covers multi-word queries that combine a title with
// something else, like "betsy-tacy battle kessler" or "dark tower king".
func (q *searchQuery) titleMultiMatchFor(other string) []hypothesis {
	if len(q.words) < 2 {
		return nil
	}

	titleWeight := fieldWeights["title"]
	otherWeight := fieldWeights[other]

	return []hypothesis{{
		query: multiMatchQuery(q.queryString, []string{"title.minimal", other + ".minimal"},
			map[string]interface{}{
				"type":                 "cross_fields",
				"operator":             "and",
				"minimum_should_match": "100%",
			}),
		weight: otherWeight * (otherWeight / titleWeight),
	}}
}

// parsedQueryHypotheses folds in whatever structure the query parser
// recognized. the substring matches are only valid alongside the parsed
// filters, so the filters ride in the same clause's filter context.
func (q *searchQuery) parsedQueryHypotheses() []hypothesis {
	parser := parseQuery(q.queryString)

	if len(parser.matchQueries) == 0 {
		return nil
	}

	return []hypothesis{{
		query:   boostQuery(1, parser.matchQueries, nil, false),
		weight:  parsedQueryBoost,
		filters: parser.filters,
	}}
}

// makeTargetAgeQuery scores works by overlap with the target range:
// covering the whole range is required, staying within it is rewarded.
func makeTargetAgeQuery(r ageRange, boost float64) esQuery {
	if r.empty() {
		return nil
	}

	var must, should []esQuery

	if r.lower != nil {
		must = append(must, rangeQuery("target_age.upper", map[string]interface{}{"gte": *r.lower}))
		should = append(should, rangeQuery("target_age.lower", map[string]interface{}{"gte": *r.lower}))
	}

	if r.upper != nil {
		must = append(must, rangeQuery("target_age.lower", map[string]interface{}{"lte": *r.upper}))
		should = append(should, rangeQuery("target_age.upper", map[string]interface{}{"lte": *r.upper}))
	}

	return boolQuery(boolArgs{
		must:   must,
		should: should,
		boost:  boost,
	})
}

// displayNameToSortName guesses "family, given" from a display name,
// keeping surname particles with the family name.
func displayNameToSortName(displayName string) string {
	words := strings.Fields(displayName)
	if len(words) < 2 {
		return displayName
	}

	particles := map[string]bool{
		"da": true, "de": true, "del": true, "della": true, "der": true,
		"di": true, "du": true, "la": true, "le": true, "van": true,
		"von": true, "ter": true, "ten": true,
	}

	split := len(words) - 1
	for split > 1 && particles[strings.ToLower(words[split-1])] {
		split--
	}

	family := strings.Join(words[split:], " ")
	given := strings.Join(words[:split], " ")

	return family + ", " + given
}
