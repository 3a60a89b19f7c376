package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSearchQuery(queryString string) *searchQuery {
	return newSearchQuery(queryString, newSearchFilter(), newBaseLexicon(), true)
}

func hypothesisWeights(hypotheses []hypothesis) []float64 {
	weights := make([]float64, 0, len(hypotheses))
	for _, h := range hypotheses {
		weights = append(weights, h.weight)
	}
	return weights
}

func TestFuzzyCoefficientCleanQuery(t *testing.T) {
	q := testSearchQuery("dinosaur history")

	assert.False(t, q.containsStopwords)
	assert.Equal(t, reducedFuzzyWeight, q.fuzzyCoefficient)
}

func TestFuzzyCoefficientStopwords(t *testing.T) {
	q := testSearchQuery("history of the castle")

	assert.True(t, q.containsStopwords)
	assert.Equal(t, float64(1), q.fuzzyCoefficient)
}

func TestFuzzyCoefficientUnknownWord(t *testing.T) {
	q := testSearchQuery("dinosar history")

	assert.False(t, q.containsStopwords)
	assert.Equal(t, float64(1), q.fuzzyCoefficient)
}

func TestFuzzyCoefficientDisabled(t *testing.T) {
	q := newSearchQuery("dinosar history", newSearchFilter(), newBaseLexicon(), false)

	assert.Equal(t, float64(0), q.fuzzyCoefficient)
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	q := testSearchQuery("  ")

	assert.Equal(t, matchAllQuery(), q.elasticsearchQuery())
}

func TestOneFieldHypothesesCleanQuery(t *testing.T) {
	q := testSearchQuery("dinosaur castle")

	hypotheses := q.oneFieldHypotheses("title", q.queryString, fieldWeights["title"])
	require.Len(t, hypotheses, 4)

	// exact keyword match dominates everything else
	assert.Equal(t, termQuery("title.keyword", "dinosaur castle"), hypotheses[0].query)
	assert.Equal(t, float64(140000), hypotheses[0].weight)

	assert.Equal(t, matchPhraseQuery("title.minimal", "dinosaur castle"), hypotheses[1].query)
	assert.Equal(t, float64(140), hypotheses[1].weight)

	assert.Equal(t, matchQueryOpts("title.minimal", map[string]interface{}{
		"query":                "dinosaur castle",
		"fuzziness":            "AUTO",
		"minimum_should_match": 2,
	}), hypotheses[2].query)
	assert.Equal(t, float64(70), hypotheses[2].weight)

	assert.Equal(t, matchQueryOpts("title", map[string]interface{}{
		"query":                "dinosaur castle",
		"minimum_should_match": 2,
	}), hypotheses[3].query)
	assert.Equal(t, float64(105), hypotheses[3].weight)
}

func TestOneFieldHypothesesStopwordVariant(t *testing.T) {
	q := testSearchQuery("the winter garden")

	hypotheses := q.oneFieldHypotheses("title", q.queryString, fieldWeights["title"])
	require.Len(t, hypotheses, 5)

	// stopword phrase sits between fuzzy and stemmed, just above baseline
	assert.Equal(t, matchPhraseQuery("title.with_stopwords", "the winter garden"), hypotheses[3].query)
	assert.InDelta(t, 154, hypotheses[3].weight, 0.001)

	// stopwords also push fuzzy to full weight
	assert.Equal(t, float64(140), hypotheses[2].weight)
}

func TestOneFieldHypothesesNonStemmableField(t *testing.T) {
	q := testSearchQuery("dinosaur castle")

	hypotheses := q.oneFieldHypotheses("publisher", q.queryString, fieldWeights["publisher"])
	require.Len(t, hypotheses, 3)

	assert.Equal(t, []float64{40000, 40, 20}, hypothesisWeights(hypotheses))
}

func TestOneFieldHypothesesFuzzyDisabled(t *testing.T) {
	q := newSearchQuery("dinosaur castle", newSearchFilter(), newBaseLexicon(), false)

	hypotheses := q.oneFieldHypotheses("subtitle", q.queryString, fieldWeights["subtitle"])
	require.Len(t, hypotheses, 3)

	assert.Equal(t, []float64{100000, 100, 75}, hypothesisWeights(hypotheses))
}

func TestAuthorHypothesesConvertsDisplayName(t *testing.T) {
	q := testSearchQuery("ursula le guin")

	hypotheses := q.authorHypotheses()

	// display_name variants followed by sort_name variants
	require.NotEmpty(t, hypotheses)

	first := hypotheses[0].query
	nested := first["nested"].(map[string]interface{})
	assert.Equal(t, "contributors", nested["path"])

	inner := nested["query"].(esQuery)["bool"].(map[string]interface{})["must"].([]esQuery)
	require.Len(t, inner, 2)
	assert.Equal(t, termQuery("contributors.display_name.keyword", "ursula le guin"), inner[0])
	assert.Equal(t, termsQuery("contributors.role", authorMatchRoles), inner[1])

	// the sort_name half of the list sees "le guin, ursula"
	var sortNameKeyword esQuery
	for _, h := range hypotheses {
		n := h.query["nested"].(map[string]interface{})
		must := n["query"].(esQuery)["bool"].(map[string]interface{})["must"].([]esQuery)
		if term, ok := must[0]["term"].(map[string]interface{}); ok {
			if _, ok := term["contributors.sort_name.keyword"]; ok {
				sortNameKeyword = must[0]
			}
		}
	}
	require.NotNil(t, sortNameKeyword)
	assert.Equal(t, termQuery("contributors.sort_name.keyword", "le guin, ursula"), sortNameKeyword)
}

func TestAuthorHypothesesSortNameQueryUsedAsIs(t *testing.T) {
	q := testSearchQuery("le guin, ursula")

	hypotheses := q.authorHypotheses()

	for _, h := range hypotheses {
		n := h.query["nested"].(map[string]interface{})
		must := n["query"].(esQuery)["bool"].(map[string]interface{})["must"].([]esQuery)
		if term, ok := must[0]["term"].(map[string]interface{}); ok {
			if value, ok := term["contributors.sort_name.keyword"]; ok {
				assert.Equal(t, "le guin, ursula", value)
			}
		}
	}
}

func TestDisplayNameToSortName(t *testing.T) {
	assert.Equal(t, "le guin, ursula", displayNameToSortName("ursula le guin"))
	assert.Equal(t, "king, stephen", displayNameToSortName("stephen king"))
	assert.Equal(t, "van der berg, anna", displayNameToSortName("anna van der berg"))
	assert.Equal(t, "madonna", displayNameToSortName("madonna"))
}

func TestTopicHypotheses(t *testing.T) {
	q := testSearchQuery("dinosaur history")

	hypotheses := q.topicHypotheses()
	require.Len(t, hypotheses, 1)

	expected := multiMatchQuery("dinosaur history",
		[]string{"summary", "classifications.term"},
		map[string]interface{}{"type": "best_fields"})
	assert.Equal(t, expected, hypotheses[0].query)
	assert.Equal(t, float64(80), hypotheses[0].weight)
}

func TestTitleMultiMatchWeights(t *testing.T) {
	q := testSearchQuery("dark tower king")

	subtitle := q.titleMultiMatchFor("subtitle")
	require.Len(t, subtitle, 1)
	assert.InDelta(t, 100.0*100.0/140.0, subtitle[0].weight, 0.001)

	mm := subtitle[0].query["multi_match"].(map[string]interface{})
	assert.Equal(t, []string{"title.minimal", "subtitle.minimal"}, mm["fields"])
	assert.Equal(t, "cross_fields", mm["type"])
	assert.Equal(t, "and", mm["operator"])
	assert.Equal(t, "100%", mm["minimum_should_match"])

	author := q.titleMultiMatchFor("author")
	assert.InDelta(t, 120.0*120.0/140.0, author[0].weight, 0.001)
}

func TestTitleMultiMatchNeedsTwoWords(t *testing.T) {
	q := testSearchQuery("dinosaur")

	assert.Nil(t, q.titleMultiMatchFor("subtitle"))
}

func TestParsedQueryHypotheses(t *testing.T) {
	q := testSearchQuery("nonfiction dinosaur")

	hypotheses := q.parsedQueryHypotheses()
	require.Len(t, hypotheses, 1)

	h := hypotheses[0]
	assert.Equal(t, parsedQueryBoost, h.weight)

	// parsed filters ride in filter context next to the match queries
	require.Len(t, h.filters, 1)
	assert.Equal(t, termQuery("fiction", "nonfiction"), h.filters[0])
}

func TestParsedQueryHypothesesNoneRecognized(t *testing.T) {
	// no genre, fiction, audience or age structure in a plain title query
	q := testSearchQuery("winter garden")

	hypotheses := q.parsedQueryHypotheses()
	require.Len(t, hypotheses, 1)
	assert.Empty(t, hypotheses[0].filters)

	// a structure-free query yields exactly the leftover text search
	inner := hypotheses[0].query
	assert.Equal(t, simpleQueryStringQuery("winter garden", simpleQueryStringFields), inner)
}

func TestElasticsearchQueryIsDisMax(t *testing.T) {
	q := testSearchQuery("dinosaur history")

	built := q.elasticsearchQuery()
	require.Contains(t, built, "dis_max")

	queries := built["dis_max"].(map[string]interface{})["queries"].([]esQuery)
	assert.NotEmpty(t, queries)
}

func TestCombineHypothesesEmpty(t *testing.T) {
	assert.Equal(t, matchAllQuery(), combineHypotheses(nil))
}

func TestBoostQueryPassthrough(t *testing.T) {
	inner := termQuery("title.keyword", "dune")

	assert.Equal(t, inner, boostQuery(1, []esQuery{inner}, nil, false))
}

func TestBoostQueryWrapsWithFilters(t *testing.T) {
	inner := termQuery("title.keyword", "dune")
	filter := termQuery("fiction", "fiction")

	wrapped := boostQuery(1, []esQuery{inner}, []esQuery{filter}, false)

	expected := boolQuery(boolArgs{
		boost:  1,
		must:   []esQuery{inner},
		filter: []esQuery{filter},
	})
	assert.Equal(t, expected, wrapped)
}

func TestBoostQueryMultipleShould(t *testing.T) {
	a := termQuery("title.keyword", "dune")
	b := termQuery("series.keyword", "dune")

	wrapped := boostQuery(2, []esQuery{a, b}, nil, false)

	expected := boolQuery(boolArgs{
		boost:              2,
		should:             []esQuery{a, b},
		minimumShouldMatch: 1,
	})
	assert.Equal(t, expected, wrapped)
}

func TestMakeTargetAgeQuery(t *testing.T) {
	built := makeTargetAgeQuery(ageRangeFromBounds(intp(5), intp(10)), targetAgeParserBoost)

	clause := built["bool"].(map[string]interface{})
	assert.Equal(t, float64(targetAgeParserBoost), clause["boost"])

	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 5}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 10}),
	}, clause["must"])

	assert.Equal(t, []esQuery{
		rangeQuery("target_age.lower", map[string]interface{}{"gte": 5}),
		rangeQuery("target_age.upper", map[string]interface{}{"lte": 10}),
	}, clause["should"])
}

func TestMakeTargetAgeQueryEmpty(t *testing.T) {
	assert.Nil(t, makeTargetAgeQuery(ageRange{}, targetAgeParserBoost))
}
