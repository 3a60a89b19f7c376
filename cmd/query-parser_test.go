package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenreAndFiction(t *testing.T) {
	p := parseQuery("science fiction or nonfiction dinosaur")

	require.Len(t, p.filters, 2)
	assert.Equal(t, termQuery("genres.name", "Science Fiction"), p.filters[0])
	assert.Equal(t, termQuery("fiction", "nonfiction"), p.filters[1])

	// the leftover text still gets searched
	require.Len(t, p.matchQueries, 3)
	assert.Equal(t, matchQuery("genres.name", "Science Fiction"), p.matchQueries[0])
	assert.Equal(t, matchQuery("fiction", "Nonfiction"), p.matchQueries[1])
	assert.Contains(t, p.matchQueries[2], "simple_query_string")
	assert.Contains(t, strings.TrimSpace(p.finalQuery), "dinosaur")
}

func TestParseLongerGenreWinsOverShorter(t *testing.T) {
	// "science fiction" must be claimed before "science" or "fiction"
	p := parseQuery("science fiction")

	require.Len(t, p.filters, 1)
	assert.Equal(t, termQuery("genres.name", "Science Fiction"), p.filters[0])
	assert.Equal(t, "", strings.TrimSpace(p.finalQuery))
}

func TestParseAudiencePossessive(t *testing.T) {
	p := parseQuery("children's books")

	require.Len(t, p.filters, 1)
	assert.Equal(t, termQuery("audience", "children"), p.filters[0])
	assert.Equal(t, "books", strings.TrimSpace(p.finalQuery))
}

func TestParseYoungAdultBeforeAdult(t *testing.T) {
	p := parseQuery("young adult romance")

	require.Len(t, p.filters, 2)
	assert.Equal(t, termQuery("genres.name", "Romance"), p.filters[0])
	assert.Equal(t, termQuery("audience", "youngadult"), p.filters[1])
}

func TestParseGradeLevel(t *testing.T) {
	p := parseQuery("grade 5 science")

	require.Len(t, p.filters, 2)
	assert.Equal(t, termQuery("genres.name", "Science"), p.filters[0])

	age := p.filters[1]["bool"].(map[string]interface{})
	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 10}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 10}),
	}, age["must"])
	assert.Equal(t, float64(targetAgeParserBoost), age["boost"])

	// nothing left over, so no text search
	require.Len(t, p.matchQueries, 2)
	assert.Equal(t, "", strings.TrimSpace(p.finalQuery))
}

func TestParseGradeRange(t *testing.T) {
	p := parseQuery("grades k to 2")

	require.Len(t, p.filters, 1)

	age := p.filters[0]["bool"].(map[string]interface{})
	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 5}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 7}),
	}, age["must"])
}

func TestParseAgeRange(t *testing.T) {
	p := parseQuery("ages 8 to 10")

	require.Len(t, p.filters, 1)

	age := p.filters[0]["bool"].(map[string]interface{})
	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 8}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 10}),
	}, age["must"])
}

func TestParseAgeAndUp(t *testing.T) {
	p := parseQuery("ages 10 and up")

	require.Len(t, p.filters, 1)

	age := p.filters[0]["bool"].(map[string]interface{})
	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 10}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 14}),
	}, age["must"])
}

func TestParseYearOld(t *testing.T) {
	p := parseQuery("books for a 7-year-old")

	require.Len(t, p.filters, 1)

	age := p.filters[0]["bool"].(map[string]interface{})
	assert.Equal(t, []esQuery{
		rangeQuery("target_age.upper", map[string]interface{}{"gte": 7}),
		rangeQuery("target_age.lower", map[string]interface{}{"lte": 7}),
	}, age["must"])
}

func TestParsePlainQueryYieldsOnlyTextSearch(t *testing.T) {
	p := parseQuery("winter garden")

	assert.Empty(t, p.filters)
	require.Len(t, p.matchQueries, 1)
	assert.Equal(t, simpleQueryStringQuery("winter garden", simpleQueryStringFields), p.matchQueries[0])
}

func TestParseEmptyQuery(t *testing.T) {
	p := parseQuery("")

	assert.Empty(t, p.filters)
	assert.Empty(t, p.matchQueries)
}

func TestWithoutMatch(t *testing.T) {
	assert.Equal(t, " books", withoutMatch("children's books", "children"))
	assert.Equal(t, "", withoutMatch("adulting", "adult"))
	assert.Equal(t, " mysteries", withoutMatch("Science Fiction mysteries", "science fiction"))
	assert.Equal(t, "untouched", withoutMatch("untouched", "romance"))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("Science Fiction", "science fiction"))
	assert.False(t, containsFold("science", "science fiction"))
}

func TestGradeToAge(t *testing.T) {
	tests := []struct {
		grade string
		age   int
		ok    bool
	}{
		{"k", 5, true},
		{"K", 5, true},
		{"kindergarten", 5, true},
		{"1", 6, true},
		{"12", 17, true},
		{"13", 0, false},
		{"", 0, false},
		{"x", 0, false},
	}

	for _, test := range tests {
		age, ok := gradeToAge(test.grade)
		assert.Equal(t, test.ok, ok, "grade %q", test.grade)
		assert.Equal(t, test.age, age, "grade %q", test.grade)
	}
}

func TestGenreNamesByLengthOrdering(t *testing.T) {
	names := genreNamesByLength()

	for i := 1; i < len(names); i++ {
		assert.GreaterOrEqual(t, len(names[i-1]), len(names[i]))
	}
}
