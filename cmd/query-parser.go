package main

import (
	"regexp"
	"strconv"
	"strings"
)

// queryParser mines structure out of human query phrasing: genre names,
// fiction/nonfiction, audiences, and grade or age levels. each recognized
// piece yields both a filter clause and a match query; whatever is left
// over becomes a simple query string over the main text fields.
//
// precedence is genre, then fiction/nonfiction, then audience, then target
// age, so "young adult science fiction" credits the genre before the
// audience gets a chance to claim "adult".

// fields searched by the leftover simple query string, with boosts
var simpleQueryStringFields = []string{
	"author^4",
	"subtitle^3",
	"summary^5",
	"title^1",
	"series^1",
}

var (
	gradeRE   = regexp.MustCompile(`(?i)\bgrades?\s+([k0-9]+)(?:\s*(?:to|-|and)\s*([0-9]+))?`)
	ageRE     = regexp.MustCompile(`(?i)\bages?\s+([0-9]+)(?:\s*(?:to|-|and)\s*(up|[0-9]+))?`)
	yearOldRE = regexp.MustCompile(`(?i)\b([0-9]+)[\s-]year[\s-]old`)
)

// when a query says "and up", assume a four year span
const openEndedAgeSpan = 4

type queryParser struct {
	originalQuery string
	matchQueries  []esQuery
	filters       []esQuery
	finalQuery    string
}

func parseQuery(queryString string) *queryParser {
	p := &queryParser{
		originalQuery: queryString,
		finalQuery:    queryString,
	}

	p.parseGenres()
	p.parseFiction()
	p.parseAudience()
	p.parseTargetAge()

	if remainder := strings.TrimSpace(p.finalQuery); remainder != "" {
		p.matchQueries = append(p.matchQueries, simpleQueryStringQuery(p.finalQuery, simpleQueryStringFields))
	}

	return p
}

func (p *queryParser) addMatchTerm(field string, filterValue interface{}, matchValue interface{}) {
	p.filters = append(p.filters, termQuery(field, filterValue))
	p.matchQueries = append(p.matchQueries, matchQuery(field, matchValue))
}

func (p *queryParser) parseGenres() {
	for _, name := range genreNamesByLength() {
		if !containsFold(p.finalQuery, name) {
			continue
		}

		p.addMatchTerm("genres.name", name, name)
		p.finalQuery = withoutMatch(p.finalQuery, name)
	}
}

func (p *queryParser) parseFiction() {
	// "nonfiction" first, since "fiction" is a substring of it
	for _, label := range []string{nonfictionLabel, fictionLabel} {
		if !containsFold(p.finalQuery, label) {
			continue
		}

		p.addMatchTerm("fiction", scrubValue(label), label)
		p.finalQuery = withoutMatch(p.finalQuery, label)
		return
	}
}

func (p *queryParser) parseAudience() {
	for _, entry := range audiencePhrases {
		if !containsFold(p.finalQuery, entry.phrase) {
			continue
		}

		p.addMatchTerm("audience", scrubValue(entry.audience), entry.audience)
		p.finalQuery = withoutMatch(p.finalQuery, entry.phrase)
		return
	}
}

func (p *queryParser) parseTargetAge() {
	if r, matched, ok := p.gradeLevel(); ok {
		p.addTargetAge(r, matched)
		return
	}

	if r, matched, ok := p.ageLevel(); ok {
		p.addTargetAge(r, matched)
	}
}

func (p *queryParser) addTargetAge(r ageRange, matched string) {
	query := makeTargetAgeQuery(r, targetAgeParserBoost)
	p.filters = append(p.filters, query)
	p.matchQueries = append(p.matchQueries, query)
	p.finalQuery = strings.Replace(p.finalQuery, matched, "", 1)
}

func (p *queryParser) gradeLevel() (ageRange, string, bool) {
	m := gradeRE.FindStringSubmatch(p.finalQuery)
	if m == nil {
		return ageRange{}, "", false
	}

	lower, ok := gradeToAge(m[1])
	if !ok {
		return ageRange{}, "", false
	}

	upper := lower
	if m[2] != "" {
		if to, ok := gradeToAge(m[2]); ok {
			upper = to
		}
	}

	return ageRange{lower: intp(lower), upper: intp(upper)}, m[0], true
}

func (p *queryParser) ageLevel() (ageRange, string, bool) {
	m := ageRE.FindStringSubmatch(p.finalQuery)

	if m == nil {
		if ym := yearOldRE.FindStringSubmatch(p.finalQuery); ym != nil {
			age, err := strconv.Atoi(ym[1])
			if err != nil {
				return ageRange{}, "", false
			}
			return ageRangeFromInt(age), ym[0], true
		}

		return ageRange{}, "", false
	}

	lower, err := strconv.Atoi(m[1])
	if err != nil {
		return ageRange{}, "", false
	}

	upper := lower

	switch {
	case strings.EqualFold(m[2], "up"):
		upper = lower + openEndedAgeSpan
	case m[2] != "":
		if to, err := strconv.Atoi(m[2]); err == nil {
			upper = to
		}
	}

	return ageRange{lower: intp(lower), upper: intp(upper)}, m[0], true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// withoutMatch removes the first occurrence of match from s, extending
// through the rest of the word it landed in: removing "children" from
// "children's books" leaves " books", and removing "adult" from "adulting"
// leaves nothing behind.
func withoutMatch(s, match string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(match) + `[\w']*`)

	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}

	return s[:loc[0]] + s[loc[1]:]
}
