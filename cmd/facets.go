package main

import "fmt"

// facets objects adjust a filter before compilation and contribute scoring
// functions. the filter captures both effects at construction time, so by
// the time build() runs the facets object is out of the picture.

const (
	availabilityAll        = "all"
	availabilityNow        = "now"
	availabilityOpenAccess = "always"

	subcollectionFull     = "full"
	subcollectionMain     = "main"
	subcollectionFeatured = "featured"
)

type searchFacets interface {
	modifySearchFilter(f *searchFilter)
	scoringFunctions(f *searchFilter) []esQuery
}

// defaultFacets applies the availability and collection facets a patron
// picked in the catalog interface.
type defaultFacets struct {
	availability           string
	subcollection          string
	minimumFeaturedQuality float64
}

func (d *defaultFacets) modifySearchFilter(f *searchFilter) {
	f.availability = d.availability
	f.subcollection = d.subcollection

	if d.subcollection == subcollectionFeatured {
		f.minimumFeaturedQuality = d.minimumFeaturedQuality
	}
}

func (d *defaultFacets) scoringFunctions(f *searchFilter) []esQuery {
	return nil
}

// script scoring a work's featurability: quality counts up to a cutoff,
// beyond which all works are equally featurable
const featurableScriptTemplate = "Math.pow(Math.min(%.5f, doc['quality'].value), %.5f) * 5"

const featurableScriptExponent = 2

// weights for the featured scoring functions
const (
	availableNowBoost       = 5
	randomScoreBoost        = 1.1
	customlistFeaturedBoost = 11
)

// featuredFacets select and order works for display in a lane: quality
// counts up to a point, availability counts a lot, and a random factor
// keeps the same books from headlining every lane.
type featuredFacets struct {
	minimumFeaturedQuality float64
	randomSeed             interface{}

	// suppress the random factor, for stable ordering in tests
	deterministic bool
}

func (d *featuredFacets) modifySearchFilter(f *searchFilter) {
	f.minimumFeaturedQuality = d.minimumFeaturedQuality
}

func (d *featuredFacets) scoringFunctions(f *searchFilter) []esQuery {
	cutoff := d.minimumFeaturedQuality * d.minimumFeaturedQuality
	featurable := fmt.Sprintf(featurableScriptTemplate, cutoff, float64(featurableScriptExponent))

	functions := []esQuery{
		scriptScoreFunction(featurable),
		filterScoreFunction(
			nestedQuery("licensepools", termQuery("licensepools.available", true)),
			availableNowBoost,
		),
	}

	if !d.deterministic {
		functions = append(functions, randomScoreFunction(d.randomSeed, randomScoreBoost))
	}

	if listIDs := f.customlistIDs(); len(listIDs) > 0 {
		onFeaturedList := nestedQuery("customlists", boolQuery(boolArgs{must: []esQuery{
			termQuery("customlists.featured", true),
			termsQuery("customlists.list_id", listIDs),
		}}))
		functions = append(functions, filterScoreFunction(onFeaturedList, customlistFeaturedBoost))
	}

	return functions
}
