package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFacetsAvailabilityNow(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&defaultFacets{availability: availabilityNow})

	_, nested := f.build(nil)

	require.Contains(t, nested, "licensepools")
	expected := boolQuery(boolArgs{
		should: []esQuery{
			termQuery("licensepools.available", true),
			termQuery("licensepools.open_access", true),
		},
		minimumShouldMatch: 1,
	})
	assert.Equal(t, []esQuery{expected}, nested["licensepools"])
	assert.Nil(t, f.scoringFunctions)
}

func TestDefaultFacetsAvailabilityOpenAccess(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&defaultFacets{availability: availabilityOpenAccess})

	_, nested := f.build(nil)

	assert.Equal(t, []esQuery{termQuery("licensepools.open_access", true)}, nested["licensepools"])
}

func TestDefaultFacetsSubcollectionMain(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&defaultFacets{availability: availabilityAll, subcollection: subcollectionMain})

	main, nested := f.build(nil)

	assert.Nil(t, main)
	expected := boolQuery(boolArgs{should: []esQuery{
		termQuery("licensepools.open_access", false),
		rangeQuery("licensepools.quality", map[string]interface{}{"gte": 0.3}),
	}})
	assert.Equal(t, []esQuery{expected}, nested["licensepools"])
}

func TestDefaultFacetsSubcollectionFeatured(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&defaultFacets{
		subcollection:          subcollectionFeatured,
		minimumFeaturedQuality: 0.65,
	})

	main, _ := f.build(nil)

	expected := boolQuery(boolArgs{must: []esQuery{
		rangeQuery("quality", map[string]interface{}{"gte": 0.65}),
	}})
	assert.Equal(t, expected, main)
}

func TestFeaturedFacetsScoringFunctions(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&featuredFacets{
		minimumFeaturedQuality: 0.65,
		deterministic:          true,
	})

	require.Len(t, f.scoringFunctions, 2)

	// the quality cutoff is the square of the minimum featured quality
	script := f.scoringFunctions[0]["script_score"].(map[string]interface{})
	source := script["script"].(map[string]interface{})["source"].(string)
	assert.Equal(t, "Math.pow(Math.min(0.42250, doc['quality'].value), 2.00000) * 5", source)

	available := f.scoringFunctions[1]
	assert.Equal(t, float64(availableNowBoost), available["weight"])
	assert.Equal(t,
		nestedQuery("licensepools", termQuery("licensepools.available", true)),
		available["filter"])
}

func TestFeaturedFacetsRandomFactor(t *testing.T) {
	f := newSearchFilter()
	f.applyFacets(&featuredFacets{
		minimumFeaturedQuality: 0.5,
		randomSeed:             "12345678",
	})

	require.Len(t, f.scoringFunctions, 3)

	random := f.scoringFunctions[2]
	assert.Equal(t, randomScoreBoost, random["weight"])
	assert.Equal(t, map[string]interface{}{
		"seed":  "12345678",
		"field": "work_id",
	}, random["random_score"])
}

func TestFeaturedFacetsCustomlistBoost(t *testing.T) {
	f := newSearchFilter()
	f.customlistRestrictionSets = [][]int64{{21}, {18}}
	f.applyFacets(&featuredFacets{minimumFeaturedQuality: 0.5, deterministic: true})

	require.Len(t, f.scoringFunctions, 3)

	boost := f.scoringFunctions[2]
	assert.Equal(t, float64(customlistFeaturedBoost), boost["weight"])

	expected := nestedQuery("customlists", boolQuery(boolArgs{must: []esQuery{
		termQuery("customlists.featured", true),
		termsQuery("customlists.list_id", []int64{18, 21}),
	}}))
	assert.Equal(t, expected, boost["filter"])
}
