package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortOrderDefaultIsRelevance(t *testing.T) {
	f := newSearchFilter()

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Nil(t, keys)
}

func TestSortOrderTitle(t *testing.T) {
	f := newSearchFilter()
	f.order = orderTitle

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"sort_title": "asc"},
		map[string]interface{}{"sort_author": "asc"},
		map[string]interface{}{"work_id": "asc"},
	}, keys)
}

func TestSortOrderAuthorDescending(t *testing.T) {
	f := newSearchFilter()
	f.order = orderAuthor
	f.orderAscending = false

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"sort_author": "desc"},
		map[string]interface{}{"sort_title": "asc"},
		map[string]interface{}{"work_id": "asc"},
	}, keys)
}

func TestSortOrderSeriesPositionTiebreaksTitleFirst(t *testing.T) {
	f := newSearchFilter()
	f.order = orderSeriesPosition

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"series_position": "asc"},
		map[string]interface{}{"sort_title": "asc"},
		map[string]interface{}{"sort_author": "asc"},
		map[string]interface{}{"work_id": "asc"},
	}, keys)
}

func TestSortOrderAddedToCollection(t *testing.T) {
	f := newSearchFilter()
	f.order = orderAddedToCollection

	keys, err := f.sortOrder()

	require.NoError(t, err)
	require.Len(t, keys, 4)

	spec := keys[0].(map[string]interface{})["licensepools.availability_time"].(map[string]interface{})
	assert.Equal(t, "min", spec["mode"])
	assert.Equal(t, "asc", spec["order"])
	assert.NotContains(t, spec, "nested")
}

func TestSortOrderAddedToCollectionRestricted(t *testing.T) {
	f := newSearchFilter()
	f.order = orderAddedToCollection
	f.collectionIDs = []int64{3, 4}

	keys, err := f.sortOrder()

	require.NoError(t, err)

	spec := keys[0].(map[string]interface{})["licensepools.availability_time"].(map[string]interface{})
	require.Contains(t, spec, "nested")

	nested := spec["nested"].(map[string]interface{})
	assert.Equal(t, "licensepools", nested["path"])
	assert.Equal(t, map[string]interface{}{
		"terms": map[string]interface{}{
			"licensepools.collection_id": []int64{3, 4},
		},
	}, nested["filter"])
}

func TestSortOrderLastUpdateUnrestricted(t *testing.T) {
	f := newSearchFilter()
	f.order = orderLastUpdate

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"last_update_time": "asc"}, keys[0])
}

func TestSortOrderLastUpdateUsesStoredScript(t *testing.T) {
	f := newSearchFilter()
	f.order = orderLastUpdate
	f.collectionIDs = []int64{1}
	f.customlistRestrictionSets = [][]int64{{8, 6}}

	keys, err := f.sortOrder()

	require.NoError(t, err)

	script := keys[0].(map[string]interface{})["_script"].(map[string]interface{})
	assert.Equal(t, "number", script["type"])
	assert.Equal(t, "asc", script["order"])

	inner := script["script"].(map[string]interface{})
	assert.Equal(t, "circulation.work_last_update.v5", inner["stored"])
	assert.Equal(t, map[string]interface{}{
		"collection_ids": []int64{1},
		"list_ids":       []int64{6, 8},
	}, inner["params"])
}

func TestSortOrderLastUpdateListsOnly(t *testing.T) {
	f := newSearchFilter()
	f.order = orderLastUpdate
	f.customlistRestrictionSets = [][]int64{{2}}

	keys, err := f.sortOrder()

	require.NoError(t, err)

	script := keys[0].(map[string]interface{})["_script"].(map[string]interface{})
	inner := script["script"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"collection_ids": []int64{},
		"list_ids":       []int64{2},
	}, inner["params"])
}

func TestSortOrderUnknownSubdocumentField(t *testing.T) {
	f := newSearchFilter()
	f.order = "licensepools.quality"

	_, err := f.sortOrder()

	require.Error(t, err)
	assert.Equal(t, "I don't know how to sort by licensepools.quality", err.Error())
}

func TestSortOrderUnknownPlainFieldPassesThrough(t *testing.T) {
	f := newSearchFilter()
	f.order = "quality"

	keys, err := f.sortOrder()

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"quality": "asc"}, keys[0])
}
