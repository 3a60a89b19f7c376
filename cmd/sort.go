package main

import (
	"fmt"
	"strings"
)

// sort order resolution. a client-facing order name maps to one or more
// engine sort keys, with stable tiebreakers appended so search_after keys
// are always unambiguous.

const (
	orderTitle             = "title"
	orderAuthor            = "author"
	orderLastUpdate        = "last_update"
	orderAddedToCollection = "added_to_collection"
	orderSeriesPosition    = "series_position"
	orderWorkID            = "work_id"
	orderRandom            = "random"
)

var sortOrderFields = map[string]string{
	orderTitle:             "sort_title",
	orderAuthor:            "sort_author",
	orderLastUpdate:        "last_update_time",
	orderAddedToCollection: "licensepools.availability_time",
	orderSeriesPosition:    "series_position",
	orderWorkID:            "work_id",
	orderRandom:            "random",
}

var sortTiebreakers = []string{"sort_author", "sort_title", "work_id"}

func validSortOrders() []string {
	return []string{
		orderTitle, orderAuthor, orderLastUpdate, orderAddedToCollection,
		orderSeriesPosition, orderWorkID, orderRandom,
	}
}

// sortOrder resolves the filter's order into the engine's sort clause list.
func (f *searchFilter) sortOrder() ([]interface{}, error) {
	if f.order == "" {
		return nil, nil
	}

	direction := "asc"
	if !f.orderAscending {
		direction = "desc"
	}

	field, ok := sortOrderFields[f.order]
	if !ok {
		field = f.order

		// subdocument fields need bespoke nested sort handling; refuse
		// ones we have none for
		if strings.Contains(field, ".") {
			return nil, fmt.Errorf("I don't know how to sort by %s", field)
		}
	}

	var keys []interface{}
	var primary string

	switch f.order {
	case orderAddedToCollection:
		keys = append(keys, f.availabilityTimeSort(direction))
		primary = field
	case orderLastUpdate:
		keys = append(keys, f.lastUpdateSort(direction))
		primary = field
	default:
		keys = append(keys, map[string]interface{}{field: direction})
		primary = field
	}

	// series position sorts by title before author so numberless series
	// still come out in a stable shelf order
	if f.order == orderSeriesPosition {
		for _, tiebreaker := range []string{"sort_title", "sort_author", "work_id"} {
			keys = append(keys, map[string]interface{}{tiebreaker: "asc"})
		}
		return keys, nil
	}

	for _, tiebreaker := range sortTiebreakers {
		if tiebreaker == primary {
			continue
		}
		keys = append(keys, map[string]interface{}{tiebreaker: "asc"})
	}

	return keys, nil
}

// availabilityTimeSort orders by the earliest time a work entered any of
// the relevant collections. the field lives on a nested subdocument, so
// the sort carries its own nested clause.
func (f *searchFilter) availabilityTimeSort(direction string) map[string]interface{} {
	spec := map[string]interface{}{
		"mode":  "min",
		"order": direction,
	}

	if f.collectionIDs != nil {
		spec["nested"] = map[string]interface{}{
			"path": "licensepools",
			"filter": map[string]interface{}{
				"terms": map[string]interface{}{
					"licensepools.collection_id": f.collectionIDs,
				},
			},
		}
	}

	return map[string]interface{}{"licensepools.availability_time": spec}
}

// lastUpdateSort orders by the work's last-update time. when the filter
// restricts collections or customlists, "last update" must account for
// when the work entered those collections and lists, which only a stored
// script can compute.
func (f *searchFilter) lastUpdateSort(direction string) map[string]interface{} {
	listIDs := f.customlistIDs()

	if f.collectionIDs == nil && len(listIDs) == 0 {
		return map[string]interface{}{"last_update_time": direction}
	}

	collectionIDs := f.collectionIDs
	if collectionIDs == nil {
		collectionIDs = []int64{}
	}

	if listIDs == nil {
		listIDs = []int64{}
	}

	return map[string]interface{}{
		"_script": map[string]interface{}{
			"type":  "number",
			"order": direction,
			"script": map[string]interface{}{
				"stored": workLastUpdateScriptName(),
				"params": map[string]interface{}{
					"collection_ids": collectionIDs,
					"list_ids":       listIDs,
				},
			},
		},
	}
}

// lastUpdateScriptField returns a script_fields entry exposing the computed
// last-update time on each hit, with the same params the sort uses.
func (f *searchFilter) lastUpdateScriptField() map[string]interface{} {
	collectionIDs := f.collectionIDs
	if collectionIDs == nil {
		collectionIDs = []int64{}
	}

	listIDs := f.customlistIDs()
	if listIDs == nil {
		listIDs = []int64{}
	}

	return map[string]interface{}{
		"script": map[string]interface{}{
			"stored": workLastUpdateScriptName(),
			"params": map[string]interface{}{
				"collection_ids": collectionIDs,
				"list_ids":       listIDs,
			},
		},
	}
}
