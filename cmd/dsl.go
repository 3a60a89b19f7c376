package main

// Elasticsearch query DSL construction.
//
// queries are built as plain maps and serialized directly into the request
// body. the engine's grammar is open-ended enough that typed structs for
// every clause shape would fight the protocol rather than help it.

type esQuery map[string]interface{}

func termQuery(field string, value interface{}) esQuery {
	return esQuery{"term": map[string]interface{}{field: value}}
}

func termsQuery(field string, values interface{}) esQuery {
	return esQuery{"terms": map[string]interface{}{field: values}}
}

func matchQuery(field string, value interface{}) esQuery {
	return esQuery{"match": map[string]interface{}{field: value}}
}

func matchQueryOpts(field string, opts map[string]interface{}) esQuery {
	return esQuery{"match": map[string]interface{}{field: opts}}
}

func matchPhraseQuery(field string, value string) esQuery {
	return esQuery{"match_phrase": map[string]interface{}{field: value}}
}

func matchAllQuery() esQuery {
	return esQuery{"match_all": map[string]interface{}{}}
}

func matchNoneQuery() esQuery {
	return esQuery{"match_none": map[string]interface{}{}}
}

func multiMatchQuery(query string, fields []string, opts map[string]interface{}) esQuery {
	mm := map[string]interface{}{
		"query":  query,
		"fields": fields,
	}

	for key, val := range opts {
		mm[key] = val
	}

	return esQuery{"multi_match": mm}
}

func simpleQueryStringQuery(query string, fields []string) esQuery {
	return esQuery{"simple_query_string": map[string]interface{}{
		"query":  query,
		"fields": fields,
	}}
}

func rangeQuery(field string, bounds map[string]interface{}) esQuery {
	return esQuery{"range": map[string]interface{}{field: bounds}}
}

func existsQuery(field string) esQuery {
	return esQuery{"exists": map[string]interface{}{"field": field}}
}

func nestedQuery(path string, query esQuery) esQuery {
	return esQuery{"nested": map[string]interface{}{
		"path":  path,
		"query": query,
	}}
}

func disMaxQuery(queries []esQuery) esQuery {
	return esQuery{"dis_max": map[string]interface{}{"queries": queries}}
}

type boolArgs struct {
	must               []esQuery
	should             []esQuery
	mustNot            []esQuery
	filter             []esQuery
	minimumShouldMatch int
	boost              float64
}

func boolQuery(args boolArgs) esQuery {
	clause := map[string]interface{}{}

	if len(args.must) > 0 {
		clause["must"] = args.must
	}

	if len(args.should) > 0 {
		clause["should"] = args.should
	}

	if len(args.mustNot) > 0 {
		clause["must_not"] = args.mustNot
	}

	if len(args.filter) > 0 {
		clause["filter"] = args.filter
	}

	if args.minimumShouldMatch != 0 {
		clause["minimum_should_match"] = args.minimumShouldMatch
	}

	if args.boost != 0 {
		clause["boost"] = args.boost
	}

	return esQuery{"bool": clause}
}

// boostQuery wraps one or more queries in a bool clause carrying a boost.
// a single unboosted, unfiltered query passes through untouched.
func boostQuery(boost float64, queries []esQuery, filters []esQuery, allMustMatch bool) esQuery {
	if boost == 1 && len(filters) == 0 && len(queries) == 1 {
		return queries[0]
	}

	args := boolArgs{
		boost:  boost,
		filter: filters,
	}

	if len(queries) == 1 || allMustMatch {
		args.must = queries
	} else {
		args.should = queries
		args.minimumShouldMatch = 1
	}

	return boolQuery(args)
}

func functionScoreQuery(query esQuery, functions []esQuery) esQuery {
	return esQuery{"function_score": map[string]interface{}{
		"query":      query,
		"functions":  functions,
		"score_mode": "sum",
	}}
}

func scriptScoreFunction(source string) esQuery {
	return esQuery{"script_score": map[string]interface{}{
		"script": map[string]interface{}{"source": source},
	}}
}

func randomScoreFunction(seed interface{}, weight float64) esQuery {
	random := map[string]interface{}{}
	if seed != nil {
		random["seed"] = seed
		random["field"] = "work_id"
	}

	return esQuery{
		"random_score": random,
		"weight":       weight,
	}
}

func filterScoreFunction(filter esQuery, weight float64) esQuery {
	return esQuery{
		"filter": filter,
		"weight": weight,
	}
}
