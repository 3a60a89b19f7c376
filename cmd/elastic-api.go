package main

// Elasticsearch request/response schemas.
// only the pieces of the protocol this service exercises are modeled.

type esRequestJSON struct {
	Query        interface{}            `json:"query,omitempty"`
	Sort         []interface{}          `json:"sort,omitempty"`
	SearchAfter  []interface{}          `json:"search_after,omitempty"`
	Size         *int                   `json:"size,omitempty"`
	Source       interface{}            `json:"_source,omitempty"`
	ScriptFields map[string]interface{} `json:"script_fields,omitempty"`
	Aggs         map[string]interface{} `json:"aggs,omitempty"`
}

type esRequestMeta struct {
	client       *clientContext
	requestAggs  bool // set for facet value requests
	maxScore     float32
	numRecords   int
	totalRecords int
}

type esRequest struct {
	json esRequestJSON
	meta esRequestMeta
}

type esResponseHit struct {
	Index        string                 `json:"_index"`
	ID           string                 `json:"_id"`
	Score        *float32               `json:"_score"`
	Source       workDocument           `json:"_source"`
	Sort         []interface{}          `json:"sort,omitempty"`
	ScriptFields map[string]interface{} `json:"fields,omitempty"`
}

type esResponseTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type esResponseHits struct {
	Total    esResponseTotal `json:"total"`
	MaxScore *float32        `json:"max_score"`
	Hits     []esResponseHit `json:"hits"`
}

type esResponseError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type esAggregationBucket struct {
	Key      interface{} `json:"key"`
	DocCount int         `json:"doc_count"`
}

type esResponseAggregation struct {
	DocCount int                   `json:"doc_count"`
	Buckets  []esAggregationBucket `json:"buckets"`
}

type esResponse struct {
	Took            int                    `json:"took"`
	TimedOut        bool                   `json:"timed_out"`
	Hits            esResponseHits         `json:"hits"`
	AggregationsRaw map[string]interface{} `json:"aggregations,omitempty"`
	Error           *esResponseError       `json:"error,omitempty"`
	Status          int                    `json:"status,omitempty"`

	aggregations map[string]esResponseAggregation // converted from AggregationsRaw
	meta         *esRequestMeta
}

// _bulk response shapes. each item is keyed by the action that produced it.

type esBulkItemResult struct {
	ID     string           `json:"_id"`
	Status int              `json:"status"`
	Error  *esResponseError `json:"error,omitempty"`
}

type esBulkResponse struct {
	Took   int                           `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]esBulkItemResult `json:"items"`
}

// bulkFailure ties a failed document back to the work that produced it.
type bulkFailure struct {
	WorkID int64  `json:"work_id"`
	Error  string `json:"error"`
}
