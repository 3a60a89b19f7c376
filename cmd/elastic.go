package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

func (s *searchContext) convertAggregations() error {
	// convert the response "aggregations" block to internal structures.
	// nested aggregations wrap their terms block in an extra map keyed by
	// the aggregation name, and every block mixes counts with sub-blocks,
	// so we read it as map[string]interface{}, pull out the map-typed
	// entries, and decode those into the bucket struct.

	if s.esRes.AggregationsRaw == nil {
		return nil
	}

	aggs := make(map[string]esResponseAggregation)

	for key, val := range s.esRes.AggregationsRaw {
		block, ok := val.(map[string]interface{})
		if ok == false {
			continue
		}

		// nested aggregation: the real terms block sits one level down
		// under the same name
		if inner, ok := block[key].(map[string]interface{}); ok {
			block = inner
		}

		var agg esResponseAggregation

		cfg := &mapstructure.DecoderConfig{
			Metadata:   nil,
			Result:     &agg,
			TagName:    "json",
			ZeroFields: true,
		}

		dec, _ := mapstructure.NewDecoder(cfg)

		if mapDecErr := dec.Decode(block); mapDecErr != nil {
			s.log("mapstructure.Decode() failed: %s", mapDecErr.Error())
			return fmt.Errorf("failed to decode aggregations map")
		}

		aggs[key] = agg
	}

	s.esRes.aggregations = aggs

	return nil
}

func (s *searchContext) populateMetaFields() {
	// fill out meta fields for easier use later

	s.esRes.meta = &s.esReq.meta

	s.esRes.meta.numRecords = len(s.esRes.Hits.Hits)
	s.esRes.meta.totalRecords = s.esRes.Hits.Total.Value

	if s.esRes.Hits.MaxScore != nil {
		s.esRes.meta.maxScore = *s.esRes.Hits.MaxScore
	}
}

// classifyTransportError maps a client error to the status the client of
// this service should see.
func classifyTransportError(err error, url string) (int, string) {
	status := http.StatusBadRequest
	errMsg := err.Error()

	if strings.Contains(errMsg, "Timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		status = http.StatusRequestTimeout
		errMsg = fmt.Sprintf("%s timed out", url)
	} else if strings.Contains(errMsg, "connection refused") {
		status = http.StatusServiceUnavailable
		errMsg = fmt.Sprintf("%s refused connection", url)
	}

	return status, errMsg
}

func (s *searchContext) esSearch() error {
	jsonBytes, jsonErr := json.Marshal(s.esReq.json)
	if jsonErr != nil {
		s.log("Marshal() failed: %s", jsonErr.Error())
		return fmt.Errorf("failed to marshal search request")
	}

	req, reqErr := http.NewRequest("POST", s.pool.es.searchURL, bytes.NewBuffer(jsonBytes))
	if reqErr != nil {
		s.log("NewRequest() failed: %s", reqErr.Error())
		return fmt.Errorf("failed to create search request")
	}

	req.Header.Set("Content-Type", "application/json")

	if s.client.opts.verbose == true {
		s.log("[ES] req: [%s]", string(jsonBytes))
	}

	start := time.Now()
	res, resErr := s.pool.es.client.Do(req)
	elapsedMS := int64(time.Since(start) / time.Millisecond)

	// external service failure logging (scenario 1)

	if resErr != nil {
		status, errMsg := classifyTransportError(resErr, s.pool.es.searchURL)

		s.log("client.Do() failed: %s", resErr.Error())
		s.err("Failed response from POST %s - %d:%s. Elapsed Time: %d (ms)", s.pool.es.searchURL, status, errMsg, elapsedMS)
		s.svcStatus = status
		return fmt.Errorf("failed to receive search response")
	}

	defer res.Body.Close()

	var esRes esResponse

	decoder := json.NewDecoder(res.Body)

	// external service failure logging (scenario 2)

	if decErr := decoder.Decode(&esRes); decErr != nil {
		s.log("Decode() failed: %s", decErr.Error())
		s.err("Failed response from POST %s - %d:%s. Elapsed Time: %d (ms)", s.pool.es.searchURL, http.StatusInternalServerError, decErr.Error(), elapsedMS)
		return fmt.Errorf("failed to decode search response")
	}

	// external service success logging

	s.log("Successful search response from POST %s. Elapsed Time: %d (ms)", s.pool.es.searchURL, elapsedMS)

	s.esRes = &esRes

	// quick validation
	if esRes.Error != nil {
		s.log("[ES] res: error: { type = %s, reason = %s }", esRes.Error.Type, esRes.Error.Reason)
		return fmt.Errorf("%d - %s", esRes.Status, esRes.Error.Reason)
	}

	s.convertAggregations()
	s.populateMetaFields()

	s.log("[ES] res: { took = %d, total = %d, returned = %d, maxScore = %0.2f }", esRes.Took, esRes.meta.totalRecords, esRes.meta.numRecords, esRes.meta.maxScore)

	return nil
}

// esBulkBody renders the newline-delimited action/document stream for one
// batch.
func esBulkBody(works []workDocument) ([]byte, error) {
	var body bytes.Buffer

	for _, work := range works {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_id": strconv.FormatInt(work.WorkID, 10),
			},
		}

		actionBytes, err := json.Marshal(action)
		if err != nil {
			return nil, err
		}

		docBytes, err := json.Marshal(work)
		if err != nil {
			return nil, err
		}

		body.Write(actionBytes)
		body.WriteByte('\n')
		body.Write(docBytes)
		body.WriteByte('\n')
	}

	return body.Bytes(), nil
}

func (s *searchContext) esBulkOnce(body []byte) (*esBulkResponse, error) {
	req, reqErr := http.NewRequest("POST", s.pool.es.bulkURL, bytes.NewReader(body))
	if reqErr != nil {
		return nil, reqErr
	}

	req.Header.Set("Content-Type", "application/x-ndjson")

	res, resErr := s.pool.es.client.Do(req)
	if resErr != nil {
		return nil, resErr
	}

	defer res.Body.Close()

	var bulkRes esBulkResponse

	if decErr := json.NewDecoder(res.Body).Decode(&bulkRes); decErr != nil {
		return nil, decErr
	}

	return &bulkRes, nil
}

// esBulkUpdate indexes a batch of works, partitioning the outcome into
// successes and per-document failures. a transport-level failure gets
// exactly one retry of the full batch before every document is reported
// failed.
func (s *searchContext) esBulkUpdate(works []workDocument) ([]int64, []bulkFailure) {
	if len(works) == 0 {
		return nil, nil
	}

	body, err := esBulkBody(works)
	if err != nil {
		s.log("bulk body marshal failed: %s", err.Error())
		return nil, allBulkFailures(works, err)
	}

	res, err := s.esBulkOnce(body)

	if err != nil {
		s.log("[ES] bulk attempt failed: %s; retrying batch once", err.Error())

		res, err = s.esBulkOnce(body)
		if err != nil {
			s.log("[ES] bulk retry failed: %s", err.Error())
			return nil, allBulkFailures(works, err)
		}
	}

	var indexed []int64
	var failures []bulkFailure

	for i, item := range res.Items {
		if i >= len(works) {
			break
		}

		result, ok := item["index"]
		if ok == false {
			// response item for an action we never send
			continue
		}

		if result.Error != nil {
			failures = append(failures, bulkFailure{
				WorkID: works[i].WorkID,
				Error:  fmt.Sprintf("%s: %s", result.Error.Type, result.Error.Reason),
			})
			continue
		}

		indexed = append(indexed, works[i].WorkID)
	}

	// a short items list leaves tail documents unaccounted for; the
	// partition must cover every submitted work
	for i := len(res.Items); i < len(works); i++ {
		failures = append(failures, bulkFailure{
			WorkID: works[i].WorkID,
			Error:  "no result returned for document",
		})
	}

	return indexed, failures
}

func allBulkFailures(works []workDocument, err error) []bulkFailure {
	failures := make([]bulkFailure, 0, len(works))

	for _, work := range works {
		failures = append(failures, bulkFailure{WorkID: work.WorkID, Error: err.Error()})
	}

	return failures
}

// esPing runs a zero-row query to verify the index answers.
func (s *searchContext) esPing() error {
	zero := 0

	s.esReq = &esRequest{
		json: esRequestJSON{
			Query: matchAllQuery(),
			Size:  &zero,
		},
	}

	return s.esSearch()
}

// ensureIndex creates the works index and registers the last-update sort
// script. both calls are idempotent apart from the index-exists error,
// which is tolerated.
func (p *poolContext) ensureIndex() error {
	mappingBytes, err := json.Marshal(worksIndexMapping())
	if err != nil {
		return err
	}

	if err := p.esPut(p.es.indexURL, mappingBytes, "resource_already_exists_exception"); err != nil {
		return fmt.Errorf("index create: %w", err)
	}

	scriptBody := map[string]interface{}{
		"script": map[string]interface{}{
			"lang":   "painless",
			"source": workLastUpdateScript,
		},
	}

	scriptBytes, err := json.Marshal(scriptBody)
	if err != nil {
		return err
	}

	if err := p.esPut(p.es.scriptURL, scriptBytes, ""); err != nil {
		return fmt.Errorf("script register: %w", err)
	}

	log.Printf("[POOL] es index and stored script verified")

	return nil
}

func (p *poolContext) esPut(url string, body []byte, tolerated string) error {
	req, err := http.NewRequest("PUT", url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := p.es.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	var esRes esResponse
	if decErr := json.NewDecoder(res.Body).Decode(&esRes); decErr == nil && esRes.Error != nil {
		if tolerated != "" && esRes.Error.Type == tolerated {
			return nil
		}
		return fmt.Errorf("%s: %s", esRes.Error.Type, esRes.Error.Reason)
	}

	return fmt.Errorf("unexpected status %d from PUT %s", res.StatusCode, url)
}
