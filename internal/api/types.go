// Package api serves the results ingestion HTTP endpoint.
package api

// batchRequest is the POST /api/v1/results payload.
type batchRequest struct {
	OlympiadID int64       `json:"olympiad_id"`
	Results    []batchItem `json:"results"`
}

// batchItem is one result row; only diploma_link is optional.
// Score and place are pointers to tell an absent field from a zero.
type batchItem struct {
	FullName    string  `json:"full_name"`
	SNILS       string  `json:"snils"`
	Score       *int    `json:"score"`
	Place       *int    `json:"place"`
	DiplomaLink *string `json:"diploma_link"`
}

type batchResponse struct {
	AddedCount int `json:"added_count"`
}

type itemError struct {
	Index  int    `json:"index"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type errorsResponse struct {
	Errors []itemError `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}
