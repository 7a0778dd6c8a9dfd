// Package problemdetails implements the RFC 7807 error body shared by all
// HTTP handlers.
package problemdetails

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails is the wire shape of an API error.
type ProblemDetails struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Write serializes the problem to the response with the problem+json media
// type and the problem's status code.
func Write(w http.ResponseWriter, problem ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}
