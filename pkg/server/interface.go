/*
Package server implements msgpack IPC for the efficiency lookup service.

The server reads a stream of msgpack encoded requests from stdin and writes one
msgpack response per request to stdout. Logs go to stderr so they never mix
with the stream.

# IPC

Every request is a map with an ID and an action. The other fields depend on the action:

	{"id": "req_001", "action": "search", "k": "silicium"}
	{"id": "req_002", "action": "history", "k": "Perovskite"}
	{"id": "req_003", "action": "autocomplete", "q": "pero"}
	{"id": "req_004", "action": "suggestions"}
	{"id": "req_005", "action": "reload", "path": "/data/nrel_data.csv"}
	{"id": "req_006", "action": "health"}

Responses echo the ID and carry the payload with the same field names as the service types:

	{"id": "req_001", "found": true, "keyword": "silicium",
	 "data": {"efficiency": "26.1%", "update_date": "2019-06-01", "laboratory": "LabA",
	          "technology": "Silicon", "category": "Crystalline Si"}, "t": 87}

A not found search is a normal response with "found" false. Failures use a
short error message:

	{"id": "req_001", "e": "data unavailable", "c": 503}

Codes are 400 for bad requests, 503 when no data is loaded and 500 for internal errors.
On start the server sends {"status": "ready"}.
*/
package server

import (
	"github.com/bastiangx/effserve/pkg/search"
	"github.com/bastiangx/effserve/pkg/service"
)

// Actions understood by the server
const (
	ActionSearch       = "search"
	ActionHistory      = "history"
	ActionAutocomplete = "autocomplete"
	ActionSuggestions  = "suggestions"
	ActionReload       = "reload"
	ActionHealth       = "health"
)

// Backend is the query surface the server dispatches to. *service.Service implements it.
type Backend interface {
	Search(keyword string) (service.SearchResponse, error)
	History(keyword string) []search.Point
	Autocomplete(query string) []string
	Suggestions() []string
	ReloadFile(path string) (service.ReloadResult, error)
	Health() service.Health
}

// Request - any client request
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action"`
	Keyword string `msgpack:"k,omitempty"`
	Query   string `msgpack:"q,omitempty"`
	Path    string `msgpack:"path,omitempty"`
}

// SearchResponse - point query answer
type SearchResponse struct {
	ID        string              `msgpack:"id"`
	Found     bool                `msgpack:"found"`
	Keyword   string              `msgpack:"keyword"`
	Data      *service.SearchData `msgpack:"data,omitempty"`
	Message   string              `msgpack:"message,omitempty"`
	TimeTaken int64               `msgpack:"t"`
}

// HistoryResponse - time series answer, oldest point first
type HistoryResponse struct {
	ID        string         `msgpack:"id"`
	Points    []search.Point `msgpack:"points"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// ListResponse - autocomplete and suggestions answer
type ListResponse struct {
	ID        string   `msgpack:"id"`
	Items     []string `msgpack:"s"`
	Count     int      `msgpack:"c"`
	TimeTaken int64    `msgpack:"t"`
}

// ReloadResponse - dataset reload result
type ReloadResponse struct {
	ID           string `msgpack:"id"`
	Status       string `msgpack:"status"`
	TotalRecords int    `msgpack:"total_records"`
}

// HealthResponse - snapshot status
type HealthResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Records  int    `msgpack:"records"`
	Version  uint64 `msgpack:"version"`
	LoadedAt string `msgpack:"loaded_at,omitempty"`
}

// StatusMessage is sent once when the server is ready
type StatusMessage struct {
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for any request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
