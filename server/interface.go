/*
Package server implements request/response IPC for weighted edit distance search.

The server reads requests from an input stream (stdin by default) and writes
responses to an output stream (stdout by default). Messages are encoded with a
codec from package codec: newline-delimited JSON or a msgpack stream.
Requests are processed synchronously, one at a time, with timing info included
in responses.

# IPC

On start the server writes a ready signal:

	{"status": "ready"}

Each request carries an ID and an operation. A text search:

	{"id": "req_001", "op": "search", "q": "amīcus", "k": 3}

The server responds with entries ranked by distance, the count and the time
taken in microseconds:

	{"id": "req_001", "r": [{"w": "amicus", "s": 0, "i": 12}, {"w": "amica", "s": 3.1, "i": 11}], "c": 2, "t": 145}

Queries may also be given as raw symbols with "sym". The "par" flag selects
parallel or sequential mode; without it the server default applies. An empty
query for "search" or "best" picks a random dictionary word, echoed in "q".

Live suggestions while typing use a separate index whose appends are cheap,
so short prefixes rank their completions first:

	{"id": "req_002", "op": "suggest", "q": "ami"}

Other operations:

	{"id": "req_003", "op": "best", "q": "rosa"}
	{"id": "req_004", "op": "distance", "q": "rosa", "c": "rota"}
	{"id": "req_005", "op": "info"}
	{"op": "health"}

Failed operations produce an error message with an HTTP-like code: 400 for a
malformed request, 404 when nothing matched, 429 when the index refused the
search under its resource limits, 500 otherwise.

	{"id": "req_006", "e": "query exceeds 64 characters", "code": 400}
*/
package server

// Operations understood by the server.
const (
	OpSearch   = "search"
	OpBest     = "best"
	OpSuggest  = "suggest"
	OpDistance = "distance"
	OpInfo     = "info"
	OpHealth   = "health"
)

// Error codes.
const (
	CodeBadRequest = 400
	CodeNotFound   = 404
	CodeExhausted  = 429
	CodeInternal   = 500
)

// Request - one client request
type Request struct {
	ID        string   `json:"id" msgpack:"id"`
	Op        string   `json:"op" msgpack:"op"`
	Query     string   `json:"q,omitempty" msgpack:"q,omitempty"`
	Symbols   []uint32 `json:"sym,omitempty" msgpack:"sym,omitempty"`
	Candidate string   `json:"c,omitempty" msgpack:"c,omitempty"` // for "distance"
	K         int      `json:"k,omitempty" msgpack:"k,omitempty"`
	Parallel  *bool    `json:"par,omitempty" msgpack:"par,omitempty"` // nil = server default
}

// Match - one ranked dictionary entry
type Match struct {
	Word  string  `json:"w" msgpack:"w"`
	Score float64 `json:"s" msgpack:"s"`
	Index int     `json:"i" msgpack:"i"`
}

// SearchResponse - response to "search", "best" and "suggest"
type SearchResponse struct {
	ID        string  `json:"id" msgpack:"id"`
	Query     string  `json:"q,omitempty" msgpack:"q,omitempty"` // the random word, for an empty query
	Matches   []Match `json:"r" msgpack:"r"`
	Count     int     `json:"c" msgpack:"c"`
	TimeTaken int64   `json:"t" msgpack:"t"`
}

// DistanceResponse - response to "distance"
type DistanceResponse struct {
	ID        string  `json:"id" msgpack:"id"`
	Distance  float64 `json:"d" msgpack:"d"`
	TimeTaken int64   `json:"t" msgpack:"t"`
}

// InfoResponse - response to "info"
type InfoResponse struct {
	ID       string `json:"id" msgpack:"id"`
	Entries  int    `json:"entries" msgpack:"entries"`
	Alphabet int    `json:"alphabet" msgpack:"alphabet"`
	Workers  int    `json:"workers" msgpack:"workers"`
	KeyCost  bool   `json:"key_cost" msgpack:"key_cost"`
	Suggest  bool   `json:"suggest" msgpack:"suggest"` // separate suggestion index
	Codec    string `json:"codec" msgpack:"codec"`
}

// StatusResponse - ready and health signals
type StatusResponse struct {
	ID     string `json:"id,omitempty" msgpack:"id,omitempty"`
	Status string `json:"status" msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `json:"id" msgpack:"id"`
	Error string `json:"e" msgpack:"e"`
	Code  int    `json:"code" msgpack:"code"`
}
