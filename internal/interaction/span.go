// Package interaction records one external round trip per span. A span is
// mutable while the call is in flight and is consumed exactly once into an
// immutable Log that is returned to the API caller.
package interaction

import (
	"time"
)

const gatewayName = "oxygate"

// Request is the outbound half of a logged interaction. Params hold the
// masked request body, never the wire payload.
type Request struct {
	URL    string `json:"url"`
	Params any    `json:"params"`
}

// Log is the immutable audit record of one upstream call. Absent fields stay
// null: a transport failure never reaches the status or response setters and
// the log must still be usable.
type Log struct {
	Gateway   string    `json:"gateway"`
	Request   *Request  `json:"request"`
	Status    *int      `json:"status"`
	Response  any       `json:"response"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Duration  float64   `json:"duration"`
}

// Span accumulates the pieces of a Log while a call runs. Not safe for
// concurrent use; each upstream call owns its span.
type Span struct {
	started  time.Time
	request  *Request
	status   *int
	response any
	done     bool
}

// Enter opens a span and starts its monotonic timer.
func Enter() *Span {
	return &Span{started: time.Now()}
}

// SetRequest records the target URL and the (already masked) request body.
func (s *Span) SetRequest(url string, params any) {
	s.request = &Request{URL: url, Params: params}
}

// SetResponseStatus records the HTTP status as soon as headers arrive, so a
// later body decode failure still leaves the status in the log.
func (s *Span) SetResponseStatus(status int) {
	s.status = &status
}

// SetResponse records the (already masked) response body.
func (s *Span) SetResponse(res any) {
	s.response = res
}

// Finalize consumes the span into a Log. Duration comes from the monotonic
// clock started at Enter; CreatedAt is wall-clock time at finalization.
// Finalizing twice is a programming error and panics.
func (s *Span) Finalize(kind string) Log {
	if s.done {
		panic("interaction: span finalized twice")
	}
	s.done = true
	return Log{
		Gateway:   gatewayName,
		Request:   s.request,
		Status:    s.status,
		Response:  s.response,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Duration:  time.Since(s.started).Seconds(),
	}
}
