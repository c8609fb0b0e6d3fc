package gateway

import "fmt"

// TransportError wraps a network-level failure reaching the upstream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http request error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that does not parse into the expected
// shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gateway response deserialization: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UpstreamError carries the upstream's structured error body; its message is
// surfaced verbatim to the merchant.
type UpstreamError struct {
	Response ErrorResponse
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway response: %s", e.Response.ResponseMessage)
}
