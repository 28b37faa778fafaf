package upstream

import "fmt"

// TransportError reports a network failure or an upstream error response.
// The original diagnostic text is preserved; callers see it verbatim.
type TransportError struct {
	Status int // 0 when the request never produced a response
	Msg    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream request failed: %s", e.Msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports JSON that parsed but whose top-level structure does not
// match what the upstream contract promises (e.g. expected array, got object).
// Row-level oddities degrade to zero values instead of raising this.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected upstream response shape: %s", e.Msg)
}
