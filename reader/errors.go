package reader

import "fmt"

// ParseError reports unreadable, corrupt, encrypted, or non-PDF input.
// Opening a document either succeeds completely or fails with this error;
// callers never see a partial document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("pdf parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}
