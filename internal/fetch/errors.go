package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// FetchError reports a source document that could not be retrieved or did
// not look like a PDF. It always names the offending URL.
type FetchError struct {
	URL        string
	StatusCode int    // zero when no response was received
	Reason     string // short human-readable cause
	Err        error

	retryable bool
}

func (e *FetchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fetch %s", e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": HTTP %d", e.StatusCode)
	}
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt might succeed: transport
// failures, 429 and 5xx responses.
func (e *FetchError) Retryable() bool {
	return e.retryable
}

func isRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable()
}
