package provider

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// ErrUnavailable means no status check or completion has succeeded yet, so
// the client refuses to issue requests.
var ErrUnavailable = errors.New("provider not available")

// ConnectionError marks a transient transport failure eligible for retry.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// UpstreamError is a non-transient failure reported by the backend itself,
// such as a malformed request or an exhausted quota. It is never retried.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider: upstream error: %s", e.Body)
	}
	return fmt.Sprintf("provider: unexpected status %d: %s", e.StatusCode, e.Body)
}

// connHints are substrings of transport errors that stdlib types do not
// expose uniformly across platforms.
var connHints = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"broken pipe",
	"timeout",
	"timed out",
	"eof",
}

// classify wraps transport-level failures in ConnectionError so the retry
// loop can tell them apart from upstream rejections.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ConnectionError{Err: err}
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return &ConnectionError{Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &ConnectionError{Err: err}
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range connHints {
		if strings.Contains(msg, hint) {
			return &ConnectionError{Err: err}
		}
	}
	return err
}

func retryable(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
