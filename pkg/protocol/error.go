// Package protocol defines the error taxonomy shared by all region
// adapters: transport failures, vendor rejections, unsupported
// capabilities and malformed vendor responses.
package protocol

import (
	"errors"
	"fmt"
	"net/http"
)

// Error exposes methods useful for categorizing failures.
type Error interface {
	error

	// MayHaveSucceeded returns true if the vendor may have executed the
	// command despite the failure. For example, a timeout while waiting
	// for a response does not tell the client whether the command was
	// received.
	MayHaveSucceeded() bool

	// Temporary returns true if the failure might be the result of a
	// transient condition, such as the vendor cloud being briefly
	// unavailable. The library never retries on its own; this is a hint
	// for the caller.
	Temporary() bool
}

// TransportError wraps a network-level failure (DNS, connection reset,
// timeout). It is surfaced unmodified and never converted into a
// response envelope.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) MayHaveSucceeded() bool {
	// The request may have left the client before the failure.
	return true
}

func (e *TransportError) Temporary() bool { return true }

// RejectionError reports a non-2xx vendor response for operations that
// raise on rejection. Operations that instead report failure through
// their return value are documented as such on the capability
// contract.
type RejectionError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: vendor rejected request: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *RejectionError) MayHaveSucceeded() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return false
	}
	return e.StatusCode != http.StatusServiceUnavailable
}

func (e *RejectionError) Temporary() bool {
	return e.StatusCode == http.StatusServiceUnavailable ||
		e.StatusCode == http.StatusGatewayTimeout ||
		e.StatusCode == http.StatusRequestTimeout
}

// NotImplementedError indicates a capability the region's dialect does
// not support. It is returned before any network I/O takes place.
type NotImplementedError struct {
	Op     string
	Region string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s: not supported by the %s region adapter", e.Op, e.Region)
}

func (e *NotImplementedError) MayHaveSucceeded() bool { return false }

func (e *NotImplementedError) Temporary() bool { return false }

// DecodeError indicates the vendor accepted the request but returned a
// body the client cannot use: unparsable JSON, a missing subtree, or a
// lookup that came back empty (such as a VIN absent from the account's
// enrollment records).
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed vendor response: %s", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) MayHaveSucceeded() bool {
	// The vendor returned 200 before the body proved unusable.
	return true
}

func (e *DecodeError) Temporary() bool { return false }

// MayHaveSucceeded returns true if err indicates the command may have
// been executed even though the client did not observe a confirmation.
func MayHaveSucceeded(err error) bool {
	var perr Error
	return errors.As(err, &perr) && perr.MayHaveSucceeded()
}

// Temporary returns true if err indicates a possibly transient failure.
func Temporary(err error) bool {
	var perr Error
	return errors.As(err, &perr) && perr.Temporary()
}
