// Package dispatcher performs the session-guarded HTTP exchange every
// region adapter routes through: refresh the access token, stamp it
// on the request, send, and hand the response back as data.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carlink-community/carlink/internal/log"
	"github.com/carlink-community/carlink/pkg/protocol"
	"github.com/carlink-community/carlink/pkg/region"
	"github.com/carlink-community/carlink/pkg/session"
)

// DefaultTimeout bounds a single exchange when the caller's context
// carries no deadline, so a stalled vendor exchange cannot block an
// operation indefinitely.
const DefaultTimeout = 30 * time.Second

// MaxResponseLength caps how much of a response body is read.
const MaxResponseLength = 512 * 1024

// Request describes one outbound call. The access-token header is not
// part of Headers; the dispatcher owns it.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Envelope is the uniform response representation. Non-2xx statuses
// are data, not errors; interpreting them is the adapter's job.
type Envelope struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Dispatcher sends requests to one regional cloud on behalf of one or
// more vehicles. It is stateless apart from its configuration and safe
// for concurrent use.
type Dispatcher struct {
	Env      region.Environment
	Provider session.Provider
	// AuthHeader is the region's name for the access-token header.
	AuthHeader string
	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration
	// Client overrides http.DefaultClient when non-nil.
	Client *http.Client
}

// Dispatch refreshes the session, sends the request and returns the
// vendor's response. The token attached to the request is always the
// one read after the refresh completed; correctness beats efficiency
// here, and a Provider that wants to avoid the upstream round-trip
// can short-circuit internally.
//
// Transport-level failures return a *protocol.TransportError; any
// response from the vendor, 2xx or not, returns as an Envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Envelope, error) {
	if _, ok := ctx.Deadline(); !ok {
		timeout := d.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := d.Provider.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refreshing session before %s: %w", req.Path, err)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	url := d.Env.BaseURL + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, &protocol.TransportError{Op: req.Path, Err: err}
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}
	// Written after the caller's headers so nothing can smuggle in a
	// pre-refresh token.
	httpReq.Header.Set(d.AuthHeader, d.Provider.AccessToken())

	id := uuid.NewString()
	log.Debug("[%s] %s %s", id, req.Method, url)
	rsp, err := d.client().Do(httpReq)
	if err != nil {
		return nil, &protocol.TransportError{Op: req.Path, Err: err}
	}
	defer rsp.Body.Close()

	reader := io.LimitedReader{R: rsp.Body, N: MaxResponseLength}
	payload, err := io.ReadAll(&reader)
	if err != nil {
		return nil, &protocol.TransportError{Op: req.Path, Err: err}
	}
	log.Debug("[%s] vendor returned %d: %s", id, rsp.StatusCode, payload)

	return &Envelope{StatusCode: rsp.StatusCode, Body: payload, Headers: rsp.Header}, nil
}

func (d *Dispatcher) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}
