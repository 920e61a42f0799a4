// Package session models the access-token state shared by every
// vehicle on an account. Vehicles never hold a token themselves; they
// read it through a Provider, and only the Provider's Refresh method
// mutates it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider owns the current access token. The dispatcher calls Refresh
// before every outbound request and reads AccessToken afterwards, so a
// Provider is free to short-circuit Refresh when the token is still
// fresh but must never return a stale token from AccessToken.
//
// Implementations must be safe for concurrent use; several vehicles
// typically share one Provider.
type Provider interface {
	// Refresh ensures the current token is valid, performing network
	// I/O against the vendor's auth endpoint if necessary.
	Refresh(ctx context.Context) error

	// AccessToken returns the token most recently produced by Refresh.
	AccessToken() string
}

// UserConfig is the account identity attached to outbound requests.
// Immutable after registration.
type UserConfig struct {
	Username string
	PIN      string
}

// Static is a Provider with a fixed token and a no-op Refresh. Useful
// for tests and for tokens managed entirely outside the library.
type Static struct {
	Token string
}

func (s Static) Refresh(context.Context) error { return nil }

func (s Static) AccessToken() string { return s.Token }

// RefreshFunc obtains a new access token from the vendor. The login
// handshake that produces the first refresh credential is outside the
// library's scope; callers supply whatever closure fits their auth
// flow.
type RefreshFunc func(ctx context.Context) (token string, err error)

// CachingProvider wraps a RefreshFunc and skips the upstream call
// while the current token's JWT expiry is comfortably in the future.
// A mutex serializes refreshes, so concurrent vehicles sharing the
// provider trigger at most one upstream call at a time.
type CachingProvider struct {
	refresh RefreshFunc
	leeway  time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// DefaultLeeway is subtracted from the token expiry when deciding
// whether a refresh can be skipped, covering clock skew and the time
// the request spends in flight.
const DefaultLeeway = 30 * time.Second

func NewCachingProvider(refresh RefreshFunc) *CachingProvider {
	return &CachingProvider{refresh: refresh, leeway: DefaultLeeway}
}

func (p *CachingProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Add(p.leeway).Before(p.expiry) {
		return nil
	}
	token, err := p.refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}
	p.token = token
	p.expiry = tokenExpiry(token)
	return nil
}

func (p *CachingProvider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// tokenExpiry extracts the exp claim without verifying the signature;
// the token is opaque to the client and validated by the vendor. A
// token without a readable expiry is treated as already expired, which
// makes every Refresh go upstream.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
