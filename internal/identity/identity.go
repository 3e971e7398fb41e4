// Package identity resolves the authenticated shopper behind a request. The
// actual token issuer (Firebase in production) stays external; this package
// only defines the boundary and a static implementation for development and
// tests.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrNoToken reports that no credential could be produced for the current
// identity.
var ErrNoToken = errors.New("no token available")

// Identity is an authenticated shopper.
type Identity struct {
	UID string `json:"uid"`
}

// Binding resolves the current identity and its short-lived bearer credential.
type Binding interface {
	// Current returns the bound identity, or false when the session is
	// anonymous.
	Current(ctx context.Context) (Identity, bool)
	// Token returns a bearer token for the bound identity.
	Token(ctx context.Context) (string, error)
}

// Static is a fixed identity binding, used by tests and embedded deployments
// that already hold a verified identity.
type Static struct {
	UID         string
	BearerToken string
}

// Current implements Binding.
func (s Static) Current(context.Context) (Identity, bool) {
	if s.UID == "" {
		return Identity{}, false
	}
	return Identity{UID: s.UID}, true
}

// Token implements Binding.
func (s Static) Token(context.Context) (string, error) {
	if s.BearerToken == "" {
		return "", ErrNoToken
	}
	return s.BearerToken, nil
}

// Anonymous is the binding for sessions with no identity.
var Anonymous Binding = Static{}

// Verifier validates a bearer token and yields the identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// StaticVerifier maps known tokens to uids. Development and test use only.
type StaticVerifier map[string]string

// Verify implements Verifier.
func (v StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	uid, ok := v[token]
	if !ok {
		return Identity{}, errors.New("unknown token")
	}
	return Identity{UID: uid}, nil
}

// FromRequest resolves the request's bearer token through the verifier. A
// missing or invalid token yields an anonymous binding, never an error: the
// widget works logged-out, it just loses persistence.
func FromRequest(r *http.Request, verifier Verifier) Binding {
	token := bearerToken(r)
	if token == "" || verifier == nil {
		return Anonymous
	}

	id, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return Anonymous
	}
	return Static{UID: id.UID, BearerToken: token}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
}
