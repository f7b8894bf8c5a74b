package api

import (
	"net/http"

	"github.com/google/uuid"

	"devwise/pkg/errors"
)

// Identity resolves the authenticated caller from an incoming request.
// The server sits behind an authenticating proxy in production; tests
// plug in their own resolver.
type Identity interface {
	UserID(r *http.Request) (uuid.UUID, error)
}

// HeaderIdentity reads the user from a trusted proxy header
type HeaderIdentity struct {
	Header string
}

// NewHeaderIdentity resolves callers from the X-User-ID header
func NewHeaderIdentity() *HeaderIdentity {
	return &HeaderIdentity{Header: "X-User-ID"}
}

func (h *HeaderIdentity) UserID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(h.Header)
	if raw == "" {
		return uuid.Nil, errors.Wrap(errors.ErrUnauthorized, "missing user identity")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrUnauthorized, "invalid user identity")
	}

	return id, nil
}
