package provider

import (
	"context"
	"errors"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// Profile is the canonical identity extracted from a third-party provider
// profile response.
type Profile struct {
	Email     string
	Name      string
	AvatarURL string
}

// IdentityProvider exchanges an OAuth authorization code for the canonical
// profile of the authenticated user.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	ExchangeProfile(ctx context.Context, code string) (*Profile, error)
}

// Registry maps provider names to their implementations.
type Registry struct {
	providers map[string]IdentityProvider
}

// NewRegistry creates a Registry containing the given providers.
func NewRegistry(providers ...IdentityProvider) *Registry {
	r := &Registry{providers: make(map[string]IdentityProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under the given name.
func (r *Registry) Get(name string) (IdentityProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}
