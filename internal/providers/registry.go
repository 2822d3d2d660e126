package providers

import (
	"fmt"
	"strings"
)

// Registry holds the statically registered providers and the ones selected
// for deposits and withdrawals. Selection happens once at startup; there is
// no runtime string-to-type resolution after that.
type Registry struct {
	providers map[string]Provider
	deposit   Provider
	withdraw  Provider
}

// NewRegistry registers the given providers and resolves the configured
// deposit and withdraw selections. Unknown selections fail construction.
func NewRegistry(depositName, withdrawName string, providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		name := strings.ToLower(p.Name())
		if _, exists := r.providers[name]; exists {
			return nil, fmt.Errorf("provider %q registered twice", name)
		}
		r.providers[name] = p
	}

	var err error
	if r.deposit, err = r.Get(depositName); err != nil {
		return nil, fmt.Errorf("deposit provider: %w", err)
	}
	if r.withdraw, err = r.Get(withdrawName); err != nil {
		return nil, fmt.Errorf("withdraw provider: %w", err)
	}
	return r, nil
}

// Get returns a registered provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", name)
	}
	return p, nil
}

// Deposit returns the provider selected for deposit initiation.
func (r *Registry) Deposit() Provider { return r.deposit }

// Withdraw returns the provider selected for withdraw initiation.
func (r *Registry) Withdraw() Provider { return r.withdraw }
