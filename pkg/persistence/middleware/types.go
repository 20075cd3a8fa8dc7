// Package middleware wraps a StateStore with extra behavior at rest.
package middleware

import (
	"context"

	"github.com/aretw0/paddock/pkg/ports"
)

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain wraps store so that the first middleware is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ping forwards a health check to next when it supports one.
func ping(ctx context.Context, next ports.StateStore) error {
	if p, ok := next.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
