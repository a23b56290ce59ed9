// Package ctxutil provides shared context key accessors.
//
// The caller identity and the per-request best-page cache flow through the
// request context. Both the server middleware and the people service read
// them via this package, so neither imports the other.
package ctxutil

import (
	"context"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

type contextKey string

const (
	keyIdentity  contextKey = "identity"
	keyBestPages contextKey = "best_pages"
)

// WithIdentity returns a new context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, keyIdentity, id)
}

// IdentityFromContext extracts the caller identity. Nil means anonymous.
func IdentityFromContext(ctx context.Context) *model.Identity {
	if v, ok := ctx.Value(keyIdentity).(*model.Identity); ok {
		return v
	}
	return nil
}

// BestPages caches resolved group-to-page lookups for the life of one
// request. Keyed by group ID. Not safe for concurrent use; a single request
// task owns it.
type BestPages map[string]model.PageRef

// WithBestPages returns a new context carrying a fresh best-page cache.
func WithBestPages(ctx context.Context) context.Context {
	return context.WithValue(ctx, keyBestPages, BestPages{})
}

// BestPagesFromContext extracts the request's best-page cache. Nil means no
// cache was installed and lookups are uncached.
func BestPagesFromContext(ctx context.Context) BestPages {
	if v, ok := ctx.Value(keyBestPages).(BestPages); ok {
		return v
	}
	return nil
}
