// Package permission decides whether a caller may perform an action.
//
// A base policy grants actions from the caller's identity; named hooks
// registered by other packages can then tighten the outcome. Hooks can only
// forbid. An action the base policy denies stays denied no matter what a
// hook returns.
package permission

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// ErrForbidden is returned when the caller may not perform the action.
var ErrForbidden = errors.New("permission: forbidden")

// Response is a hook's verdict on an action.
type Response int

const (
	// Allow leaves the outcome as decided so far.
	Allow Response = iota
	// Forbidden denies the action. Irreversible by later hooks.
	Forbidden
)

// Hook inspects a prospective action and may tighten the outcome.
// Hooks run in registration order; returning Forbidden short-circuits.
type Hook func(ctx context.Context, id *model.Identity, action string) Response

// Service evaluates the base policy plus registered hooks.
type Service struct {
	mu     sync.RWMutex
	hooks  []namedHook
	logger *slog.Logger
}

type namedHook struct {
	name string
	fn   Hook
}

// NewService creates a permission service with no hooks registered.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Register adds a named hook. Registration order is evaluation order.
func (s *Service) Register(name string, fn Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: fn})
}

// Can reports whether the identity may perform the action. A nil identity is
// an anonymous caller. Returns nil when allowed, ErrForbidden otherwise.
//
// Base policy: admins may do anything; an explicit grant for the action
// allows it; view-prefixed actions are open to everyone. Hooks then run in
// order and may only forbid.
func (s *Service) Can(ctx context.Context, id *model.Identity, action string) error {
	if !s.baseAllows(id, action) {
		return ErrForbidden
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()

	for _, h := range hooks {
		if h.fn(ctx, id, action) == Forbidden {
			s.logger.Debug("action forbidden by hook",
				"hook", h.name,
				"action", action,
				"username", usernameOf(id))
			return ErrForbidden
		}
	}
	return nil
}

func (s *Service) baseAllows(id *model.Identity, action string) bool {
	if id.Admin() {
		return true
	}
	if id != nil && id.Has(action) {
		return true
	}
	return strings.HasPrefix(action, "view-")
}

func usernameOf(id *model.Identity) string {
	if id == nil {
		return ""
	}
	return id.Username
}
