// Package actions routes scheduled action types to their handlers. The
// scheduler stays decoupled from what an action actually does; handlers
// register by action type and decode their own behavior.
package actions

import (
	"context"
	"sort"
	"sync"

	"github.com/loopwork/actiond/errors"
)

// Handler executes one action type
type Handler interface {
	// Execute runs the action and returns a short result summary.
	// Handlers must honor context cancellation.
	Execute(ctx context.Context) (string, error)

	// Name returns the action type this handler serves
	Name() string
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc struct {
	ActionType string
	Fn         func(ctx context.Context) (string, error)
}

func (h HandlerFunc) Execute(ctx context.Context) (string, error) { return h.Fn(ctx) }
func (h HandlerFunc) Name() string                                { return h.ActionType }

// Registry maps action types to handlers. It implements the scheduler's
// ActionExecutor interface, so a registry is handed directly to the
// scheduler. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under its action type, replacing any existing
// handler for that type
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Has reports whether a handler is registered for the action type
func (r *Registry) Has(actionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[actionType]
	return ok
}

// Names returns all registered action types, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute dispatches to the registered handler for the action type.
// An unregistered action type fails the execution, which the scheduler
// records like any other action failure.
func (r *Registry) Execute(ctx context.Context, actionType string) (string, error) {
	r.mu.RLock()
	h, ok := r.handlers[actionType]
	r.mu.RUnlock()

	if !ok {
		return "", errors.Newf("no handler registered for action type %q", actionType)
	}
	return h.Execute(ctx)
}
