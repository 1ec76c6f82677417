package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Message is a job as it travels through the broker.
type Message struct {
	ID     string                     `json:"id"`
	Task   string                     `json:"task"`
	Args   []json.RawMessage          `json:"args"`
	Kwargs map[string]json.RawMessage `json:"kwargs"`
}

// Arg decodes the positional argument at index i into v.
func (m Message) Arg(i int, v any) error {
	if i < 0 || i >= len(m.Args) {
		return fmt.Errorf("task %s: missing argument %d", m.Task, i)
	}
	if err := json.Unmarshal(m.Args[i], v); err != nil {
		return fmt.Errorf("task %s: argument %d: %w", m.Task, i, err)
	}
	return nil
}

// Lookup decodes the positional argument at index i, or the keyword argument
// key when fewer positional arguments were sent. It reports whether a non-null
// value was present.
func (m Message) Lookup(i int, key string, v any) (bool, error) {
	var raw json.RawMessage
	switch {
	case i >= 0 && i < len(m.Args):
		raw = m.Args[i]
	case key != "" && m.Kwargs[key] != nil:
		raw = m.Kwargs[key]
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("task %s: argument %s: %w", m.Task, key, err)
	}
	return true, nil
}

// Handler executes one job and returns a JSON-serialisable result.
type Handler func(ctx context.Context, msg Message) (any, error)

// Registry keeps a mapping from wire task names to their handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds or replaces a handler.
func (r *Registry) Register(name string, handler Handler) {
	if r.handlers == nil {
		r.handlers = map[string]Handler{}
	}
	r.handlers[name] = handler
}

// Resolve returns a handler by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Handler, error) {
	if handler, ok := r.handlers[name]; ok {
		return handler, nil
	}
	return nil, fmt.Errorf("task %s is not registered", name)
}

// Names lists registered task names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
