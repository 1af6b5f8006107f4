package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// Descriptor is the static description of a registered operation.
type Descriptor struct {
	Name   string
	Kind   Kind
	Policy Policy
	Input  reflect.Type
	Output reflect.Type
}

// Entry is implemented by *Op.
type Entry interface {
	Descriptor() Descriptor
	check() error
	invoke(ctx context.Context, ac domain.AuthContext, raw json.RawMessage) (any, error)
}

// Registry maps operation names to handlers. Populate it at startup; it is
// read-only (and safe for concurrent Execute calls) afterwards.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds operations after checking each one declares a name, kind,
// policy and, for owner-gated operations, an owner loader. Nothing is added
// when any entry is rejected.
func (r *Registry) Register(entries ...Entry) error {
	var errs []error
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := e.check(); err != nil {
			errs = append(errs, err)
			continue
		}
		name := e.Descriptor().Name
		if _, dup := r.entries[name]; dup {
			errs = append(errs, fmt.Errorf("operation %q registered twice", name))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("operation %q registered twice", name))
			continue
		}
		seen[name] = struct{}{}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, e := range entries {
		r.entries[e.Descriptor().Name] = e
	}
	return nil
}

// Execute runs the named operation with an already-decoded JSON argument
// record. Unknown names yield domain.ErrNotFound.
func (r *Registry) Execute(ctx context.Context, name string, ac domain.AuthContext, args json.RawMessage) (any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("operation %q: %w", name, domain.ErrNotFound)
	}
	return e.invoke(ctx, ac, args)
}

// Descriptors lists the registered operations sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
