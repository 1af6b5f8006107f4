// Package resolver executes named business operations. Each operation is a
// typed handler with a declared authorization policy; a call validates its
// argument record, enforces the policy against the caller's AuthContext and
// only then runs the handler.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/pkg/metrics"
)

// Kind distinguishes reads from writes.
type Kind string

const (
	Query    Kind = "query"
	Mutation Kind = "mutation"
)

// Policy is the authorization rule an operation declares.
type Policy int

const (
	// Public operations run for anonymous callers too (signup, login).
	Public Policy = iota + 1
	// Authenticated operations require a valid credential.
	Authenticated
	// Owner operations additionally require the caller to be the creator of
	// the target, as reported by the operation's OwnerFunc.
	Owner
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Owner:
		return "owner"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// OwnerFunc loads the creator id of the target referenced by in.
type OwnerFunc[In any] func(ctx context.Context, in In) (string, error)

// HandlerFunc runs an operation once validation and authorization passed.
type HandlerFunc[In, Out any] func(ctx context.Context, ac domain.AuthContext, in In) (Out, error)

// Op is a typed operation handler.
type Op[In, Out any] struct {
	Name   string
	Kind   Kind
	Policy Policy
	Owner  OwnerFunc[In]
	Handle HandlerFunc[In, Out]
}

// normalizer is implemented by inputs that trim or canonicalise fields
// before validation.
type normalizer interface {
	Normalize()
}

// Call validates in, applies the declared policy for ac and runs the handler.
// Validation failures are reported regardless of authentication state.
func (op *Op[In, Out]) Call(ctx context.Context, ac domain.AuthContext, in In) (out Out, err error) {
	start := time.Now()
	defer func() {
		outcome := Outcome(err)
		metrics.OperationsTotal.WithLabelValues(op.Name, outcome).Inc()
		metrics.OperationDuration.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())
	}()

	if n, ok := any(&in).(normalizer); ok {
		n.Normalize()
	}
	if err = validateInput(in); err != nil {
		return out, err
	}
	if err = op.authorize(ctx, ac, in); err != nil {
		return out, err
	}
	return op.Handle(ctx, ac, in)
}

func (op *Op[In, Out]) authorize(ctx context.Context, ac domain.AuthContext, in In) error {
	switch op.Policy {
	case Public:
		return nil
	case Authenticated:
		return ac.RequireAuthenticated()
	case Owner:
		if err := ac.RequireAuthenticated(); err != nil {
			return err
		}
		creatorID, err := op.Owner(ctx, in)
		if err != nil {
			return err
		}
		if creatorID != ac.IdentityID() {
			return domain.ErrForbidden
		}
		return nil
	default:
		return fmt.Errorf("operation %q: undeclared policy %s", op.Name, op.Policy)
	}
}

// Descriptor reports the static shape of the operation.
func (op *Op[In, Out]) Descriptor() Descriptor {
	return Descriptor{
		Name:   op.Name,
		Kind:   op.Kind,
		Policy: op.Policy,
		Input:  reflect.TypeOf((*In)(nil)).Elem(),
		Output: reflect.TypeOf((*Out)(nil)).Elem(),
	}
}

func (op *Op[In, Out]) check() error {
	if op.Name == "" {
		return fmt.Errorf("operation with empty name")
	}
	if op.Kind != Query && op.Kind != Mutation {
		return fmt.Errorf("operation %q: unknown kind %q", op.Name, op.Kind)
	}
	if op.Handle == nil {
		return fmt.Errorf("operation %q: no handler", op.Name)
	}
	switch op.Policy {
	case Public, Authenticated:
	case Owner:
		if op.Owner == nil {
			return fmt.Errorf("operation %q: owner policy without owner loader", op.Name)
		}
	default:
		return fmt.Errorf("operation %q: undeclared policy %s", op.Name, op.Policy)
	}
	return nil
}

// invoke decodes a raw argument record into In and calls the operation.
func (op *Op[In, Out]) invoke(ctx context.Context, ac domain.AuthContext, raw json.RawMessage) (any, error) {
	var in In
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, domain.NewValidationError("arguments", "arguments must be a JSON object matching the operation input")
		}
	}
	return op.Call(ctx, ac, in)
}
