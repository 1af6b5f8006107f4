package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/socialfeed/gateway/internal/core/domain"
)

type echoInput struct {
	ID   string `json:"id"   validate:"required"`
	Text string `json:"text" validate:"omitempty,min=5"`
}

func (in *echoInput) Normalize() {
	in.Text = strings.TrimSpace(in.Text)
}

type echoOutput struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Caller string `json:"caller"`
}

func echoHandler(calls *int) HandlerFunc[echoInput, echoOutput] {
	return func(_ context.Context, ac domain.AuthContext, in echoInput) (echoOutput, error) {
		*calls++
		return echoOutput{ID: in.ID, Text: in.Text, Caller: ac.IdentityID()}, nil
	}
}

func ownerOf(owners map[string]string) OwnerFunc[echoInput] {
	return func(_ context.Context, in echoInput) (string, error) {
		owner, ok := owners[in.ID]
		if !ok {
			return "", domain.ErrNotFound
		}
		return owner, nil
	}
}

func TestOp_Policies(t *testing.T) {
	owners := map[string]string{"p1": "alice"}
	alice := domain.Authenticated("alice")
	bob := domain.Authenticated("bob")
	anon := domain.Anonymous()

	tests := []struct {
		name    string
		policy  Policy
		ac      domain.AuthContext
		id      string
		wantErr error
	}{
		{"public anonymous", Public, anon, "p1", nil},
		{"authenticated anonymous", Authenticated, anon, "p1", domain.ErrNotAuthenticated},
		{"authenticated caller", Authenticated, bob, "p1", nil},
		{"owner anonymous", Owner, anon, "p1", domain.ErrNotAuthenticated},
		{"owner other caller", Owner, bob, "p1", domain.ErrForbidden},
		{"owner creator", Owner, alice, "p1", nil},
		{"owner missing target", Owner, alice, "nope", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := &Op[echoInput, echoOutput]{
				Name: "echo", Kind: Mutation, Policy: tt.policy,
				Owner:  ownerOf(owners),
				Handle: echoHandler(&calls),
			}
			_, err := op.Call(context.Background(), tt.ac, echoInput{ID: tt.id})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if wantCalls := map[bool]int{true: 1, false: 0}[tt.wantErr == nil]; calls != wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, wantCalls)
			}
		})
	}
}

func TestOp_ValidatesAfterNormalizing(t *testing.T) {
	calls := 0
	op := &Op[echoInput, echoOutput]{Name: "echo", Kind: Query, Policy: Public, Handle: echoHandler(&calls)}

	_, err := op.Call(context.Background(), domain.Anonymous(), echoInput{ID: "x", Text: "  abc   "})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "text" {
		t.Errorf("fields = %+v", ve.Fields)
	}
	if calls != 0 {
		t.Error("handler ran on invalid input")
	}

	out, err := op.Call(context.Background(), domain.Anonymous(), echoInput{ID: "x", Text: "  hello  "})
	if err != nil || out.Text != "hello" {
		t.Errorf("out = %+v, err = %v", out, err)
	}
}

func TestRegistry_RegisterRejectsInvalidEntries(t *testing.T) {
	calls := 0
	good := &Op[echoInput, echoOutput]{Name: "good", Kind: Query, Policy: Public, Handle: echoHandler(&calls)}

	tests := []struct {
		name string
		op   *Op[echoInput, echoOutput]
		want string
	}{
		{"no name", &Op[echoInput, echoOutput]{Kind: Query, Policy: Public, Handle: echoHandler(&calls)}, "empty name"},
		{"no kind", &Op[echoInput, echoOutput]{Name: "a", Policy: Public, Handle: echoHandler(&calls)}, "unknown kind"},
		{"no policy", &Op[echoInput, echoOutput]{Name: "a", Kind: Query, Handle: echoHandler(&calls)}, "undeclared policy"},
		{"owner without loader", &Op[echoInput, echoOutput]{Name: "a", Kind: Mutation, Policy: Owner, Handle: echoHandler(&calls)}, "owner loader"},
		{"no handler", &Op[echoInput, echoOutput]{Name: "a", Kind: Query, Policy: Public}, "no handler"},
		{"duplicate", &Op[echoInput, echoOutput]{Name: "good", Kind: Query, Policy: Public, Handle: echoHandler(&calls)}, "registered twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(good, tt.op)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if len(r.Descriptors()) != 0 {
				t.Error("a rejected registration must add nothing")
			}
		})
	}
}

func TestRegistry_Execute(t *testing.T) {
	calls := 0
	r := NewRegistry()
	err := r.Register(
		&Op[echoInput, echoOutput]{Name: "echo", Kind: Query, Policy: Authenticated, Handle: echoHandler(&calls)},
		&Op[echoInput, echoOutput]{Name: "alpha", Kind: Mutation, Policy: Public, Handle: echoHandler(&calls)},
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	ds := r.Descriptors()
	if len(ds) != 2 || ds[0].Name != "alpha" || ds[1].Policy != Authenticated {
		t.Errorf("descriptors = %+v", ds)
	}

	// Extra fields in the argument record cannot reach the handler.
	out, err := r.Execute(context.Background(), "echo", domain.Authenticated("alice"),
		json.RawMessage(`{"id":"p1","text":"hello","caller":"mallory"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.(echoOutput); got.Caller != "alice" || got.ID != "p1" {
		t.Errorf("out = %+v", got)
	}

	if _, err := r.Execute(context.Background(), "missing", domain.Anonymous(), nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown op err = %v", err)
	}
	if _, err := r.Execute(context.Background(), "echo", domain.Authenticated("a"), json.RawMessage(`[1,2]`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad args err = %v", err)
	}
	if _, err := r.Execute(context.Background(), "echo", domain.Anonymous(), json.RawMessage(`{"id":"p1"}`)); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("anonymous err = %v", err)
	}
}

func TestFailureOf(t *testing.T) {
	f, known := FailureOf(errors.New("boom"))
	if known || f.StatusCode != 500 || f.Message != "internal server error" {
		t.Errorf("unexpected = %+v, %v", f, known)
	}
	f, known = FailureOf(domain.NewValidationError("page", "page must be a number"))
	if !known || f.StatusCode != 422 || len(f.Details) != 1 {
		t.Errorf("validation = %+v, %v", f, known)
	}
	if got := Outcome(domain.ErrForbidden); got != "forbidden" {
		t.Errorf("Outcome = %q", got)
	}
}
