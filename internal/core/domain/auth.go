package domain

// Verification is the outcome of checking an inbound credential.
// An absent, malformed, expired or forged token yields Valid=false.
type Verification struct {
	IdentityID string
	Valid      bool
}

// AuthContext is the per-call authorization state. It is built once per
// inbound call and passed by value; its fields cannot be changed afterwards.
type AuthContext struct {
	identityID    string
	authenticated bool
}

// Anonymous returns the context of an unauthenticated caller.
func Anonymous() AuthContext {
	return AuthContext{}
}

// Authenticated returns the context of a caller proven to be identityID.
func Authenticated(identityID string) AuthContext {
	if identityID == "" {
		return AuthContext{}
	}
	return AuthContext{identityID: identityID, authenticated: true}
}

// NewAuthContext derives the context from a credential verification.
func NewAuthContext(v Verification) AuthContext {
	if !v.Valid {
		return Anonymous()
	}
	return Authenticated(v.IdentityID)
}

func (a AuthContext) IsAuthenticated() bool {
	return a.authenticated
}

// RequireAuthenticated fails with ErrNotAuthenticated for anonymous callers.
func (a AuthContext) RequireAuthenticated() error {
	if !a.authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// IdentityID returns the caller's identity. It is empty unless
// RequireAuthenticated succeeds.
func (a AuthContext) IdentityID() string {
	return a.identityID
}
