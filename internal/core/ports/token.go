package ports

import "github.com/socialfeed/gateway/internal/core/domain"

// CredentialVerifier turns an inbound credential into a verification result.
// It never returns an error; absence of validity is the only signal.
type CredentialVerifier interface {
	Verify(raw string) domain.Verification
	VerifyHeader(header string) domain.Verification
}

// TokenIssuer signs credential tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}
