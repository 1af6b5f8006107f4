package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialfeed/gateway/internal/core/domain"
)

const defaultTTL = time.Hour

// Claims is the signed claim set of a credential token. The identity id
// travels in the registered "sub" claim.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 credential tokens with a fixed secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewManager returns a Manager. A non-positive ttl falls back to one hour.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	m := &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Issue signs a token for user expiring after the configured horizon.
func (m *Manager) Issue(user *domain.User) (string, error) {
	now := m.now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify checks a raw token. Any failure (empty, malformed, expired, wrong
// algorithm, bad signature, missing subject) yields Valid=false.
func (m *Manager) Verify(raw string) domain.Verification {
	if raw == "" {
		return domain.Verification{}
	}
	var claims Claims
	tkn, err := m.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return domain.Verification{}
	}
	return domain.Verification{IdentityID: claims.Subject, Valid: true}
}

// VerifyHeader extracts the token from an Authorization header value of the
// form "Bearer <token>" and verifies it.
func (m *Manager) VerifyHeader(header string) domain.Verification {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return domain.Verification{}
	}
	return m.Verify(strings.TrimSpace(parts[1]))
}
