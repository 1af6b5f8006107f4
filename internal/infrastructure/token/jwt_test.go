package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialfeed/gateway/internal/core/domain"
)

var alice = &domain.User{ID: "64b000000000000000000001", Email: "alice@example.com"}

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, err := m.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	v := m.Verify(signed)
	if !v.Valid {
		t.Fatalf("expected valid token")
	}
	if v.IdentityID != alice.ID {
		t.Fatalf("expected identity %q, got %q", alice.ID, v.IdentityID)
	}
}

func TestManager_VerifyHeader(t *testing.T) {
	m := NewManager("secret", time.Hour)
	signed, _ := m.Issue(alice)

	cases := []struct {
		name   string
		header string
		valid  bool
	}{
		{"bearer", "Bearer " + signed, true},
		{"lowercase scheme", "bearer " + signed, true},
		{"absent", "", false},
		{"scheme only", "Bearer", false},
		{"wrong scheme", "Token " + signed, false},
		{"garbage", "Bearer not-a-token", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.VerifyHeader(tc.header); got.Valid != tc.valid {
				t.Fatalf("VerifyHeader(%q).Valid = %v, want %v", tc.header, got.Valid, tc.valid)
			}
		})
	}
}

func TestManager_Verify_Expired(t *testing.T) {
	m := NewManager("secret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	signed, err := m.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = time.Now
	if v := m.Verify(signed); v.Valid {
		t.Fatalf("expected expired token to be invalid")
	}
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	signed, _ := NewManager("other", time.Hour).Issue(alice)

	if v := NewManager("secret", time.Hour).Verify(signed); v.Valid {
		t.Fatalf("expected token signed with another secret to be invalid")
	}
}

func TestManager_Verify_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   alice.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if v := NewManager("secret", time.Hour).Verify(signed); v.Valid {
		t.Fatalf("expected HS512 token to be rejected")
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if v := NewManager("secret", time.Hour).Verify(unsigned); v.Valid {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestManager_Verify_RequiresExpiryAndSubject(t *testing.T) {
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: alice.ID}).SignedString([]byte("secret"))
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))

	m := NewManager("secret", time.Hour)
	if m.Verify(noExp).Valid {
		t.Errorf("expected token without exp to be invalid")
	}
	if m.Verify(noSub).Valid {
		t.Errorf("expected token without sub to be invalid")
	}
}
