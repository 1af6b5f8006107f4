package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
)

// AuthService implements registration, login and profile operations.
type AuthService struct {
	repo     ports.IdentityRepository
	tokens   ports.TokenIssuer
	log      zerolog.Logger
	hashCost int
	now      func() time.Time

	// dummyHash is compared against on unknown emails so both login failure
	// paths cost one bcrypt comparison.
	dummyHash func() []byte
}

func NewAuthService(repo ports.IdentityRepository, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	s := &AuthService{
		repo:     repo,
		tokens:   tokens,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.dummyHash = sync.OnceValue(func() []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), s.hashCost)
		return h
	})
	return s
}

// Signup registers a new identity. A taken email yields domain.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, _ domain.AuthContext, in ports.SignupInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := s.now()
	user, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail identically with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, _ domain.AuthContext, in ports.LoginInput) (*ports.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(in.Password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}
	return &ports.LoginResult{Token: token, UserID: user.ID}, nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, ac domain.AuthContext, _ ports.MeInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, ac.IdentityID())
	if err != nil {
		// A valid token for an identity that no longer resolves proves nothing.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's credential hash after checking the
// current password.
func (s *AuthService) ChangePassword(ctx context.Context, ac domain.AuthContext, in ports.ChangePasswordInput) (*domain.User, error) {
	user, err := s.Me(ctx, ac, ports.MeInput{})
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("change password: hash: %w", err)
	}
	now := s.now()
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hash), now); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	user.PasswordHash = string(hash)
	user.UpdatedAt = now
	return user, nil
}
