package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/user"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// SignupInput is the data needed to register a user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Service registers users and manages their session tokens.
type Service struct {
	repo     user.Repository
	tokens   *Tokens
	denylist Denylist
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo user.Repository, tokens *Tokens, denylist Denylist, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
		logger:   logger.With("component", "auth"),
	}
}

// Signup creates the user and returns it with a fresh session token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*user.User, string, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &user.User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          NormalizeEmail(in.Email),
		PasswordHash:   hash,
		Favourites:     []user.SavedLocation{},
		RecentSearches: []user.RecentSearchEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user signed up", "user", u.ID)
	return u, token, nil
}

// Login checks the credentials and returns the user with a fresh session token.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.repo.LoadByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, user.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, "", fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes token until its expiry. Tokens that no longer verify need
// no revocation and are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	until, err := expiryOf(claims)
	if err != nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		s.logger.Error("revoking token failed", "user", claims.Subject, "err", err)
		return err
	}
	return nil
}

// Authenticate resolves the user behind token. It returns ErrInvalidToken for
// any unusable token and user.ErrNotFound when the user no longer exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}

	return s.repo.Load(ctx, claims.Subject)
}

// TokenTTL is the session lifetime, used for the cookie max-age.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
