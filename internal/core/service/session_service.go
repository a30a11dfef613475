package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

const defaultSessionTTL = 8 * time.Hour

type sessionClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// SessionService issues HS256 session tokens carrying the account's roles
// and honours revocations recorded in a TokenDenylist.
type SessionService struct {
	secret   []byte
	ttl      time.Duration
	denylist ports.TokenDenylist
	now      func() time.Time
}

func NewSessionService(secret string, ttl time.Duration, denylist ports.TokenDenylist) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{secret: []byte(secret), ttl: ttl, denylist: denylist, now: time.Now}
}

// Issue signs a new session token for account.
func (s *SessionService) Issue(account *domain.Account) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Username: account.Username,
		Roles:    account.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates token and returns its principal. Invalid, expired and
// revoked tokens yield domain.ErrUnauthenticated.
func (s *SessionService) Parse(ctx context.Context, token string) (*domain.Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: incomplete claims", domain.ErrUnauthenticated)
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", domain.ErrUnauthenticated)
	}

	return &domain.Principal{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Roles:     claims.Roles,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke denies p's token for the rest of its lifetime.
func (s *SessionService) Revoke(ctx context.Context, p *domain.Principal) error {
	if p == nil {
		return errors.New("revoke session: nil principal")
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
