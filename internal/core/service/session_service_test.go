package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

const testSecret = "test-secret-key-with-enough-length"

func testAccount() *domain.Account {
	acct := &domain.Account{ID: "acct-1", Username: "alice", Enabled: true}
	acct.AddRole(domain.Role{ID: "r1", Name: domain.RoleAdmin})
	return acct
}

func TestSessionService_IssueAndParse(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour, newStubDenylist())

	token, expiresAt, err := svc.Issue(testAccount())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	p, err := svc.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", p.AccountID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, []string{domain.RoleAdmin}, p.Roles)
	assert.NotEmpty(t, p.TokenID)
}

func TestSessionService_DefaultTTL(t *testing.T) {
	svc := NewSessionService(testSecret, 0, newStubDenylist())
	assert.Equal(t, defaultSessionTTL, svc.ttl)
}

func TestSessionService_ParseRejects(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour, newStubDenylist())

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionService("another-secret", time.Hour, newStubDenylist())
		token, _, err := other.Issue(testAccount())
		require.NoError(t, err)

		_, err = svc.Parse(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewSessionService(testSecret, time.Minute, newStubDenylist())
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.Issue(testAccount())
		require.NoError(t, err)

		_, err = svc.Parse(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "acct-1", "jti": "x", "exp": time.Now().Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Parse(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "acct-1", "jti": "x"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Parse(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestSessionService_Revoke(t *testing.T) {
	denylist := newStubDenylist()
	svc := NewSessionService(testSecret, time.Hour, denylist)
	ctx := context.Background()

	token, _, err := svc.Issue(testAccount())
	require.NoError(t, err)

	p, err := svc.Parse(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, p))
	ttl, ok := denylist.revoked[p.TokenID]
	require.True(t, ok)
	assert.Greater(t, ttl, 59*time.Minute)

	_, err = svc.Parse(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSessionService_RevokeExpiredIsNoop(t *testing.T) {
	denylist := newStubDenylist()
	svc := NewSessionService(testSecret, time.Hour, denylist)

	err := svc.Revoke(context.Background(), &domain.Principal{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	assert.Empty(t, denylist.revoked)
}

func TestSessionService_DenylistFailure(t *testing.T) {
	denylist := newStubDenylist()
	svc := NewSessionService(testSecret, time.Hour, denylist)

	token, _, err := svc.Issue(testAccount())
	require.NoError(t, err)

	denylist.err = errors.New("redis down")
	_, err = svc.Parse(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}
