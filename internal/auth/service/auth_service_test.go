package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-api/internal/auth/domain"
)

type memUsers struct {
	byID     map[string]*domain.User
	countErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}}
}

func (m *memUsers) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byID)), m.countErr
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	cp := *u
	cp.ID = fmt.Sprintf("u%d", len(m.byID)+1)
	m.byID[cp.ID] = &cp
	return &cp, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func newTestService() (*AuthService, *memUsers) {
	users := newMemUsers()
	svc := NewAuthService(users, NewTokenIssuer("test-secret", time.Hour), nil)
	svc.cost = bcrypt.MinCost
	return svc, users
}

var admin = domain.RegisterRequest{Username: " admin ", Email: "Admin@Example.com", Password: "secret1"}

func TestRegister(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "admin", sess.User.Username)
	assert.Equal(t, "admin@example.com", sess.User.Email)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)
	assert.NotEmpty(t, sess.Token)
	assert.NotEqual(t, "secret1", users.byID[sess.User.ID].PasswordHash)

	_, err = svc.Register(ctx, domain.RegisterRequest{Username: "second", Email: "s@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []domain.RegisterRequest{
		{Username: "", Email: "a@b.co", Password: "secret1"},
		{Username: "a", Email: "not-an-email", Password: "secret1"},
		{Username: "a", Email: "a@b.co", Password: "123"},
	}
	for _, req := range tests {
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, admin)
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "admin", "secret1")
	require.NoError(t, err)

	claims, err := svc.tokens.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()
	sess, err := svc.Register(ctx, admin)
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	delete(users.byID, sess.User.ID)
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	sess, err := svc.Register(ctx, admin)
	require.NoError(t, err)
	id := sess.User.ID

	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "", "newsecret"), domain.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "secret1", "short"), domain.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "wrong", "newsecret"), domain.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, id, "secret1", "newsecret"))
	_, err = svc.Login(ctx, "admin", "newsecret")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "admin", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, users.byID, 1)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("k1", time.Minute)
	u := &domain.User{ID: "u1", Role: domain.RoleAdmin}

	t.Run("round trip", func(t *testing.T) {
		tok, err := issuer.Issue(u)
		require.NoError(t, err)
		claims, err := issuer.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenIssuer("k1", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, err := old.Issue(u)
		require.NoError(t, err)
		_, err = issuer.Parse(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := NewTokenIssuer("k2", time.Minute).Issue(u)
		require.NoError(t, err)
		_, err = issuer.Parse(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
