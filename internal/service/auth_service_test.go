package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
	"github.com/xxxsen/healthsphere/internal/pkg/jwt"
)

var testSecret = []byte("test-secret")

func newAuthFixture() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewAuthService(users, testSecret, time.Hour), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	user, token, err := svc.Register(context.Background(), "Alice@Example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, token)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	loggedIn, token, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, token)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), "not-an-email", "secret1")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, _, err = svc.Register(context.Background(), "alice@example.com", "short")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "alice@example.com", "secret2")
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	_, _, err := svc.Register(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	svc, _ := newAuthFixture()
	user, _, err := svc.Register(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, me.Email)

	_, err = svc.Me(context.Background(), "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
