package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yoyda/auth-service/internal/errors"
)

func newTestUserService() (*UserService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewUserService(repo), repo
}

func registerVerified(t *testing.T, svc *UserService, username, email, password string) uint {
	t.Helper()
	ctx := context.Background()

	user, err := svc.Register(ctx, username, email, password)
	require.NoError(t, err)
	require.NoError(t, svc.MarkEmailVerified(ctx, user))
	return user.ID
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", user.Password)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.Equal(t, "user", user.Role)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "alice@x.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)

	_, err = svc.Register(ctx, "alice", "other@x.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrUsernameExists)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	registerVerified(t, svc, "alice", "alice@x.com", "secret1")

	user, err := svc.Authenticate(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authenticate(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown email is indistinguishable from a bad password.
	_, err = svc.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticateBlocksUnverifiedEmail(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice@x.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrEmailUnverified)
}

func TestUpdatePassword(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()
	id := registerVerified(t, svc, "alice", "alice@x.com", "secret1")

	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdatePassword(ctx, user, "wrong", "newsecret"), apperrors.ErrIncorrectPassword)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, user, "secret1", "secret1"), apperrors.ErrPasswordUnchanged)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, user, "secret1", "tiny"), apperrors.ErrInvalidInput)

	require.NoError(t, svc.UpdatePassword(ctx, user, "secret1", "newsecret"))

	_, err = svc.Authenticate(ctx, "alice@x.com", "newsecret")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice@x.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestMarkEmailVerifiedTwice(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.MarkEmailVerified(ctx, user))
	assert.ErrorIs(t, svc.MarkEmailVerified(ctx, user), apperrors.ErrAlreadyVerified)
}
