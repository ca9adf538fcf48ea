package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/pkg/crypto"
)

var recoveryCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{10}-[A-Za-z0-9]{10}$`)

func newTestTwoFactorService(t *testing.T) (*TwoFactorService, *memUserRepo) {
	t.Helper()
	codec, err := crypto.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	users := newMemUserRepo()
	return NewTwoFactorService(users, codec, "yoyda"), users
}

func seedTwoFaUser(t *testing.T, users *memUserRepo, password string) *model.User {
	t.Helper()
	hash, err := hashPassword(password)
	require.NoError(t, err)
	now := time.Now()
	user := &model.User{
		Username:        "alice",
		Email:           "alice@x.com",
		Password:        hash,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// enableTwoFa runs the full setup and activation for a user and returns the
// plaintext secret and the initial recovery codes.
func enableTwoFa(t *testing.T, svc *TwoFactorService, user *model.User, password string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := svc.BeginSetup(ctx, user, password)
	require.NoError(t, err)
	require.False(t, setup.AlreadyEnabled)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	codes, err := svc.Activate(ctx, user, code)
	require.NoError(t, err)
	return setup.Secret, codes
}

func TestBeginSetup(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	ctx := context.Background()

	_, err := svc.BeginSetup(ctx, user, "wrong")
	assert.ErrorIs(t, err, apperrors.ErrIncorrectPassword)

	setup, err := svc.BeginSetup(ctx, user, "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, setup.ProvisioningURI, "yoyda")

	// Stored encrypted, never in the clear.
	assert.NotEmpty(t, user.TwoFactorSecret)
	assert.NotEqual(t, setup.Secret, user.TwoFactorSecret)
	assert.Nil(t, user.TwoFactorConfirmedAt)
	assert.False(t, user.IsTwoFactorEnabled())
}

func TestBeginSetupWhenAlreadyEnabled(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	enableTwoFa(t, svc, user, "secret1")

	setup, err := svc.BeginSetup(context.Background(), user, "secret1")
	require.NoError(t, err)
	assert.True(t, setup.AlreadyEnabled)
	// The confirmed state is untouched.
	assert.True(t, user.IsTwoFactorEnabled())
}

func TestRestartingSetupResetsConfirmation(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	ctx := context.Background()

	_, err := svc.BeginSetup(ctx, user, "secret1")
	require.NoError(t, err)
	firstSecret := user.TwoFactorSecret

	_, err = svc.BeginSetup(ctx, user, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, firstSecret, user.TwoFactorSecret)
	assert.Nil(t, user.TwoFactorConfirmedAt)
}

func TestActivate(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	ctx := context.Background()

	// No setup yet.
	_, err := svc.Activate(ctx, user, "123456")
	assert.ErrorIs(t, err, apperrors.ErrTwoFaNotSetUp)

	setup, err := svc.BeginSetup(ctx, user, "secret1")
	require.NoError(t, err)

	_, err = svc.Activate(ctx, user, "000000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTwoFaCode)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	codes, err := svc.Activate(ctx, user, code)
	require.NoError(t, err)
	require.Len(t, codes, 8)
	for _, c := range codes {
		assert.Regexp(t, recoveryCodePattern, c)
	}
	assert.True(t, user.IsTwoFactorEnabled())

	_, err = svc.Activate(ctx, user, code)
	assert.ErrorIs(t, err, apperrors.ErrTwoFaAlreadyActive)
}

func TestVerifyCode(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	secret, _ := enableTwoFa(t, svc, user, "secret1")
	ctx := context.Background()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyCode(ctx, user, code))

	assert.ErrorIs(t, svc.VerifyCode(ctx, user, "000000"), apperrors.ErrInvalidTwoFaCode)
}

func TestVerifyCodeRequiresEnabled(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")

	err := svc.VerifyCode(context.Background(), user, "123456")
	assert.ErrorIs(t, err, apperrors.ErrTwoFaNotEnabled)
}

func TestRecoveryCodeIsSingleUse(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	_, codes := enableTwoFa(t, svc, user, "secret1")
	ctx := context.Background()

	used := codes[3]
	require.NoError(t, svc.VerifyRecoveryCode(ctx, user, used))

	// The consumed code is gone, replaced in place; the pool stays at 8.
	assert.ErrorIs(t, svc.VerifyRecoveryCode(ctx, user, used), apperrors.ErrInvalidRecoveryCode)

	remaining, err := svc.ShowRecoveryCodes(ctx, user)
	require.NoError(t, err)
	require.Len(t, remaining, 8)
	assert.NotContains(t, remaining, used)

	// Every other original code is still valid in the stored pool.
	for i, c := range codes {
		if i == 3 {
			continue
		}
		assert.Contains(t, remaining, c)
	}
}

func TestVerifyRecoveryCodeUnknown(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	enableTwoFa(t, svc, user, "secret1")

	err := svc.VerifyRecoveryCode(context.Background(), user, "aaaaaaaaaa-bbbbbbbbbb")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecoveryCode)
}

func TestShowRecoveryCodesRequiresEnabled(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")

	_, err := svc.ShowRecoveryCodes(context.Background(), user)
	assert.ErrorIs(t, err, apperrors.ErrTwoFaNotEnabled)
}

func TestRegenerateRecoveryCodes(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	_, original := enableTwoFa(t, svc, user, "secret1")
	ctx := context.Background()

	fresh, err := svc.RegenerateRecoveryCodes(ctx, user)
	require.NoError(t, err)
	require.Len(t, fresh, 8)

	for _, c := range original {
		assert.NotContains(t, fresh, c)
		assert.ErrorIs(t, svc.VerifyRecoveryCode(ctx, user, c), apperrors.ErrInvalidRecoveryCode)
	}
}

func TestRegenerateRecoveryCodesMidSetup(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	ctx := context.Background()

	// No secret at all: nothing to attach codes to.
	_, err := svc.RegenerateRecoveryCodes(ctx, user)
	assert.ErrorIs(t, err, apperrors.ErrTwoFaNotEnabled)

	// A pending secret is enough; confirmation is not required.
	_, err = svc.BeginSetup(ctx, user, "secret1")
	require.NoError(t, err)
	require.False(t, user.IsTwoFactorEnabled())

	codes, err := svc.RegenerateRecoveryCodes(ctx, user)
	require.NoError(t, err)
	assert.Len(t, codes, 8)
}

func TestDisable(t *testing.T) {
	svc, users := newTestTwoFactorService(t)
	user := seedTwoFaUser(t, users, "secret1")
	ctx := context.Background()

	assert.ErrorIs(t, svc.Disable(ctx, user), apperrors.ErrTwoFaNotEnabled)

	enableTwoFa(t, svc, user, "secret1")
	require.NoError(t, svc.Disable(ctx, user))

	assert.Empty(t, user.TwoFactorSecret)
	assert.Empty(t, user.TwoFactorRecoveryCodes)
	assert.Nil(t, user.TwoFactorConfirmedAt)
	assert.False(t, user.IsTwoFactorEnabled())
}
