package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/pkg/crypto"
)

type authFixture struct {
	auth          *AuthService
	users         *UserService
	tokens        *TokenService
	sessions      *SessionService
	twoFactor     *TwoFactorService
	verification  *VerificationService
	mailer        *fakeMailer
	userRepo      *memUserRepo
	tokenRepo     *memTokenRepo
	sessionRepo   *memSessionRepo
	identity      *fakeIdentityProvider
	clientFixture ClientInfo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	codec, err := crypto.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	userRepo := newMemUserRepo()
	tokenRepo := newMemTokenRepo()
	sessionRepo := newMemSessionRepo()
	verificationRepo := newMemVerificationRepo()
	mailer := &fakeMailer{}
	identity := &fakeIdentityProvider{}

	users := NewUserService(userRepo)
	tokens := NewTokenService(tokenRepo, userRepo)
	sessions := NewSessionService(sessionRepo)
	twoFactor := NewTwoFactorService(userRepo, codec, "yoyda")
	pending := NewPendingTwoFaService(codec)
	verification := NewVerificationService(verificationRepo, userRepo, mailer, "https://app.example.com")

	auth := NewAuthService(users, tokens, sessions, twoFactor, pending, verification, identity)

	return &authFixture{
		auth:          auth,
		users:         users,
		tokens:        tokens,
		sessions:      sessions,
		twoFactor:     twoFactor,
		verification:  verification,
		mailer:        mailer,
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		sessionRepo:   sessionRepo,
		identity:      identity,
		clientFixture: ClientInfo{IP: "10.0.0.1", UserAgent: "go-test", DeviceType: "cli"},
	}
}

// registerAndVerify walks the register → emailed token → verify path.
func (f *authFixture) registerAndVerify(t *testing.T, username, email, password string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.auth.Register(ctx, username, email, password)
	require.NoError(t, err)

	msg, ok := f.mailer.last()
	require.True(t, ok)
	_, err = f.verification.VerifyEmail(ctx, msg.Data["token"].(string))
	require.NoError(t, err)
}

func TestRegisterThenLoginRequiresVerification(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	// Login is blocked until the emailed token is consumed.
	_, err = f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	assert.ErrorIs(t, err, apperrors.ErrEmailUnverified)

	msg, ok := f.mailer.last()
	require.True(t, ok)
	_, err = f.verification.VerifyEmail(ctx, msg.Data["token"].(string))
	require.NoError(t, err)

	result, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)
	assert.False(t, result.TwoFaRequired)
	assert.NotEmpty(t, result.Token)

	user, token, err := f.tokens.ResolveBearer(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// The session ledger references the issued token.
	sessions, err := f.sessions.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, token.ID, sessions[0].TokenID)
	assert.Equal(t, "10.0.0.1", sessions[0].IPAddress)
	assert.Equal(t, "cli", sessions[0].DeviceType)
}

func TestRegisterSucceedsWhenMailEnqueueFails(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.fail = errors.New("queue down")

	user, err := f.auth.Register(context.Background(), "alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestLoginWithTwoFaEnabled(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndVerify(t, "alice", "alice@x.com", "secret1")

	user, err := f.users.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	secret, _ := enableTwoFa(t, f.twoFactor, user, "secret1")

	// Password-only login parks behind the pending cookie; no token yet.
	result, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)
	assert.True(t, result.TwoFaRequired)
	assert.Empty(t, result.Token)
	require.NotEmpty(t, result.PendingCookie)

	sessions, err := f.sessions.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Wrong code keeps the gate closed.
	_, err = f.auth.LoginWithTwoFa(ctx, result.PendingCookie, "000000", f.clientFixture)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTwoFaCode)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	completed, err := f.auth.LoginWithTwoFa(ctx, result.PendingCookie, code, f.clientFixture)
	require.NoError(t, err)
	assert.NotEmpty(t, completed.Token)

	_, _, err = f.tokens.ResolveBearer(ctx, completed.Token)
	assert.NoError(t, err)
}

func TestLoginWithRecoveryCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndVerify(t, "alice", "alice@x.com", "secret1")

	user, err := f.users.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	_, codes := enableTwoFa(t, f.twoFactor, user, "secret1")

	result, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)
	require.True(t, result.TwoFaRequired)

	completed, err := f.auth.LoginWithRecoveryCode(ctx, result.PendingCookie, codes[0], f.clientFixture)
	require.NoError(t, err)
	assert.NotEmpty(t, completed.Token)

	// Recovery codes are single use even across fresh pending cookies.
	again, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)
	_, err = f.auth.LoginWithRecoveryCode(ctx, again.PendingCookie, codes[0], f.clientFixture)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecoveryCode)
}

func TestLoginWithTwoFaRejectsBadCookie(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.LoginWithTwoFa(ctx, "", "123456", f.clientFixture)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTwoFaSession)

	_, err = f.auth.LoginWithTwoFa(ctx, "garbage-cookie", "123456", f.clientFixture)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTwoFaSession)
}

func TestExistingTokensUnaffectedByPendingLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndVerify(t, "alice", "alice@x.com", "secret1")

	first, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)

	user, err := f.users.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	enableTwoFa(t, f.twoFactor, user, "secret1")

	// A new login now pends on 2FA, but the earlier token still resolves.
	pending, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)
	assert.True(t, pending.TwoFaRequired)

	_, _, err = f.tokens.ResolveBearer(ctx, first.Token)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndVerify(t, "alice", "alice@x.com", "secret1")

	result, err := f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	require.NoError(t, err)

	user, token, err := f.tokens.ResolveBearer(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, token))

	_, _, err = f.tokens.ResolveBearer(ctx, result.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	sessions, err := f.sessions.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGoogleLoginCreatesVerifiedUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.identity = &ExternalIdentity{ExternalID: "g-123", Email: "carol@x.com", Name: "Carol"}

	result, err := f.auth.GoogleLogin(ctx, "provider-token")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	user, _, err := f.tokens.ResolveBearer(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "g-123", user.GoogleID)
	assert.True(t, user.IsEmailVerified())
	assert.LessOrEqual(t, len(user.Username), 10)
}

func TestGoogleLoginLinksExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndVerify(t, "alice", "alice@x.com", "secret1")
	f.identity.identity = &ExternalIdentity{ExternalID: "g-456", Email: "alice@x.com", Name: "Alice"}

	result, err := f.auth.GoogleLogin(ctx, "provider-token")
	require.NoError(t, err)

	user, _, err := f.tokens.ResolveBearer(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "g-456", user.GoogleID)

	// Password login still works after the link.
	_, err = f.auth.Login(ctx, "alice@x.com", "secret1", f.clientFixture)
	assert.NoError(t, err)
}

func TestGoogleLoginFindsLinkedAccountByGoogleID(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.identity = &ExternalIdentity{ExternalID: "g-789", Email: "dave@x.com", Name: "Dave"}

	first, err := f.auth.GoogleLogin(ctx, "provider-token")
	require.NoError(t, err)

	// The provider-side address changed; the link by google_id still wins
	// and no second account is created.
	f.identity.identity = &ExternalIdentity{ExternalID: "g-789", Email: "dave@elsewhere.com", Name: "Dave"}

	second, err := f.auth.GoogleLogin(ctx, "provider-token")
	require.NoError(t, err)

	firstUser, _, err := f.tokens.ResolveBearer(ctx, first.Token)
	require.NoError(t, err)
	secondUser, _, err := f.tokens.ResolveBearer(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, firstUser.ID, secondUser.ID)
	assert.Equal(t, "dave@x.com", secondUser.Email)
}

func TestGoogleLoginPropagatesProviderRejection(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.err = apperrors.ErrInvalidToken

	_, err := f.auth.GoogleLogin(context.Background(), "bad-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
