package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// LoginResult is the outcome of any login-shaped operation. Exactly one of
// Token or PendingCookie is populated: accounts with 2FA confirmed get the
// cookie and no token until the second factor clears.
type LoginResult struct {
	User          *model.User
	Token         string
	ExpiresAt     time.Time
	SessionID     string
	TwoFaRequired bool
	PendingCookie string
}

// ClientInfo carries per-request device metadata into the session ledger.
type ClientInfo struct {
	IP         string
	UserAgent  string
	DeviceType string
}

// AuthService wires the credential, token, session, two-factor and
// verification services into the login flows the API exposes.
type AuthService struct {
	users        *UserService
	tokens       *TokenService
	sessions     *SessionService
	twoFactor    *TwoFactorService
	pending      *PendingTwoFaService
	verification *VerificationService
	google       IdentityProvider
}

func NewAuthService(
	users *UserService,
	tokens *TokenService,
	sessions *SessionService,
	twoFactor *TwoFactorService,
	pending *PendingTwoFaService,
	verification *VerificationService,
	google IdentityProvider,
) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		sessions:     sessions,
		twoFactor:    twoFactor,
		pending:      pending,
		verification: verification,
		google:       google,
	}
}

// Register creates the account and queues the verification mail. A mail
// failure does not fail registration; the user can ask for a resend.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "service", "Register")

	user, err := s.users.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.verification.SendVerificationEmail(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to queue verification mail after registration").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	return user, nil
}

// Login checks the password and either finishes the login or, for accounts
// with 2FA confirmed, parks it behind the pending cookie.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error) {
	ctx = ctxutil.NewContext(ctx, "service", "Login")

	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if user.IsTwoFactorEnabled() {
		cookie, err := s.pending.Issue(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		logger.InfoWithContext(ctx, "Login paused for second factor").
			Uint("user_id", user.ID).
			Log()
		return &LoginResult{User: user, TwoFaRequired: true, PendingCookie: cookie}, nil
	}

	return s.finishLogin(ctx, user, client)
}

// LoginWithTwoFa completes a pending login with a TOTP code.
func (s *AuthService) LoginWithTwoFa(ctx context.Context, cookieValue, code string, client ClientInfo) (*LoginResult, error) {
	ctx = ctxutil.NewContext(ctx, "service", "LoginWithTwoFa")

	user, err := s.resumePending(ctx, cookieValue)
	if err != nil {
		return nil, err
	}

	if err := s.twoFactor.VerifyCode(ctx, user, code); err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, user, client)
}

// LoginWithRecoveryCode completes a pending login by consuming a single-use
// recovery code.
func (s *AuthService) LoginWithRecoveryCode(ctx context.Context, cookieValue, code string, client ClientInfo) (*LoginResult, error) {
	ctx = ctxutil.NewContext(ctx, "service", "LoginWithRecoveryCode")

	user, err := s.resumePending(ctx, cookieValue)
	if err != nil {
		return nil, err
	}

	if err := s.twoFactor.VerifyRecoveryCode(ctx, user, code); err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, user, client)
}

// Logout deletes the session recorded for the presented token, then revokes
// the token itself. Both are idempotent.
func (s *AuthService) Logout(ctx context.Context, token *model.AccessToken) error {
	ctx = ctxutil.NewContext(ctx, "service", "Logout")

	if err := s.sessions.DeleteByToken(ctx, token.ID); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, token.ID); err != nil {
		return err
	}

	logger.InfoWithContext(ctx, "Logged out").
		Uint("token_id", token.ID).
		Log()

	return nil
}

// GoogleLogin resolves the provider token and signs the matching account in,
// creating it on first contact. Accounts created this way are born verified
// because the provider vouches for the address. No session row is recorded
// for provider logins.
func (s *AuthService) GoogleLogin(ctx context.Context, providerToken string) (*LoginResult, error) {
	ctx = ctxutil.NewContext(ctx, "service", "GoogleLogin")

	identity, err := s.google.UserFromToken(ctx, providerToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.users.GetByGoogleID(ctx, identity.ExternalID)
	if errors.Is(err, ErrNotFound) {
		// Not linked yet: fall back to the address and link, or create.
		user, err = s.users.users.GetByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			user.GoogleID = identity.ExternalID
			if err := s.users.users.Update(ctx, user); err != nil {
				return nil, apperrors.WrapError(apperrors.ErrInternal, err)
			}
		case errors.Is(err, ErrNotFound):
			user, err = s.createGoogleUser(ctx, identity)
			if err != nil {
				return nil, err
			}
		default:
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	} else if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	plaintext, token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if extended, err := s.tokens.ExtendLatest(ctx, user.ID); err == nil {
		token = extended
	}

	logger.InfoWithContext(ctx, "Google login succeeded").
		Uint("user_id", user.ID).
		Log()

	return &LoginResult{User: user, Token: plaintext, ExpiresAt: token.ExpiresAt}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, identity *ExternalIdentity) (*model.User, error) {
	username := identity.Name
	if username == "" {
		username, _, _ = strings.Cut(identity.Email, "@")
	}
	if len(username) > constants.MaxUsernameLength {
		username = username[:constants.MaxUsernameLength]
	}

	hash, err := hashPassword(randomAlphanumeric(32))
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := time.Now()
	user := &model.User{
		Username:        username,
		Email:           identity.Email,
		Password:        hash,
		Role:            constants.DefaultRole,
		GoogleID:        identity.ExternalID,
		EmailVerifiedAt: &now,
	}
	if err := s.users.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return user, nil
}

func (s *AuthService) resumePending(ctx context.Context, cookieValue string) (*model.User, error) {
	state, err := s.pending.Decode(ctx, cookieValue)
	if err != nil {
		return nil, err
	}
	if !state.TwoFaRequired {
		return nil, apperrors.ErrTwoFaNotRequired
	}

	user, err := s.users.users.GetByEmail(ctx, state.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return user, nil
}

func (s *AuthService) finishLogin(ctx context.Context, user *model.User, client ClientInfo) (*LoginResult, error) {
	plaintext, token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.Record(ctx, user, client.IP, client.UserAgent, client.DeviceType, plaintext, token.ID, token.ExpiresAt)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Login succeeded").
		Uint("user_id", user.ID).
		Uint("token_id", token.ID).
		Log()

	return &LoginResult{
		User:      user,
		Token:     plaintext,
		ExpiresAt: token.ExpiresAt,
		SessionID: sessionID,
	}, nil
}
