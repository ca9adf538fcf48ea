package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/pkg/crypto"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// TwoFactorService drives the TOTP lifecycle. The shared secret and the
// recovery codes are encrypted at rest with the application key; a user is
// considered enabled only once the confirmation timestamp is set.
type TwoFactorService struct {
	users  UserRepository
	codec  *crypto.Codec
	issuer string
}

func NewTwoFactorService(users UserRepository, codec *crypto.Codec, issuer string) *TwoFactorService {
	return &TwoFactorService{users: users, codec: codec, issuer: issuer}
}

// TwoFaSetup is the result of BeginSetup.
type TwoFaSetup struct {
	Secret          string
	ProvisioningURI string
	AlreadyEnabled  bool
}

// BeginSetup generates a fresh shared secret after re-confirming the
// password. Restarting setup always clears any previous confirmation, so an
// interrupted activation never leaves a half-trusted secret behind. If 2FA is
// already active the call reports that instead of erroring.
func (s *TwoFactorService) BeginSetup(ctx context.Context, user *model.User, password string) (*TwoFaSetup, error) {
	ctx = ctxutil.NewContext(ctx, "service", "BeginTwoFaSetup")

	if !checkPassword(user.Password, password) {
		return nil, apperrors.ErrIncorrectPassword
	}

	if user.IsTwoFactorEnabled() {
		return &TwoFaSetup{AlreadyEnabled: true}, nil
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	encrypted, err := s.codec.EncryptString(key.Secret())
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.TwoFactorSecret = encrypted
	user.TwoFactorConfirmedAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Two-factor setup started").
		Uint("user_id", user.ID).
		Log()

	return &TwoFaSetup{Secret: key.Secret(), ProvisioningURI: key.URL()}, nil
}

// Activate confirms the pending secret with a live code and mints the first
// batch of recovery codes.
func (s *TwoFactorService) Activate(ctx context.Context, user *model.User, code string) ([]string, error) {
	ctx = ctxutil.NewContext(ctx, "service", "ActivateTwoFa")

	if user.IsTwoFactorEnabled() {
		return nil, apperrors.ErrTwoFaAlreadyActive
	}
	if user.TwoFactorSecret == "" {
		return nil, apperrors.ErrTwoFaNotSetUp
	}

	secret, err := s.codec.DecryptString(user.TwoFactorSecret)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !totp.Validate(code, secret) {
		return nil, apperrors.ErrInvalidTwoFaCode
	}

	codes := generateRecoveryCodes()
	encrypted, err := s.encryptRecoveryCodes(codes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.TwoFactorRecoveryCodes = encrypted
	user.TwoFactorConfirmedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Two-factor activated").
		Uint("user_id", user.ID).
		Log()

	return codes, nil
}

// VerifyCode checks a login-time TOTP code for an enabled user.
func (s *TwoFactorService) VerifyCode(ctx context.Context, user *model.User, code string) error {
	ctx = ctxutil.NewContext(ctx, "service", "VerifyTwoFaCode")

	if !user.IsTwoFactorEnabled() {
		return apperrors.ErrTwoFaNotEnabled
	}

	secret, err := s.codec.DecryptString(user.TwoFactorSecret)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !totp.Validate(code, secret) {
		logger.WarnWithContext(ctx, "Invalid two-factor code").
			Uint("user_id", user.ID).
			Log()
		return apperrors.ErrInvalidTwoFaCode
	}

	return nil
}

// VerifyRecoveryCode consumes a single-use recovery code. The matched code is
// replaced in place with a fresh one, so the pool always holds eight codes.
func (s *TwoFactorService) VerifyRecoveryCode(ctx context.Context, user *model.User, code string) error {
	ctx = ctxutil.NewContext(ctx, "service", "VerifyRecoveryCode")

	if !user.IsTwoFactorEnabled() {
		return apperrors.ErrTwoFaNotEnabled
	}

	codes, err := s.decryptRecoveryCodes(user)
	if err != nil {
		return err
	}

	matched := -1
	for i, candidate := range codes {
		if candidate == code {
			matched = i
			break
		}
	}
	if matched < 0 {
		logger.WarnWithContext(ctx, "Invalid recovery code").
			Uint("user_id", user.ID).
			Log()
		return apperrors.ErrInvalidRecoveryCode
	}

	codes[matched] = newRecoveryCode()
	encrypted, err := s.encryptRecoveryCodes(codes)
	if err != nil {
		return err
	}

	user.TwoFactorRecoveryCodes = encrypted
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Recovery code consumed").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// ShowRecoveryCodes returns the current pool. The bearer token is the only
// gate; no password re-check.
func (s *TwoFactorService) ShowRecoveryCodes(ctx context.Context, user *model.User) ([]string, error) {
	if !user.IsTwoFactorEnabled() {
		return nil, apperrors.ErrTwoFaNotEnabled
	}
	return s.decryptRecoveryCodes(user)
}

// RegenerateRecoveryCodes replaces the whole pool, invalidating every
// previously issued code. A secret is enough; confirmation is not required,
// so codes can be re-minted mid-setup.
func (s *TwoFactorService) RegenerateRecoveryCodes(ctx context.Context, user *model.User) ([]string, error) {
	ctx = ctxutil.NewContext(ctx, "service", "RegenerateRecoveryCodes")

	if user.TwoFactorSecret == "" {
		return nil, apperrors.ErrTwoFaNotEnabled
	}

	codes := generateRecoveryCodes()
	encrypted, err := s.encryptRecoveryCodes(codes)
	if err != nil {
		return nil, err
	}

	user.TwoFactorRecoveryCodes = encrypted
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Recovery codes regenerated").
		Uint("user_id", user.ID).
		Log()

	return codes, nil
}

// Disable clears the secret, recovery codes and confirmation in one write.
func (s *TwoFactorService) Disable(ctx context.Context, user *model.User) error {
	ctx = ctxutil.NewContext(ctx, "service", "DisableTwoFa")

	if user.TwoFactorSecret == "" {
		return apperrors.ErrTwoFaNotEnabled
	}

	user.TwoFactorSecret = ""
	user.TwoFactorRecoveryCodes = ""
	user.TwoFactorConfirmedAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Two-factor disabled").
		Uint("user_id", user.ID).
		Log()

	return nil
}

func (s *TwoFactorService) encryptRecoveryCodes(codes []string) (string, error) {
	raw, err := json.Marshal(codes)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	encrypted, err := s.codec.EncryptString(string(raw))
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return encrypted, nil
}

func (s *TwoFactorService) decryptRecoveryCodes(user *model.User) ([]string, error) {
	if user.TwoFactorRecoveryCodes == "" {
		return nil, apperrors.ErrTwoFaNotEnabled
	}
	raw, err := s.codec.DecryptString(user.TwoFactorRecoveryCodes)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return codes, nil
}

func newRecoveryCode() string {
	return randomAlphanumeric(constants.RecoverySegmentSize) + "-" + randomAlphanumeric(constants.RecoverySegmentSize)
}

func generateRecoveryCodes() []string {
	codes := make([]string, constants.RecoveryCodeCount)
	for i := range codes {
		codes[i] = newRecoveryCode()
	}
	return codes
}
