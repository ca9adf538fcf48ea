package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/mail"
	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// MailEnqueuer is the outbound mail boundary. Enqueue failures are logged
// and swallowed by callers; the triggering operation has already succeeded.
type MailEnqueuer interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}

// VerificationService issues and consumes the emailed one-shot tokens for
// email verification and password resets. Tokens are 64 random characters;
// only their SHA-256 digest is stored.
type VerificationService struct {
	verifications VerificationRepository
	users         UserRepository
	mailer        MailEnqueuer
	frontendURL   string
}

func NewVerificationService(verifications VerificationRepository, users UserRepository, mailer MailEnqueuer, frontendURL string) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		users:         users,
		mailer:        mailer,
		frontendURL:   frontendURL,
	}
}

// SendVerificationEmail mints a fresh verification token for the user and
// queues the mail. Any earlier tokens for the user are discarded first.
func (s *VerificationService) SendVerificationEmail(ctx context.Context, user *model.User) error {
	ctx = ctxutil.NewContext(ctx, "service", "SendVerificationEmail")

	if err := s.verifications.DeleteEmailTokensByUser(ctx, user.ID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	raw := randomAlphanumeric(constants.RawTokenLength)
	token := &model.EmailVerificationToken{
		UserID:    user.ID,
		TokenHash: sha256Hex(raw),
		ExpiresAt: time.Now().Add(constants.EmailVerificationTTL),
	}
	if err := s.verifications.CreateEmailToken(ctx, token); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.enqueue(ctx, mail.Message{
		To:       user.Email,
		Template: mail.TemplateVerifyEmail,
		Data: map[string]any{
			"username":     user.Username,
			"token":        raw,
			"frontend_url": s.frontendURL,
		},
	})

	return nil
}

// VerifyEmail consumes an emailed verification token. Lookup is by exact
// digest, so a presented token can only ever match the row it was minted
// for. Expired and unknown tokens are indistinguishable to the caller.
func (s *VerificationService) VerifyEmail(ctx context.Context, rawToken string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "service", "VerifyEmail")

	token, err := s.verifications.GetEmailTokenByHash(ctx, sha256Hex(rawToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if time.Now().After(token.ExpiresAt) {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.IsEmailVerified() {
		return nil, apperrors.ErrAlreadyVerified
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.verifications.DeleteEmailTokensByUser(ctx, user.ID); err != nil {
		logger.WarnWithContext(ctx, "Failed to clean up verification tokens").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Email verified").
		Uint("user_id", user.ID).
		Log()

	return user, nil
}

// ResendVerification re-issues the verification mail for an unverified
// account.
func (s *VerificationService) ResendVerification(ctx context.Context, email string) error {
	ctx = ctxutil.NewContext(ctx, "service", "ResendVerification")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.IsEmailVerified() {
		return apperrors.ErrAlreadyVerified
	}

	return s.SendVerificationEmail(ctx, user)
}

// SendResetPasswordInstruction mints a reset token for the address and
// queues the mail. A repeat request replaces the outstanding token.
func (s *VerificationService) SendResetPasswordInstruction(ctx context.Context, email string) error {
	ctx = ctxutil.NewContext(ctx, "service", "SendResetPasswordInstruction")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	raw := randomAlphanumeric(constants.RawTokenLength)
	reset := &model.PasswordResetToken{
		Email:     user.Email,
		TokenHash: sha256Hex(raw),
		CreatedAt: time.Now(),
	}
	if err := s.verifications.UpsertPasswordReset(ctx, reset); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.enqueue(ctx, mail.Message{
		To:       user.Email,
		Template: mail.TemplateResetPassword,
		Data: map[string]any{
			"username":     user.Username,
			"token":        raw,
			"email":        user.Email,
			"frontend_url": s.frontendURL,
		},
	})

	return nil
}

// ResetPassword consumes a reset token and overwrites the password. The
// token must belong to the address, match the stored digest, and be younger
// than one hour. Existing access tokens are left untouched.
func (s *VerificationService) ResetPassword(ctx context.Context, email, rawToken, newPassword string) error {
	ctx = ctxutil.NewContext(ctx, "service", "ResetPassword")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	reset, err := s.verifications.GetPasswordResetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	digest := sha256Hex(rawToken)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(reset.TokenHash)) != 1 {
		return apperrors.ErrInvalidToken
	}
	if time.Since(reset.CreatedAt) > constants.PasswordResetTTL {
		return apperrors.ErrInvalidToken
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.Password = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.verifications.DeletePasswordReset(ctx, email); err != nil {
		logger.WarnWithContext(ctx, "Failed to clean up reset token").
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Password reset completed").
		Uint("user_id", user.ID).
		Log()

	return nil
}

func (s *VerificationService) enqueue(ctx context.Context, msg mail.Message) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Enqueue(ctx, msg); err != nil {
		logger.ErrorWithContext(ctx, "Mail enqueue failed, continuing").
			String("template", msg.Template).
			Err(err).
			Log()
	}
}
