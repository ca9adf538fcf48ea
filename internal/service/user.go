package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// UserService owns credential checks and the user lifecycle around them.
type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Register creates a user with a hashed password. The email stays unverified
// until the mailed token is consumed.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "service", "Register")

	emailTaken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if emailTaken {
		return nil, apperrors.ErrEmailExists
	}

	usernameTaken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if usernameTaken {
		return nil, apperrors.ErrUsernameExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     constants.DefaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Log()

	return user, nil
}

// Authenticate validates the email/password pair. Unknown emails and password
// mismatches are indistinguishable to the caller. A matching but unverified
// account is rejected separately so clients can prompt for verification.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "service", "Authenticate")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(user.Password, password) {
		logger.WarnWithContext(ctx, "Password mismatch on login").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsEmailVerified() {
		return nil, apperrors.ErrEmailUnverified
	}

	return user, nil
}

// ConfirmPassword re-checks the caller's own password for sensitive actions.
func (s *UserService) ConfirmPassword(user *model.User, password string) error {
	if !checkPassword(user.Password, password) {
		return apperrors.ErrIncorrectPassword
	}
	return nil
}

// UpdatePassword changes the password after re-confirming the current one.
// Existing access tokens stay valid until their natural expiry.
func (s *UserService) UpdatePassword(ctx context.Context, user *model.User, currentPassword, newPassword string) error {
	ctx = ctxutil.NewContext(ctx, "service", "UpdatePassword")

	if !checkPassword(user.Password, currentPassword) {
		return apperrors.ErrIncorrectPassword
	}
	if newPassword == currentPassword {
		return apperrors.ErrPasswordUnchanged
	}
	if len(newPassword) < constants.MinPasswordLength {
		return apperrors.ErrInvalidInput
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.Password = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password updated").
		Uint("user_id", user.ID).
		Log()

	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return user, nil
}

// MarkEmailVerified stamps the verification time if it is not already set.
func (s *UserService) MarkEmailVerified(ctx context.Context, user *model.User) error {
	if user.IsEmailVerified() {
		return apperrors.ErrAlreadyVerified
	}
	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}
