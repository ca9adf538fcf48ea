package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/internal/service"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) CreateEmailToken(ctx context.Context, token *model.EmailVerificationToken) error {
	ctx = ctxutil.NewContext(ctx, "repository", "CreateEmailToken")

	result := r.db.WithContext(ctx).Create(token)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create email verification token").
			Uint("token_user_id", token.UserID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *VerificationRepository) GetEmailTokenByHash(ctx context.Context, hash string) (*model.EmailVerificationToken, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetEmailTokenByHash")

	var token model.EmailVerificationToken
	result := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get email verification token").
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &token, nil
}

func (r *VerificationRepository) DeleteEmailTokensByUser(ctx context.Context, userID uint) error {
	ctx = ctxutil.NewContext(ctx, "repository", "DeleteEmailTokensByUser")

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.EmailVerificationToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete email verification tokens").
			Uint("token_user_id", userID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *VerificationRepository) UpsertPasswordReset(ctx context.Context, reset *model.PasswordResetToken) error {
	ctx = ctxutil.NewContext(ctx, "repository", "UpsertPasswordReset")

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "created_at"}),
		}).
		Create(reset)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to upsert password reset token").
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *VerificationRepository) GetPasswordResetByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetPasswordResetByEmail")

	var reset model.PasswordResetToken
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&reset)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get password reset token").
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &reset, nil
}

func (r *VerificationRepository) DeletePasswordReset(ctx context.Context, email string) error {
	ctx = ctxutil.NewContext(ctx, "repository", "DeletePasswordReset")

	result := r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete password reset token").
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}
