package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/internal/service"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	ctx = ctxutil.NewContext(ctx, "repository", "CreateToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create access token").
			Uint("token_user_id", token.UserID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Access token created").
		Uint("token_id", token.ID).
		Uint("token_user_id", token.UserID).
		Duration(duration).
		Log()

	return nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id uint) (*model.AccessToken, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetTokenByID")

	var token model.AccessToken
	result := r.db.WithContext(ctx).First(&token, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get access token").
			Uint("token_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &token, nil
}

func (r *TokenRepository) GetLatestByUser(ctx context.Context, userID uint) (*model.AccessToken, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetLatestTokenByUser")

	var token model.AccessToken
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get latest access token").
			Uint("token_user_id", userID).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &token, nil
}

func (r *TokenRepository) UpdateExpiry(ctx context.Context, id uint, expiresAt time.Time) error {
	ctx = ctxutil.NewContext(ctx, "repository", "UpdateTokenExpiry")

	result := r.db.WithContext(ctx).
		Model(&model.AccessToken{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update token expiry").
			Uint("token_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.NewContext(ctx, "repository", "DeleteToken")

	result := r.db.WithContext(ctx).Unscoped().Delete(&model.AccessToken{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete access token").
			Uint("token_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Access token deleted").
		Uint("token_id", id).
		Log()

	return nil
}
