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

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetByID")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).First(&user, id)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by email").
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "GetByGoogleID")

	var user model.User
	result := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by google ID").
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "ExistsByEmail")

	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to count users by email").
			Err(result.Error).
			Log()
		return false, result.Error
	}
	return count > 0, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "ExistsByUsername")

	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to count users by username").
			String("username", username).
			Err(result.Error).
			Log()
		return false, result.Error
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.NewContext(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Duration(duration).
		Log()

	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	ctx = ctxutil.NewContext(ctx, "repository", "Update")

	start := time.Now()
	result := r.db.WithContext(ctx).Save(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			Uint("user_id", user.ID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}
