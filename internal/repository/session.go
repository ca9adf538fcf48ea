package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx = ctxutil.NewContext(ctx, "repository", "CreateSession")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(session)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			Uint("session_user_id", session.UserID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Session created").
		String("session_id", session.ID).
		Uint("session_user_id", session.UserID).
		Duration(duration).
		Log()

	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Session, error) {
	ctx = ctxutil.NewContext(ctx, "repository", "ListSessionsByUser")

	start := time.Now()
	var sessions []model.Session
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_activity DESC").
		Find(&sessions)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to list sessions").
			Uint("session_user_id", userID).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return sessions, nil
}

func (r *SessionRepository) DeleteByTokenID(ctx context.Context, tokenID uint) error {
	ctx = ctxutil.NewContext(ctx, "repository", "DeleteSessionByTokenID")

	result := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete session by token").
			Uint("token_id", tokenID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string, userID uint) error {
	ctx = ctxutil.NewContext(ctx, "repository", "DeleteSessionByID")

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete session").
			String("session_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}
