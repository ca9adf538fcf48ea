package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// sessionPayload is the encoded blob stored alongside a session row. It keeps
// the issued token string and its expiry for device-management tooling; the
// listing API never exposes it.
type sessionPayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService keeps one ledger row per login event.
type SessionService struct {
	sessions SessionRepository
}

func NewSessionService(sessions SessionRepository) *SessionService {
	return &SessionService{sessions: sessions}
}

// Record stores a session row for a freshly issued token. Each login gets a
// new row; concurrent sessions per user are allowed.
func (s *SessionService) Record(ctx context.Context, user *model.User, ip, userAgent, deviceType, tokenPlaintext string, tokenID uint, expiresAt time.Time) (string, error) {
	ctx = ctxutil.NewContext(ctx, "service", "RecordSession")

	raw, err := json.Marshal(sessionPayload{Token: tokenPlaintext, ExpiresAt: expiresAt})
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	session := &model.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		TokenID:      tokenID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		DeviceType:   deviceType,
		Payload:      base64.StdEncoding.EncodeToString(raw),
		LastActivity: time.Now().Unix(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return session.ID, nil
}

// ListForUser returns the user's sessions, most recently active first. Token
// material stays in the payload and is not part of the result shape used by
// handlers.
func (s *SessionService) ListForUser(ctx context.Context, userID uint) ([]model.Session, error) {
	ctx = ctxutil.NewContext(ctx, "service", "ListSessions")

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return sessions, nil
}

// DeleteByToken removes the session recorded for the given token. A missing
// row is not an error; logout stays idempotent.
func (s *SessionService) DeleteByToken(ctx context.Context, tokenID uint) error {
	ctx = ctxutil.NewContext(ctx, "service", "DeleteSessionByToken")

	if err := s.sessions.DeleteByTokenID(ctx, tokenID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// Delete removes a single session owned by the user.
func (s *SessionService) Delete(ctx context.Context, id string, userID uint) error {
	ctx = ctxutil.NewContext(ctx, "service", "DeleteSession")

	if err := s.sessions.DeleteByID(ctx, id, userID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Session deleted").
		String("session_id", id).
		Log()

	return nil
}
