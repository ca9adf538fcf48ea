package service

import (
	"context"
	"errors"
	"time"

	"github.com/yoyda/auth-service/internal/model"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
// Services translate it into domain errors appropriate for the caller.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *model.AccessToken) error
	GetByID(ctx context.Context, id uint) (*model.AccessToken, error)
	GetLatestByUser(ctx context.Context, userID uint) (*model.AccessToken, error)
	UpdateExpiry(ctx context.Context, id uint, expiresAt time.Time) error
	Delete(ctx context.Context, id uint) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	ListByUser(ctx context.Context, userID uint) ([]model.Session, error)
	DeleteByTokenID(ctx context.Context, tokenID uint) error
	DeleteByID(ctx context.Context, id string, userID uint) error
}

type VerificationRepository interface {
	CreateEmailToken(ctx context.Context, token *model.EmailVerificationToken) error
	GetEmailTokenByHash(ctx context.Context, hash string) (*model.EmailVerificationToken, error)
	DeleteEmailTokensByUser(ctx context.Context, userID uint) error
	UpsertPasswordReset(ctx context.Context, reset *model.PasswordResetToken) error
	GetPasswordResetByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error)
	DeletePasswordReset(ctx context.Context, email string) error
}
