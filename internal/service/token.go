package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// TokenService issues and resolves opaque bearer tokens of the form
// "{id}|{secret}". Only a SHA-256 digest of the secret is stored, so the
// plaintext is shown exactly once at issue time.
type TokenService struct {
	tokens TokenRepository
	users  UserRepository
}

func NewTokenService(tokens TokenRepository, users UserRepository) *TokenService {
	return &TokenService{tokens: tokens, users: users}
}

// Issue mints a fresh token for the user, valid for seven days.
func (s *TokenService) Issue(ctx context.Context, user *model.User) (string, *model.AccessToken, error) {
	ctx = ctxutil.NewContext(ctx, "service", "IssueToken")

	secret := randomAlphanumeric(constants.BearerSecretLength)
	token := &model.AccessToken{
		UserID:     user.ID,
		SecretHash: sha256Hex(secret),
		ExpiresAt:  time.Now().Add(constants.AccessTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Access token issued").
		Uint("token_id", token.ID).
		Uint("token_user_id", user.ID).
		Log()

	return fmt.Sprintf("%d|%s", token.ID, secret), token, nil
}

// ResolveBearer validates a presented bearer string and returns the owning
// user. Malformed strings, unknown ids and secret mismatches all resolve to
// ErrUnauthenticated; only a genuine token past its expiry gets
// ErrTokenExpired.
func (s *TokenService) ResolveBearer(ctx context.Context, bearer string) (*model.User, *model.AccessToken, error) {
	ctx = ctxutil.NewContext(ctx, "service", "ResolveBearer")

	idPart, secret, found := strings.Cut(bearer, "|")
	if !found || idPart == "" || secret == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	token, err := s.tokens.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthenticated
		}
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	digest := sha256Hex(secret)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(token.SecretHash)) != 1 {
		logger.WarnWithContext(ctx, "Bearer secret mismatch").
			Uint("token_id", token.ID).
			Log()
		return nil, nil, apperrors.ErrUnauthenticated
	}

	if time.Now().After(token.ExpiresAt) {
		return nil, nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthenticated
		}
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return user, token, nil
}

// ExtendLatest pushes the expiry of the user's most recent token out by a
// full token lifetime. Used when an external identity provider re-confirms
// the account instead of minting a second token.
func (s *TokenService) ExtendLatest(ctx context.Context, userID uint) (*model.AccessToken, error) {
	ctx = ctxutil.NewContext(ctx, "service", "ExtendLatestToken")

	token, err := s.tokens.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token.ExpiresAt = time.Now().Add(constants.AccessTokenTTL)
	if err := s.tokens.UpdateExpiry(ctx, token.ID, token.ExpiresAt); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return token, nil
}

// Revoke deletes the token row. Presenting the same bearer afterwards fails
// resolution.
func (s *TokenService) Revoke(ctx context.Context, tokenID uint) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}
