package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/pkg/crypto"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// PendingTwoFa is the state carried in the encrypted cookie between the
// password-verified login call and the OTP or recovery-code call. It is the
// only proof the second call has that the password check already happened.
type PendingTwoFa struct {
	Email         string    `json:"email"`
	TwoFaRequired bool      `json:"two_fa_required"`
	SessionID     string    `json:"session_id"`
	IssuedAt      time.Time `json:"issued_at"`
}

// PendingTwoFaService encodes and validates the pending-2FA cookie. The
// cookie enforces its own fifteen-minute window, independent of any token or
// session lifetime.
type PendingTwoFaService struct {
	codec *crypto.Codec
}

func NewPendingTwoFaService(codec *crypto.Codec) *PendingTwoFaService {
	return &PendingTwoFaService{codec: codec}
}

// Issue builds the encrypted cookie value for a user who passed the password
// check but still owes a second factor.
func (s *PendingTwoFaService) Issue(ctx context.Context, email string) (string, error) {
	ctx = ctxutil.NewContext(ctx, "service", "IssuePendingTwoFa")

	state := PendingTwoFa{
		Email:         email,
		TwoFaRequired: true,
		SessionID:     uuid.NewString(),
		IssuedAt:      time.Now(),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	value, err := s.codec.EncryptString(string(raw))
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.DebugWithContext(ctx, "Pending two-factor cookie issued").
		String("pending_session_id", state.SessionID).
		Log()

	return value, nil
}

// Decode authenticates and decodes a cookie value. Tampered, malformed and
// stale values all come back as ErrInvalidTwoFaSession; the caller cannot
// distinguish them, matching the single cookie-rejection path clients see.
func (s *PendingTwoFaService) Decode(ctx context.Context, value string) (*PendingTwoFa, error) {
	ctx = ctxutil.NewContext(ctx, "service", "DecodePendingTwoFa")

	if value == "" {
		return nil, apperrors.ErrInvalidTwoFaSession
	}

	raw, err := s.codec.DecryptString(value)
	if err != nil {
		logger.WarnWithContext(ctx, "Pending two-factor cookie failed decryption").
			Log()
		return nil, apperrors.ErrInvalidTwoFaSession
	}

	var state PendingTwoFa
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, apperrors.ErrInvalidTwoFaSession
	}

	if time.Since(state.IssuedAt) > constants.PendingTwoFaTTL {
		return nil, apperrors.ErrInvalidTwoFaSession
	}

	return &state, nil
}
