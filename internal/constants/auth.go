package constants

import "time"

// Token and session lifetimes
const (
	AccessTokenTTL       = 7 * 24 * time.Hour
	PendingTwoFaTTL      = 15 * time.Minute
	EmailVerificationTTL = time.Hour
	PasswordResetTTL     = time.Hour
)

// Credential settings
const (
	MinPasswordLength   = 6
	MaxUsernameLength   = 10
	RawTokenLength      = 64 // emailed verification / reset tokens
	BearerSecretLength  = 40
	RecoverySegmentSize = 10 // two segments joined by a hyphen
	RecoveryCodeCount   = 8
)

// PendingTwoFaCookie is the cookie bridging the password-verified and
// OTP-verified halves of a two-factor login.
const PendingTwoFaCookie = "_2fa_session"

// DefaultRole is assigned at registration.
const DefaultRole = "user"
