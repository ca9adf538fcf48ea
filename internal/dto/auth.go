package dto

import "time"

type RegisterRequest struct {
	Username             string `json:"username" binding:"required,max=10"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	DeviceType string `json:"device_type" binding:"omitempty,max=50"`
}

type TwoFaLoginRequest struct {
	TwoFactorCode string `json:"two_factor_code" binding:"required,numeric"`
	DeviceType    string `json:"device_type" binding:"omitempty,max=50"`
}

type RecoveryLoginRequest struct {
	Code       string `json:"code" binding:"required"`
	DeviceType string `json:"device_type" binding:"omitempty,max=50"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword         string `json:"current_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required,min=6"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required,eqfield=NewPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type UserResponse struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	EmailVerifiedAt  *time.Time `json:"email_verified_at"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	CreatedAt        time.Time  `json:"created_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PendingTwoFaResponse is what login returns when the account has 2FA
// confirmed. No token is issued at this point.
type PendingTwoFaResponse struct {
	TwoFaRequired bool `json:"two_fa_required"`
}
