package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the identity and credential record. TwoFactorSecret and
// TwoFactorRecoveryCodes hold ciphertext produced by the crypto codec; they
// are never written in the clear.
type User struct {
	gorm.Model
	Username               string     `gorm:"column:username;size:10;unique;not null"`
	Email                  string     `gorm:"column:email;unique;not null"`
	Password               string     `gorm:"column:password;not null"`
	Phone                  string     `gorm:"column:phone"`
	Role                   string     `gorm:"column:role;default:user;not null"`
	EmailVerifiedAt        *time.Time `gorm:"column:email_verified_at"`
	TwoFactorSecret        string     `gorm:"column:two_factor_secret"`
	TwoFactorRecoveryCodes string     `gorm:"column:two_factor_recovery_codes"`
	TwoFactorConfirmedAt   *time.Time `gorm:"column:two_factor_confirmed_at"`
	GoogleID               string     `gorm:"column:google_id"`
}

// IsEmailVerified reports whether the user may log in.
func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// IsTwoFactorEnabled is true only once activation confirmed the secret. A
// secret without a confirmation timestamp means setup is in progress and is
// not enforced at login.
func (u *User) IsTwoFactorEnabled() bool {
	return u.TwoFactorConfirmedAt != nil
}
