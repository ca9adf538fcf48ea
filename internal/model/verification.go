package model

import "time"

// EmailVerificationToken holds the SHA-256 digest of an emailed verification
// token. The digest is deterministic, so the verify endpoint looks a token up
// by exact hash match and never scans other users' rows.
type EmailVerificationToken struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;index;not null"`
	TokenHash string    `gorm:"column:token_hash;size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// PasswordResetToken is keyed by email; a new reset request replaces any
// outstanding token for the same address.
type PasswordResetToken struct {
	Email     string    `gorm:"column:email;primaryKey"`
	TokenHash string    `gorm:"column:token_hash;size:64;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}
