package model

import (
	"time"

	"gorm.io/gorm"
)

// AccessToken is a persisted bearer credential. Only the SHA-256 digest of
// the secret half is stored; the plaintext `{id}|{secret}` form is returned
// exactly once at issuance.
type AccessToken struct {
	gorm.Model
	UserID     uint      `gorm:"column:user_id;index;not null"`
	SecretHash string    `gorm:"column:secret_hash;size:64;not null"`
	ExpiresAt  time.Time `gorm:"column:expires_at;index;not null"`
}
