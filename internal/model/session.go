package model

// Session is one device-level login. TokenID indexes the session by the
// access token issued alongside it, so logout deletes the matching row
// directly instead of decoding every payload. The payload still embeds the
// plaintext token and its expiry, base64-encoded, and must never be surfaced
// to callers.
type Session struct {
	ID           string `gorm:"column:id;primaryKey"`
	UserID       uint   `gorm:"column:user_id;index;not null"`
	TokenID      uint   `gorm:"column:token_id;index"`
	IPAddress    string `gorm:"column:ip_address"`
	UserAgent    string `gorm:"column:user_agent"`
	DeviceType   string `gorm:"column:device_type"`
	Payload      string `gorm:"column:payload;not null"`
	LastActivity int64  `gorm:"column:last_activity;index;not null"`
}
