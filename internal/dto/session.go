package dto

type SessionResponse struct {
	ID           string `json:"id"`
	IPAddress    string `json:"ip_address"`
	UserAgent    string `json:"user_agent"`
	DeviceType   string `json:"device_type,omitempty"`
	LastActivity int64  `json:"last_activity"`
}
