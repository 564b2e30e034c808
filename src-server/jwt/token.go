package jwt

// Payload identifies one authenticated guest. Expiry is enforced by the
// route middleware from IssuedAt plus the configured lifetime.
type Payload struct {
	GuestID   string `json:"id"`
	GuestCode string `json:"code"`
	IssuedAt  int64  `json:"iat"`
}
