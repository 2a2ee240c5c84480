package models

// Claims represents JWT claims issued to an API client
type Claims struct {
	ClientID string `json:"client_id"`
	Exp      int64  `json:"exp"`
}

// TokenRequest represents a client-credentials token request
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse represents a successful token response
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
