package auth

// device registration or login payload
type DeviceAuthRequest struct {
	DeviceID     string `json:"device_id" validate:"required,min=8,max=128"`
	DeviceSecret string `json:"device_secret" validate:"required,min=16,max=72"`
	DisplayName  string `json:"display_name" validate:"omitempty,max=255"`
}

// represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// represents logout request
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
