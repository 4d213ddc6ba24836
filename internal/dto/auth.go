package dto

// RegisterRequest is the payload for standard email/password registration.
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenRequest carries the refresh token to rotate.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest finishes the password-reset flow. The token is the
// plaintext purpose token from the reset email.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// OAuthLoginRequest exchanges a provider authorization code for tokens.
type OAuthLoginRequest struct {
	Provider string `json:"provider" binding:"required,oneof=google github facebook"`
	Code     string `json:"code" binding:"required"`
}

// TokenPairResponse is the result of any successful token issuance.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// OAuthLoginResponse is the result of a successful OAuth login.
type OAuthLoginResponse struct {
	TokenPairResponse
	User UserResponse `json:"user"`
}

// MessageResponse is a generic success envelope for operations that return no data.
type MessageResponse struct {
	Message string `json:"message"`
}
