package dto

// LoginRequest represents admin login credentials, accepted as JSON or form fields
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required" example:"registrar"`
	Password string `json:"password" form:"password" binding:"required" example:"s3cret"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"28800"`
}
