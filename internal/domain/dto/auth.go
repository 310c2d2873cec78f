package dto

import "strings"

// AdminRole is the only role carried by admin tokens.
const AdminRole = "admin"

// bcrypt ignores nothing past 72 bytes and rejects longer inputs.
const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

// LoginRequest is the body of POST /api/auth/login.
//
// @Description Administrator credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"changeme-atelier"`
} // @name LoginRequest

// Validate trims the username and checks the password length.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	switch {
	case r.Username == "":
		return &ValidationError{Field: "username", Message: "username is required"}
	case len(r.Password) < minPasswordLen:
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	case len(r.Password) > maxPasswordLen:
		return &ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// LoginResponse carries the admin access token.
//
// @Description Bearer token for the admin endpoints
type LoginResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"token_type" example:"Bearer"`
	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int64 `json:"expires_in" example:"3600"`
} // @name LoginResponse

// Claims is the identity of a validated token.
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}
