package models

// LoginRequest represents the JSON body for user login.
// Username is accepted for compatibility but ignored.
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// Ignored
	Username string `json:"username,omitempty"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// example: true
	Success bool `json:"success"`

	// JWT token
	// example: JWT_TOKEN
	Token string `json:"token"`

	// example: john_doe
	Username string `json:"username"`
}
