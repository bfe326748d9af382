package models

// SignupRequest represents the JSON body for user signup
// swagger:model SignupRequest
type SignupRequest struct {
	// Username
	// example: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`
}

// SignupResponse represents a successful signup response
// swagger:model SignupResponse
type SignupResponse struct {
	// example: true
	Success bool `json:"success"`

	// JWT token for the new user
	// example: JWT_TOKEN
	Token string `json:"token"`

	// Id of the new user
	// example: 1
	ID int64 `json:"id"`
}
