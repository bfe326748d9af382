package models

// UserDB represents a row of the users_db table.
type UserDB struct {
	ID       int64  `json:"id" db:"id"`             // Primary key
	Username string `json:"username" db:"username"` // Display name
	Email    string `json:"email" db:"email"`       // Login key, unique
	Password string `json:"-" db:"password"`        // bcrypt hash
}
