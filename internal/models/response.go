package models

// StatusResponse is the generic {success, message} envelope.
// swagger:model StatusResponse
type StatusResponse struct {
	// example: false
	Success bool `json:"success"`
	// example: Book not found
	Message string `json:"message"`
}

// CreateBookResponse is returned after a book is inserted.
// swagger:model CreateBookResponse
type CreateBookResponse struct {
	// example: true
	Success bool `json:"success"`
	// example: 42
	ID int64 `json:"id"`
}
