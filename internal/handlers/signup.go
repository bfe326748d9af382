package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-library/internal/models"
)

//go:generate mockgen -source=signup.go -destination=signup_mock.go -package=handlers

// Signuper defines the interface that the signup service must implement.
type Signuper interface {
	Signup(ctx context.Context, username, password, email string) (int64, string, error)
}

// NewSignupHandler returns an HTTP handler for user signup.
// @Summary Sign up
// @Description Creates a user with a bcrypt-hashed password and returns a token for the new account. Emails are unique.
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body models.SignupRequest true "Signup request"
// @Success 200 {object} models.SignupResponse
// @Failure 400 {object} models.StatusResponse "Invalid request or signup failure"
// @Failure 409 {object} models.StatusResponse "Email already registered"
// @Router /api/signup [post]
func NewSignupHandler(svc Signuper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		id, token, err := svc.Signup(r.Context(), req.Username, req.Password, req.Email)
		if err != nil {
			writeError(w, r, err, failure{http.StatusBadRequest, "Error creating user"})
			return
		}

		writeJSON(w, http.StatusOK, models.SignupResponse{
			Success: true,
			Token:   token,
			ID:      id,
		})
	}
}
