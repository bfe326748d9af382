package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-library/internal/models"
)

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, string, error)
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary Log in
// @Description Verifies email and password and returns a token valid for 12 hours. Unknown emails and wrong passwords get the same answer.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.StatusResponse "Invalid request body"
// @Failure 401 {object} models.StatusResponse "Invalid email or password"
// @Failure 500 {object} models.StatusResponse
// @Router /api/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		token, username, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, models.LoginResponse{
			Success:  true,
			Token:    token,
			Username: username,
		})
	}
}
