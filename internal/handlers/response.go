package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-library/internal/logger"
	"github.com/sbilibin2017/gw-library/internal/models"
	"github.com/sbilibin2017/gw-library/internal/services"
)

var (
	errInvalidBody   = errors.New("invalid request body")
	errBodyTooLarge  = errors.New("request body too large")
	errInvalidBookID = errors.New("invalid book id")
)

// failure is the status and client-facing message for an error.
type failure struct {
	status  int
	message string
}

var badRequest = failure{http.StatusBadRequest, "Invalid request"}

// errorFailures maps known errors to their response. Anything else gets the
// caller's fallback, so driver messages never reach the client.
var errorFailures = []struct {
	err error
	failure
}{
	{errInvalidBody, failure{http.StatusBadRequest, "Invalid request body"}},
	{errBodyTooLarge, failure{http.StatusRequestEntityTooLarge, "Request body too large"}},
	{errInvalidBookID, failure{http.StatusBadRequest, "Invalid book id"}},
	{services.ErrBookNotFound, failure{http.StatusNotFound, "Book not found"}},
	{services.ErrMissingCredentials, failure{http.StatusBadRequest, "Email and password are required"}},
	{services.ErrEmailAlreadyExists, failure{http.StatusConflict, "Email already registered"}},
	{services.ErrInvalidCredentials, failure{http.StatusUnauthorized, "Invalid email or password"}},
}

// writeError logs err and answers with {success:false, message}.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback failure) {
	f := fallback
	for _, known := range errorFailures {
		if errors.Is(err, known.err) {
			f = known.failure
			break
		}
	}

	if f.status >= http.StatusInternalServerError || f == fallback {
		logger.Log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", f.status, "err", err)
	}

	writeJSON(w, f.status, models.StatusResponse{Success: false, Message: f.message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

// decodeJSON reads the request body into v. An empty body is treated as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return errInvalidBody
}

func bookIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidBookID
	}
	return id, nil
}
