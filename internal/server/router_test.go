package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-library/internal/config"
	"github.com/sbilibin2017/gw-library/internal/jwt"
	"github.com/sbilibin2017/gw-library/internal/middlewares"
	"github.com/sbilibin2017/gw-library/internal/repositories"
	"github.com/sbilibin2017/gw-library/internal/services"
)

func testConfig() config.Config {
	return config.Config{
		AppHost:            "localhost",
		AppPort:            "4000",
		NotFoundMode:       config.NotFoundLegacy,
		CORSAllowedOrigins: []string{"*"},
		MaxBodyBytes:       config.DefaultMaxBodyBytes,
	}
}

// newTestRouter wires the real repositories and services over db.
func newTestRouter(cfg config.Config, db *sqlx.DB, tokens *jwt.JWT) http.Handler {
	bookSvc := services.NewBookService(
		repositories.NewBookReadRepository(db, middlewares.GetTxFromContext),
		repositories.NewBookWriteRepository(db, middlewares.GetTxFromContext),
		nil, nil,
	)
	authSvc := services.NewAuthService(
		repositories.NewUserReadRepository(db, middlewares.GetTxFromContext),
		repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext),
		tokens,
	)
	return NewRouter(cfg, db, bookSvc, authSvc, tokens)
}

func newMockRouter(t *testing.T, cfg config.Config) (http.Handler, sqlmock.Sqlmock, *jwt.JWT) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	tokens := jwt.New(jwt.WithSecretKey("test-secret"))
	return newTestRouter(cfg, sqlx.NewDb(sqlDB, "sqlmock"), tokens), mock, tokens
}

func serve(h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _, _ := newMockRouter(t, testConfig())

	rr := serve(h, http.MethodOptions, "/books/1", "", map[string]string{
		"Origin":                        "http://frontend.example",
		"Access-Control-Request-Method": http.MethodPut,
	})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestRouter_RequestID(t *testing.T) {
	h, mock, _ := newMockRouter(t, testConfig())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM library ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "genre", "release_year", "country", "description"}))

	rr := serve(h, http.MethodGet, "/api/books", "", map[string]string{middlewares.RequestIDHeader: "req-1"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Equal(t, "req-1", rr.Header().Get(middlewares.RequestIDHeader))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_ProtectWrites(t *testing.T) {
	cfg := testConfig()
	cfg.AuthProtectWrites = true
	h, mock, tokens := newMockRouter(t, cfg)

	rr := serve(h, http.MethodPost, "/books", `{"title":"Aura"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(h, http.MethodDelete, "/books/1", "", map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := tokens.Generate(context.Background(), 1, "admin@example.com")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO library`)).
		WithArgs("Aura", nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	rr = serve(h, http.MethodPost, "/books", `{"title":"Aura"}`, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"id":9}`, rr.Body.String())

	// Reads stay open.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM library WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(9, "Aura"))

	rr = serve(h, http.MethodGet, "/books/9", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_SignupTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		h, mock, _ := newMockRouter(t, testConfig())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users_db WHERE email = $1`)).
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password"}))
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users_db (username, email, password)`)).
			WithArgs("ana", "ana@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectCommit()

		rr := serve(h, http.MethodPost, "/api/signup", `{"username":"ana","password":"pw","email":"ana@example.com"}`, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"id":3`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on conflict", func(t *testing.T) {
		h, mock, _ := newMockRouter(t, testConfig())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users_db WHERE email = $1`)).
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password"}).
				AddRow(3, "ana", "ana@example.com", "hash"))
		mock.ExpectRollback()

		rr := serve(h, http.MethodPost, "/api/signup", `{"username":"ana","password":"pw","email":"ana@example.com"}`, nil)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"success":false,"message":"Email already registered"}`, rr.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouter_HealthAndSwagger(t *testing.T) {
	h, _, _ := newMockRouter(t, testConfig())

	rr := serve(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())

	rr = serve(h, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/books")
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _, _ := newMockRouter(t, testConfig())

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/authors", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPatch, "/books/1", "", nil).Code)
}
