package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/gw-library/internal/config"
	"github.com/sbilibin2017/gw-library/internal/jwt"
)

const testSchema = `
	CREATE TABLE IF NOT EXISTS library (
		id BIGSERIAL PRIMARY KEY,
		title TEXT,
		author TEXT,
		genre TEXT,
		release_year INTEGER,
		country TEXT,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS users_db (
		id BIGSERIAL PRIMARY KEY,
		username TEXT,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);
`

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "library", "POSTGRES_USER": "postgres"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForListeningPort("5432/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/library?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func createBook(t *testing.T, h http.Handler, body string) int64 {
	t.Helper()
	rr := serve(h, http.MethodPost, "/books", body, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.ID
}

func TestRouter_Postgres(t *testing.T) {
	db := setupPostgres(t)
	tokens := jwt.New(jwt.WithSecretKey("shared-secret"))

	legacy := newTestRouter(testConfig(), db, tokens)
	standardCfg := testConfig()
	standardCfg.NotFoundMode = config.NotFoundStandard
	standard := newTestRouter(standardCfg, db, tokens)

	t.Run("create then get returns the same fields", func(t *testing.T) {
		id := createBook(t, legacy, `{"title":"El túnel","author":"Ernesto Sabato","genre":"Novel","release_year":1948,"country":"Argentina","description":"Castel's confession"}`)

		rr := serve(legacy, http.MethodGet, fmt.Sprintf("/books/%d", id), "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			fmt.Sprintf(`[{"id":%d,"title":"El túnel","author":"Ernesto Sabato","genre":"Novel","release_year":1948,"country":"Argentina","description":"Castel's confession"}]`, id),
			rr.Body.String())
	})

	t.Run("update overwrites absent fields with null", func(t *testing.T) {
		id := createBook(t, legacy, `{"title":"Draft","author":"Someone"}`)

		rr := serve(legacy, http.MethodPut, fmt.Sprintf("/books/%d", id), `{"title":"Final"}`, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = serve(legacy, http.MethodGet, fmt.Sprintf("/books/%d", id), "", nil)
		assert.JSONEq(t,
			fmt.Sprintf(`[{"id":%d,"title":"Final","author":null,"genre":null,"release_year":null,"country":null,"description":null}]`, id),
			rr.Body.String())
	})

	t.Run("delete then get is not found in both modes", func(t *testing.T) {
		id := createBook(t, legacy, `{"title":"Gone"}`)
		target := fmt.Sprintf("/books/%d", id)

		rr := serve(legacy, http.MethodDelete, target, "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"message":"Book deleted"}`, rr.Body.String())

		rr = serve(legacy, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"message":"Book not found"}`, rr.Body.String())

		rr = serve(standard, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"success":false,"message":"Book not found"}`, rr.Body.String())
	})

	t.Run("writes to a missing id", func(t *testing.T) {
		rr := serve(legacy, http.MethodPut, "/books/987654", `{"title":"Nobody"}`, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		rr = serve(legacy, http.MethodDelete, "/books/987654", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = serve(standard, http.MethodPut, "/books/987654", `{"title":"Nobody"}`, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = serve(standard, http.MethodDelete, "/books/987654", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("concurrent creates get unique ids", func(t *testing.T) {
		const n = 20
		ids := make(chan int64, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rr := serve(legacy, http.MethodPost, "/books", fmt.Sprintf(`{"title":"Copy %d"}`, i), nil)
				var resp struct {
					ID int64 `json:"id"`
				}
				if json.Unmarshal(rr.Body.Bytes(), &resp) == nil {
					ids <- resp.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("list returns every book", func(t *testing.T) {
		var count int
		require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM library`))

		rr := serve(legacy, http.MethodGet, "/api/books", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var books []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &books))
		assert.Len(t, books, count)
	})

	t.Run("signup then login", func(t *testing.T) {
		rr := serve(legacy, http.MethodPost, "/api/signup", `{"username":"lucia","password":"s3cret","email":"lucia@example.com"}`, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var signup struct {
			Token string `json:"token"`
			ID    int64  `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &signup))

		var stored string
		require.NoError(t, db.Get(&stored, `SELECT password FROM users_db WHERE email = $1`, "lucia@example.com"))
		assert.NotEqual(t, "s3cret", stored)
		assert.True(t, strings.HasPrefix(stored, "$2"))

		rr = serve(legacy, http.MethodPost, "/api/login", `{"email":"lucia@example.com","password":"s3cret"}`, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var login struct {
			Success  bool   `json:"success"`
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
		assert.True(t, login.Success)
		assert.Equal(t, "lucia", login.Username)

		for _, token := range []string{signup.Token, login.Token} {
			parsed, err := gojwt.Parse(token, func(*gojwt.Token) (interface{}, error) { return []byte("shared-secret"), nil })
			require.NoError(t, err)
			claims := parsed.Claims.(gojwt.MapClaims)
			assert.Equal(t, float64(signup.ID), claims["id"])
			assert.Equal(t, "lucia@example.com", claims["email"])
		}
	})

	t.Run("duplicate signup is rejected and leaves one row", func(t *testing.T) {
		body := `{"username":"twin","password":"pw","email":"twin@example.com"}`
		require.Equal(t, http.StatusOK, serve(legacy, http.MethodPost, "/api/signup", body, nil).Code)

		rr := serve(legacy, http.MethodPost, "/api/signup", body, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)

		var count int
		require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM users_db WHERE email = $1`, "twin@example.com"))
		assert.Equal(t, 1, count)
	})

	t.Run("login failures are indistinguishable", func(t *testing.T) {
		unknown := serve(legacy, http.MethodPost, "/api/login", `{"email":"nobody@example.com","password":"x"}`, nil)
		wrong := serve(legacy, http.MethodPost, "/api/login", `{"email":"lucia@example.com","password":"wrong"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, unknown.Code, wrong.Code)
		assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	})

	t.Run("storage errors stay opaque", func(t *testing.T) {
		_, err := db.Exec(`ALTER TABLE library RENAME TO library_moved`)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = db.Exec(`ALTER TABLE library_moved RENAME TO library`) })

		rr := serve(legacy, http.MethodGet, "/api/books", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "library")
		assert.NotContains(t, rr.Body.String(), "relation")
	})
}
