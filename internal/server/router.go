package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sbilibin2017/gw-library/docs"
	"github.com/sbilibin2017/gw-library/internal/config"
	"github.com/sbilibin2017/gw-library/internal/handlers"
	"github.com/sbilibin2017/gw-library/internal/middlewares"
)

// BookService is everything the book routes need.
type BookService interface {
	handlers.BookLister
	handlers.BookGetter
	handlers.BookCreator
	handlers.BookUpdater
	handlers.BookDeleter
}

// AuthService is everything the signup and login routes need.
type AuthService interface {
	handlers.Signuper
	handlers.Loginer
}

// NewRouter builds the HTTP handler of the service.
//
// Signup runs inside a database transaction; repositories built with
// middlewares.GetTxFromContext as their TxGetter join it.
func NewRouter(
	cfg config.Config,
	db *sqlx.DB,
	books BookService,
	auth AuthService,
	tokener middlewares.Tokener,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.CORS(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBytes(cfg.MaxBodyBytes))

	r.Get("/api/books", handlers.NewListBooksHandler(books))
	r.Get("/books/{id}", handlers.NewGetBookHandler(books, cfg.NotFoundMode))

	r.Group(func(r chi.Router) {
		if cfg.AuthProtectWrites {
			r.Use(middlewares.AuthMiddleware(tokener))
		}
		r.Post("/books", handlers.NewCreateBookHandler(books))
		r.Put("/books/{id}", handlers.NewUpdateBookHandler(books, cfg.NotFoundMode))
		r.Delete("/books/{id}", handlers.NewDeleteBookHandler(books, cfg.NotFoundMode))
	})

	r.With(middlewares.TxMiddleware(db)).Post("/api/signup", handlers.NewSignupHandler(auth))
	r.Post("/api/login", handlers.NewLoginHandler(auth))

	r.Get("/health", handlers.NewHealthHandler(db))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	return r
}
