package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-library/internal/config"
	"github.com/sbilibin2017/gw-library/internal/models"
	"github.com/sbilibin2017/gw-library/internal/services"
)

//go:generate mockgen -source=books.go -destination=books_mock.go -package=handlers

// BookLister lists the catalog.
type BookLister interface {
	List(ctx context.Context) ([]models.BookDB, error)
}

// BookGetter fetches one book.
type BookGetter interface {
	Get(ctx context.Context, id int64) (*models.BookDB, error)
}

// BookCreator inserts a book.
type BookCreator interface {
	Create(ctx context.Context, book models.BookFields) (int64, error)
}

// BookUpdater overwrites a book.
type BookUpdater interface {
	Update(ctx context.Context, id int64, book models.BookFields) error
}

// BookDeleter removes a book.
type BookDeleter interface {
	Delete(ctx context.Context, id int64) error
}

const (
	msgBookNotFound = "Book not found"
	msgBookUpdated  = "Book updated"
	msgBookDeleted  = "Book deleted"
)

// NewListBooksHandler returns an HTTP handler listing every book.
// @Summary List books
// @Description Returns all rows of the library table, unfiltered and unpaginated
// @Tags books
// @Produce json
// @Success 200 {array} models.BookDB
// @Failure 500 {object} models.StatusResponse
// @Router /api/books [get]
func NewListBooksHandler(svc BookLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Error listing books"})
			return
		}
		writeJSON(w, http.StatusOK, books)
	}
}

// NewGetBookHandler returns an HTTP handler fetching one book as a one-element array.
// In legacy mode a missing book is answered with 200 {success:true, message}.
// @Summary Get a book
// @Description Returns the book as a one-element array. A missing book yields 200 {success:true,message} in legacy mode and 404 in standard mode.
// @Tags books
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {array} models.BookDB
// @Failure 400 {object} models.StatusResponse
// @Failure 404 {object} models.StatusResponse
// @Router /books/{id} [get]
func NewGetBookHandler(svc BookGetter, mode config.NotFoundMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookIDParam(r)
		if err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		book, err := svc.Get(r.Context(), id)
		if errors.Is(err, services.ErrBookNotFound) && mode == config.NotFoundLegacy {
			writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: msgBookNotFound})
			return
		}
		if err != nil {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Error fetching book"})
			return
		}

		writeJSON(w, http.StatusOK, []models.BookDB{*book})
	}
}

// NewCreateBookHandler returns an HTTP handler inserting a book.
// @Summary Create a book
// @Description Inserts a book. Absent fields are stored as null.
// @Tags books
// @Accept json
// @Produce json
// @Param book body models.BookFields true "Book fields"
// @Success 200 {object} models.CreateBookResponse
// @Failure 400 {object} models.StatusResponse
// @Failure 413 {object} models.StatusResponse
// @Failure 500 {object} models.StatusResponse
// @Security BearerAuth
// @Router /books [post]
func NewCreateBookHandler(svc BookCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BookFields
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		id, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Error creating book"})
			return
		}

		writeJSON(w, http.StatusOK, models.CreateBookResponse{Success: true, ID: id})
	}
}

// NewUpdateBookHandler returns an HTTP handler overwriting every field of a book.
// In legacy mode an update that matched no row still reports success.
// @Summary Update a book
// @Description Overwrites all six fields. A missing id reports success in legacy mode and 404 in standard mode.
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book id"
// @Param book body models.BookFields true "Book fields"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Failure 404 {object} models.StatusResponse
// @Failure 500 {object} models.StatusResponse
// @Security BearerAuth
// @Router /books/{id} [put]
func NewUpdateBookHandler(svc BookUpdater, mode config.NotFoundMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookIDParam(r)
		if err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		var req models.BookFields
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		err = svc.Update(r.Context(), id, req)
		if err != nil && !(errors.Is(err, services.ErrBookNotFound) && mode == config.NotFoundLegacy) {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Error updating book"})
			return
		}

		writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: msgBookUpdated})
	}
}

// NewDeleteBookHandler returns an HTTP handler removing a book.
// In legacy mode a delete that matched no row still reports success.
// @Summary Delete a book
// @Description Removes a book. A missing id reports success in legacy mode and 404 in standard mode.
// @Tags books
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Failure 404 {object} models.StatusResponse
// @Failure 500 {object} models.StatusResponse
// @Security BearerAuth
// @Router /books/{id} [delete]
func NewDeleteBookHandler(svc BookDeleter, mode config.NotFoundMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookIDParam(r)
		if err != nil {
			writeError(w, r, err, badRequest)
			return
		}

		err = svc.Delete(r.Context(), id)
		if err != nil && !(errors.Is(err, services.ErrBookNotFound) && mode == config.NotFoundLegacy) {
			writeError(w, r, err, failure{http.StatusInternalServerError, "Error deleting book"})
			return
		}

		writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: msgBookDeleted})
	}
}
