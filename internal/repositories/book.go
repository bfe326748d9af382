package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-library/internal/models"
)

// BookReadRepository reads rows of the library table.
type BookReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewBookReadRepository(db *sqlx.DB, txGetter TxGetter) *BookReadRepository {
	return &BookReadRepository{db: db, txGetter: txGetter}
}

// List returns every book ordered by id. An empty table yields an empty, non-nil slice.
func (r *BookReadRepository) List(ctx context.Context) ([]models.BookDB, error) {
	const query = `
		SELECT id, title, author, genre, release_year, country, description
		FROM library
		ORDER BY id
	`

	books := []models.BookDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &books, query)
	logQuery(query, nil, len(books), err)
	if err != nil {
		return nil, classify(err)
	}
	return books, nil
}

// GetByID returns the book with the given id, or nil when there is none.
func (r *BookReadRepository) GetByID(ctx context.Context, id int64) (*models.BookDB, error) {
	const query = `
		SELECT id, title, author, genre, release_year, country, description
		FROM library
		WHERE id = $1
	`

	var book models.BookDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &book, query, id)
	logQuery(query, []any{id}, book, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &book, nil
}

// BookWriteRepository inserts, updates and deletes rows of the library table.
type BookWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewBookWriteRepository(db *sqlx.DB, txGetter TxGetter) *BookWriteRepository {
	return &BookWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a book and returns its generated id.
func (r *BookWriteRepository) Save(ctx context.Context, book models.BookFields) (int64, error) {
	const query = `
		INSERT INTO library (title, author, genre, release_year, country, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &id, query,
		book.Title, book.Author, book.Genre, book.ReleaseYear, book.Country, book.Description)
	logQuery(query, []any{book}, id, err)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

// Update overwrites all six columns of the book with the given id
// and returns the number of affected rows.
func (r *BookWriteRepository) Update(ctx context.Context, id int64, book models.BookFields) (int64, error) {
	const query = `
		UPDATE library
		SET title = $1, author = $2, genre = $3, release_year = $4, country = $5, description = $6
		WHERE id = $7
	`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query,
		book.Title, book.Author, book.Genre, book.ReleaseYear, book.Country, book.Description, id)
	return r.affected(query, []any{id, book}, res, err)
}

// Delete removes the book with the given id and returns the number of affected rows.
func (r *BookWriteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM library WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	return r.affected(query, []any{id}, res, err)
}

func (r *BookWriteRepository) affected(query string, args []any, res sql.Result, err error) (int64, error) {
	var rowsAffected int64
	if err == nil {
		rowsAffected, err = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)
	if err != nil {
		return 0, classify(err)
	}
	return rowsAffected, nil
}
