package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-library/internal/logger"
	"github.com/sbilibin2017/gw-library/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=book.go -destination=book_mock.go -package=services

// ErrBookNotFound is returned when no book matches the requested id.
var ErrBookNotFound = errors.New("book not found")

// BookReader defines read operations on books.
type BookReader interface {
	List(ctx context.Context) ([]models.BookDB, error)
	GetByID(ctx context.Context, id int64) (*models.BookDB, error)
}

// BookWriter defines write operations on books. Update and Delete return affected rows.
type BookWriter interface {
	Save(ctx context.Context, book models.BookFields) (int64, error)
	Update(ctx context.Context, id int64, book models.BookFields) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// BookCache caches single books. Set must not replace an entry that Delete
// invalidated after the book was read, or a deleted book could be served again.
type BookCache interface {
	Get(ctx context.Context, id int64) (*models.BookDB, error)
	Set(ctx context.Context, book models.BookDB) error
	Delete(ctx context.Context, id int64) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BookService handles the library catalog. Cache and Kafka writer are optional.
type BookService struct {
	reader      BookReader
	writer      BookWriter
	cache       BookCache
	kafkaWriter KafkaWriter
}

// NewBookService creates a new BookService. cache and kafkaWriter may be nil.
func NewBookService(reader BookReader, writer BookWriter, cache BookCache, kafkaWriter KafkaWriter) *BookService {
	return &BookService{
		reader:      reader,
		writer:      writer,
		cache:       cache,
		kafkaWriter: kafkaWriter,
	}
}

// List returns every book.
func (s *BookService) List(ctx context.Context) ([]models.BookDB, error) {
	books, err := s.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list books", "error", err)
		return nil, err
	}
	return books, nil
}

// Get returns one book, reading through the cache when one is configured.
func (s *BookService) Get(ctx context.Context, id int64) (*models.BookDB, error) {
	if s.cache != nil {
		book, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Log.Warnw("book cache read failed", "book_id", id, "error", err)
		} else if book != nil {
			return book, nil
		}
	}

	book, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get book", "book_id", id, "error", err)
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *book); err != nil {
			logger.Log.Warnw("book cache write failed", "book_id", id, "error", err)
		}
	}
	return book, nil
}

// Create inserts a book and returns its id.
func (s *BookService) Create(ctx context.Context, book models.BookFields) (int64, error) {
	id, err := s.writer.Save(ctx, book)
	if err != nil {
		logger.Log.Errorw("failed to create book", "error", err)
		return 0, err
	}

	s.publishEvent(ctx, models.BookCreated, id)
	return id, nil
}

// Update overwrites every field of a book. It returns ErrBookNotFound when no row matched.
func (s *BookService) Update(ctx context.Context, id int64, book models.BookFields) error {
	n, err := s.writer.Update(ctx, id, book)
	if err != nil {
		logger.Log.Errorw("failed to update book", "book_id", id, "error", err)
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}

	s.evict(ctx, id)
	s.publishEvent(ctx, models.BookUpdated, id)
	return nil
}

// Delete removes a book. It returns ErrBookNotFound when no row matched.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	n, err := s.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete book", "book_id", id, "error", err)
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}

	s.evict(ctx, id)
	s.publishEvent(ctx, models.BookDeleted, id)
	return nil
}

func (s *BookService) evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Log.Warnw("book cache eviction failed", "book_id", id, "error", err)
	}
}

// publishEvent publishes a book change to Kafka. Failures are logged, not returned.
func (s *BookService) publishEvent(ctx context.Context, eventType string, bookID int64) {
	if s.kafkaWriter == nil {
		return
	}

	event := models.BookEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		BookID:    bookID,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal book event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(bookID, 10)),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish book event", "event_id", event.EventID, "type", eventType, "error", err)
	} else {
		logger.Log.Infow("book event published", "event_id", event.EventID, "type", eventType, "book_id", bookID)
	}
}
