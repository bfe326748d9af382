package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-library/internal/logger"
	"github.com/sbilibin2017/gw-library/internal/models"
)

// InvalidationHold is how long an evicted key refuses new entries. A read that
// fetched the row before a write landed cannot put it back while the hold lasts.
const InvalidationHold = 30 * time.Second

// tombstone marks an evicted key.
var tombstone = []byte("-")

// BookCacheRepository caches single books in Redis.
//
// Delete does not remove the key; it replaces it with a tombstone for
// InvalidationHold, and Set only fills keys that are absent.
type BookCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

func NewBookCacheRepository(client *redis.Client, expiration time.Duration) *BookCacheRepository {
	return &BookCacheRepository{client: client, exp: expiration}
}

func bookKey(id int64) string {
	return fmt.Sprintf("library:book:%d", id)
}

// Get returns the cached book, or nil on a cache miss.
func (r *BookCacheRepository) Get(ctx context.Context, id int64) (*models.BookDB, error) {
	key := bookKey(id)

	val, err := r.client.Get(ctx, key).Bytes()
	logger.Log.Debugw("cache get", "key", key, "hit", err == nil, "error", err)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if bytes.Equal(val, tombstone) {
		return nil, nil
	}

	var book models.BookDB
	if err := json.Unmarshal(val, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Set stores the book under its id for the configured expiration, unless the
// key is already present. A held tombstone therefore wins over a stale read.
func (r *BookCacheRepository) Set(ctx context.Context, book models.BookDB) error {
	key := bookKey(book.ID)

	data, err := json.Marshal(book)
	if err != nil {
		return err
	}

	stored, err := r.client.SetNX(ctx, key, data, r.exp).Result()
	logger.Log.Debugw("cache set", "key", key, "ttl", r.exp, "stored", stored, "error", err)
	return err
}

// Delete evicts the book with the given id and holds the key for
// InvalidationHold. Evicting a missing key is not an error.
func (r *BookCacheRepository) Delete(ctx context.Context, id int64) error {
	key := bookKey(id)

	err := r.client.Set(ctx, key, tombstone, InvalidationHold).Err()
	logger.Log.Debugw("cache delete", "key", key, "error", err)
	return err
}
