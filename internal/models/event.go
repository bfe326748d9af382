package models

// Book event types published to Kafka.
const (
	BookCreated = "created"
	BookUpdated = "updated"
	BookDeleted = "deleted"
)

// BookEvent describes a change to the library table.
type BookEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Type      string `json:"type"`      // Type is one of BookCreated, BookUpdated, BookDeleted.
	BookID    int64  `json:"book_id"`   // BookID is the primary key of the affected book.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix time (seconds) of the change.
}
