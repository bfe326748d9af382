package models

// BookDB represents a row of the library table.
// Data columns are nullable: a field missing from a create/update request is stored as NULL.
type BookDB struct {
	ID          int64   `json:"id" db:"id"`                     // Primary key
	Title       *string `json:"title" db:"title"`               // Book title
	Author      *string `json:"author" db:"author"`             // Author name
	Genre       *string `json:"genre" db:"genre"`               // Genre
	ReleaseYear *int64  `json:"release_year" db:"release_year"` // Year of first publication
	Country     *string `json:"country" db:"country"`           // Country of origin
	Description *string `json:"description" db:"description"`   // Free-form description
}

// BookFields holds the six writable book columns.
// swagger:model BookFields
type BookFields struct {
	// example: Cien años de soledad
	Title *string `json:"title"`
	// example: Gabriel García Márquez
	Author *string `json:"author"`
	// example: Novel
	Genre *string `json:"genre"`
	// example: 1967
	ReleaseYear *int64 `json:"release_year"`
	// example: Colombia
	Country *string `json:"country"`
	// example: The multi-generational story of the Buendía family
	Description *string `json:"description"`
}

// Row converts the writable fields into a BookDB with the given id.
func (f BookFields) Row(id int64) BookDB {
	return BookDB{
		ID:          id,
		Title:       f.Title,
		Author:      f.Author,
		Genre:       f.Genre,
		ReleaseYear: f.ReleaseYear,
		Country:     f.Country,
		Description: f.Description,
	}
}
