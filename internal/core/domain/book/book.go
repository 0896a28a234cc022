package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a book (or its author/file) does not exist.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidCriteria wraps every query-parameter parsing failure.
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrAuthorNotFound is returned when a book is created for an unknown author.
	ErrAuthorNotFound = errors.New("author not found")
)

type Book struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	FilePath     string    `json:"filePath,omitempty" db:"file_path"`
	Rating       float64   `json:"rating" db:"rating"`
	RatingsCount int       `json:"ratingsCount" db:"ratings_count"`
	IssuedDate   time.Time `json:"issuedDate" db:"issued_date"`
	Genres       []string  `json:"genres" db:"genres"`
	Likes        int       `json:"likes" db:"likes"`
	AuthorID     int       `json:"authorId" db:"author_id"`
}

type Author struct {
	ID             int    `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	ProfilePicPath string `json:"profilePicPath,omitempty" db:"profile_pic_path"`
}

// Summary is the list-item projection of a book returned by search endpoints.
// ID is immutable; Name and Genres are the display fields that may be patched
// in place by the list cache when a book changes.
type Summary struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	FilePath     string    `json:"filePath,omitempty"`
	Rating       float64   `json:"rating"`
	RatingsCount int       `json:"ratingsCount"`
	IssuedDate   time.Time `json:"issuedDate"`
	Genres       []string  `json:"genres"`
	Likes        int       `json:"likes"`
	Author       *Author   `json:"author,omitempty"`
}

// NewSummary projects a book and, when joined, its author.
func NewSummary(b *Book, author *Author) Summary {
	s := Summary{
		ID:           b.ID,
		Name:         b.Name,
		FilePath:     b.FilePath,
		Rating:       b.Rating,
		RatingsCount: b.RatingsCount,
		IssuedDate:   b.IssuedDate,
		Genres:       cloneStrings(b.Genres),
		Likes:        b.Likes,
	}
	if author != nil {
		a := *author
		s.Author = &a
	}
	return s
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s Summary) Clone() Summary {
	out := s
	out.Genres = cloneStrings(s.Genres)
	if s.Author != nil {
		a := *s.Author
		out.Author = &a
	}
	return out
}

// CloneSummaries deep-copies a result list, preserving order.
func CloneSummaries(in []Summary) []Summary {
	if in == nil {
		return nil
	}
	out := make([]Summary, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// CreateRequest represents the request to create book metadata
type CreateRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=255"`
	AuthorID int      `json:"authorId" validate:"required,gt=0"`
	Genres   []string `json:"genres" validate:"omitempty,dive,required,max=64"`
}

// UpdateRequest represents a partial update of the book's display fields
type UpdateRequest struct {
	Name   *string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Genres *[]string `json:"genres,omitempty" validate:"omitempty,dive,required,max=64"`
}

// Apply copies the non-nil fields of the request onto b.
func (r *UpdateRequest) Apply(b *Book) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Genres != nil {
		b.Genres = cloneStrings(*r.Genres)
	}
}
