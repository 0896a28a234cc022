package ports

import (
	"context"
	"os"

	"github.com/booknest/catalog-service/internal/core/domain/book"
)

// BookRepository defines the interface for book data operations
type BookRepository interface {
	Create(ctx context.Context, b *book.Book) error
	GetByID(ctx context.Context, id int) (*book.Book, error)
	Update(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, id int) error
	// Search returns one page of summaries matching criteria, ordered by page.
	Search(ctx context.Context, criteria *book.SearchCriteria, page *book.Page) ([]book.Summary, error)
}

// AuthorRepository resolves book authors.
type AuthorRepository interface {
	GetByID(ctx context.Context, id int) (*book.Author, error)
}

// BookFileStore resolves and removes stored book files.
type BookFileStore interface {
	Open(relPath string) (*os.File, error)
	Remove(relPath string) error
}

// CatalogService defines the interface for book catalog business logic
type CatalogService interface {
	ListBooks(ctx context.Context, criteria *book.SearchCriteria, page *book.Page) ([]book.Summary, error)
	GetBook(ctx context.Context, id int, joinMode book.JoinMode) (*book.Summary, error)
	CreateBook(ctx context.Context, req *book.CreateRequest) (*book.Book, error)
	UpdateBook(ctx context.Context, id int, req *book.UpdateRequest) (*book.Book, error)
	DeleteBook(ctx context.Context, id int) error
	OpenBookFile(ctx context.Context, id int) (*os.File, error)
}
