package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
	"github.com/booknest/catalog-service/internal/infrastructure/db"
)

type AuthorRepository struct {
	db *db.Database
}

func NewAuthorRepository(database *db.Database) ports.AuthorRepository {
	return &AuthorRepository{db: database}
}

func (r *AuthorRepository) GetByID(ctx context.Context, id int) (*book.Author, error) {
	var a book.Author
	query := `SELECT id, name, profile_pic_path FROM authors WHERE id = $1`

	if err := r.db.DB.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("author %d: %w", id, book.ErrAuthorNotFound)
		}
		return nil, fmt.Errorf("failed to get author by ID: %w", err)
	}
	return &a, nil
}
