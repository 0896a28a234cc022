package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
)

// CatalogService implements the book catalog use cases. List caching lives in the
// repository passed in (see repositories.CachingBookRepository).
type CatalogService struct {
	books   ports.BookRepository
	authors ports.AuthorRepository
	files   ports.BookFileStore
	logger  *logrus.Logger
}

func NewCatalogService(books ports.BookRepository, authors ports.AuthorRepository, files ports.BookFileStore, logger *logrus.Logger) ports.CatalogService {
	return &CatalogService{books: books, authors: authors, files: files, logger: logger}
}

func (s *CatalogService) ListBooks(ctx context.Context, criteria *book.SearchCriteria, page *book.Page) ([]book.Summary, error) {
	items, err := s.books.Search(ctx, criteria, page)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"page": page.PageNum, "size": page.PageSize}).WithError(err).Error("failed to list books")
		}
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return items, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id int, joinMode book.JoinMode) (*book.Summary, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var author *book.Author
	if joinMode == book.JoinWith {
		author, err = s.authors.GetByID(ctx, b.AuthorID)
		if err != nil && !errors.Is(err, book.ErrAuthorNotFound) {
			return nil, fmt.Errorf("failed to load author: %w", err)
		}
	}
	summary := book.NewSummary(b, author)
	return &summary, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, req *book.CreateRequest) (*book.Book, error) {
	if _, err := s.authors.GetByID(ctx, req.AuthorID); err != nil {
		return nil, err
	}
	b := &book.Book{
		Name:     req.Name,
		AuthorID: req.AuthorID,
		Genres:   append([]string(nil), req.Genres...),
	}
	if err := s.books.Create(ctx, b); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"name": req.Name, "author_id": req.AuthorID}).WithError(err).Error("failed to create book in repo")
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": b.ID, "name": b.Name}).Info("book created")
	}
	return b, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, id int, req *book.UpdateRequest) (*book.Book, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(b)
	if err := s.books.Update(ctx, b); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"id": id}).WithError(err).Error("failed to update book in repo")
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": id, "name": b.Name}).Info("book updated")
	}
	return b, nil
}

// DeleteBook removes the book row and then its stored file. A file that cannot be
// removed is logged and otherwise ignored.
func (s *CatalogService) DeleteBook(ctx context.Context, id int) error {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if b.FilePath != "" && s.files != nil {
		if err := s.files.Remove(b.FilePath); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"id": id, "path": b.FilePath}).WithError(err).Warn("failed to remove book file")
		}
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": id}).Info("book deleted")
	}
	return nil
}

func (s *CatalogService) OpenBookFile(ctx context.Context, id int) (*os.File, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.FilePath == "" || s.files == nil {
		return nil, fmt.Errorf("book %d has no file: %w", id, book.ErrNotFound)
	}
	return s.files.Open(b.FilePath)
}
