package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	impl "github.com/booknest/catalog-service/internal/application/services"
	"github.com/booknest/catalog-service/internal/core/domain/book"
	tmocks "github.com/booknest/catalog-service/test/mocks"
)

func TestCreateBook_UnknownAuthor(t *testing.T) {
	created := false
	repo := &tmocks.BookRepositoryMock{CreateFn: func(ctx context.Context, b *book.Book) error {
		created = true
		return nil
	}}
	svc := impl.NewCatalogService(repo, &tmocks.AuthorRepositoryMock{}, &tmocks.BookFileStoreMock{}, nil)

	_, err := svc.CreateBook(context.Background(), &book.CreateRequest{Name: "n", AuthorID: 7})
	require.Error(t, err)
	require.True(t, errors.Is(err, book.ErrAuthorNotFound))
	require.False(t, created)
}

func TestCreateBook_AssignsID(t *testing.T) {
	repo := &tmocks.BookRepositoryMock{CreateFn: func(ctx context.Context, b *book.Book) error {
		b.ID = 42
		return nil
	}}
	authors := &tmocks.AuthorRepositoryMock{GetByIDFn: func(ctx context.Context, id int) (*book.Author, error) {
		return &book.Author{ID: id, Name: "Tolkien"}, nil
	}}
	svc := impl.NewCatalogService(repo, authors, &tmocks.BookFileStoreMock{}, nil)

	b, err := svc.CreateBook(context.Background(), &book.CreateRequest{Name: "The Hobbit", AuthorID: 3, Genres: []string{"Fantasy"}})
	require.NoError(t, err)
	require.Equal(t, 42, b.ID)
	require.Equal(t, 3, b.AuthorID)
	require.Equal(t, []string{"Fantasy"}, b.Genres)
}

func TestGetBook_JoinsAuthorOnlyWhenAsked(t *testing.T) {
	repo := &tmocks.BookRepositoryMock{GetByIDFn: func(ctx context.Context, id int) (*book.Book, error) {
		return &book.Book{ID: id, Name: "n", AuthorID: 5}, nil
	}}
	calls := 0
	authors := &tmocks.AuthorRepositoryMock{GetByIDFn: func(ctx context.Context, id int) (*book.Author, error) {
		calls++
		return &book.Author{ID: id, Name: "a"}, nil
	}}
	svc := impl.NewCatalogService(repo, authors, nil, nil)

	s, err := svc.GetBook(context.Background(), 1, book.JoinWithout)
	require.NoError(t, err)
	require.Nil(t, s.Author)
	require.Equal(t, 0, calls)

	s, err = svc.GetBook(context.Background(), 1, book.JoinWith)
	require.NoError(t, err)
	require.NotNil(t, s.Author)
	require.Equal(t, 5, s.Author.ID)
}

func TestUpdateBook_AppliesPartialRequest(t *testing.T) {
	var saved *book.Book
	repo := &tmocks.BookRepositoryMock{
		GetByIDFn: func(ctx context.Context, id int) (*book.Book, error) {
			return &book.Book{ID: id, Name: "Old", Genres: []string{"Horror"}, Rating: 4.2}, nil
		},
		UpdateFn: func(ctx context.Context, b *book.Book) error {
			saved = b
			return nil
		},
	}
	svc := impl.NewCatalogService(repo, &tmocks.AuthorRepositoryMock{}, nil, nil)

	name := "New"
	b, err := svc.UpdateBook(context.Background(), 9, &book.UpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New", b.Name)
	require.Equal(t, []string{"Horror"}, saved.Genres)
	require.InDelta(t, 4.2, saved.Rating, 1e-9)
}

func TestUpdateBook_NotFound(t *testing.T) {
	svc := impl.NewCatalogService(&tmocks.BookRepositoryMock{}, &tmocks.AuthorRepositoryMock{}, nil, nil)
	name := "x"
	_, err := svc.UpdateBook(context.Background(), 1, &book.UpdateRequest{Name: &name})
	require.True(t, errors.Is(err, book.ErrNotFound))
}

func TestDeleteBook_RemovesFileBestEffort(t *testing.T) {
	deleted := 0
	repo := &tmocks.BookRepositoryMock{
		GetByIDFn: func(ctx context.Context, id int) (*book.Book, error) {
			return &book.Book{ID: id, FilePath: "a/b.pdf"}, nil
		},
		DeleteFn: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	files := &tmocks.BookFileStoreMock{RemoveFn: func(string) error { return fmt.Errorf("disk on fire") }}
	svc := impl.NewCatalogService(repo, &tmocks.AuthorRepositoryMock{}, files, nil)

	require.NoError(t, svc.DeleteBook(context.Background(), 11))
	require.Equal(t, 11, deleted)
	require.Equal(t, []string{"a/b.pdf"}, files.Removed)
}

func TestDeleteBook_MissingBookLeavesFilesAlone(t *testing.T) {
	files := &tmocks.BookFileStoreMock{}
	svc := impl.NewCatalogService(&tmocks.BookRepositoryMock{}, &tmocks.AuthorRepositoryMock{}, files, nil)

	err := svc.DeleteBook(context.Background(), 1)
	require.True(t, errors.Is(err, book.ErrNotFound))
	require.Empty(t, files.Removed)
}

func TestOpenBookFile_NoPath(t *testing.T) {
	repo := &tmocks.BookRepositoryMock{GetByIDFn: func(ctx context.Context, id int) (*book.Book, error) {
		return &book.Book{ID: id}, nil
	}}
	svc := impl.NewCatalogService(repo, &tmocks.AuthorRepositoryMock{}, &tmocks.BookFileStoreMock{}, nil)
	_, err := svc.OpenBookFile(context.Background(), 1)
	require.True(t, errors.Is(err, book.ErrNotFound))
}

func TestListBooks_WrapsRepositoryError(t *testing.T) {
	boom := errors.New("db down")
	repo := &tmocks.BookRepositoryMock{SearchFn: func(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error) {
		return nil, boom
	}}
	svc := impl.NewCatalogService(repo, &tmocks.AuthorRepositoryMock{}, nil, nil)
	c, p, err := book.ParseListQuery(nil)
	require.NoError(t, err)

	_, err = svc.ListBooks(context.Background(), c, p)
	require.True(t, errors.Is(err, boom))
}
