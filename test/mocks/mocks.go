package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/booknest/catalog-service/internal/core/domain/audit"
	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
)

// BookRepositoryMock is a lightweight mock for BookRepository
type BookRepositoryMock struct {
	CreateFn  func(ctx context.Context, b *book.Book) error
	GetByIDFn func(ctx context.Context, id int) (*book.Book, error)
	UpdateFn  func(ctx context.Context, b *book.Book) error
	DeleteFn  func(ctx context.Context, id int) error
	SearchFn  func(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error)
}

func (m *BookRepositoryMock) Create(ctx context.Context, b *book.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}
func (m *BookRepositoryMock) GetByID(ctx context.Context, id int) (*book.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("book %d: %w", id, book.ErrNotFound)
}
func (m *BookRepositoryMock) Update(ctx context.Context, b *book.Book) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, b)
	}
	return nil
}
func (m *BookRepositoryMock) Delete(ctx context.Context, id int) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
func (m *BookRepositoryMock) Search(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, c, p)
	}
	return []book.Summary{}, nil
}

// AuthorRepositoryMock is a lightweight mock for AuthorRepository
type AuthorRepositoryMock struct {
	GetByIDFn func(ctx context.Context, id int) (*book.Author, error)
}

func (m *AuthorRepositoryMock) GetByID(ctx context.Context, id int) (*book.Author, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("author %d: %w", id, book.ErrAuthorNotFound)
}

// BookFileStoreMock records removals and serves opens from OpenFn.
type BookFileStoreMock struct {
	OpenFn   func(relPath string) (*os.File, error)
	RemoveFn func(relPath string) error
	Removed  []string
}

func (m *BookFileStoreMock) Open(relPath string) (*os.File, error) {
	if m.OpenFn != nil {
		return m.OpenFn(relPath)
	}
	return nil, fmt.Errorf("file %q: %w", relPath, book.ErrNotFound)
}
func (m *BookFileStoreMock) Remove(relPath string) error {
	m.Removed = append(m.Removed, relPath)
	if m.RemoveFn != nil {
		return m.RemoveFn(relPath)
	}
	return nil
}

// CatalogServiceMock is a lightweight mock for CatalogService
type CatalogServiceMock struct {
	ListBooksFn    func(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error)
	GetBookFn      func(ctx context.Context, id int, joinMode book.JoinMode) (*book.Summary, error)
	CreateBookFn   func(ctx context.Context, req *book.CreateRequest) (*book.Book, error)
	UpdateBookFn   func(ctx context.Context, id int, req *book.UpdateRequest) (*book.Book, error)
	DeleteBookFn   func(ctx context.Context, id int) error
	OpenBookFileFn func(ctx context.Context, id int) (*os.File, error)
}

func (m *CatalogServiceMock) ListBooks(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error) {
	if m.ListBooksFn != nil {
		return m.ListBooksFn(ctx, c, p)
	}
	return []book.Summary{}, nil
}
func (m *CatalogServiceMock) GetBook(ctx context.Context, id int, joinMode book.JoinMode) (*book.Summary, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, id, joinMode)
	}
	return nil, book.ErrNotFound
}
func (m *CatalogServiceMock) CreateBook(ctx context.Context, req *book.CreateRequest) (*book.Book, error) {
	if m.CreateBookFn != nil {
		return m.CreateBookFn(ctx, req)
	}
	return &book.Book{ID: 1, Name: req.Name, AuthorID: req.AuthorID, Genres: req.Genres}, nil
}
func (m *CatalogServiceMock) UpdateBook(ctx context.Context, id int, req *book.UpdateRequest) (*book.Book, error) {
	if m.UpdateBookFn != nil {
		return m.UpdateBookFn(ctx, id, req)
	}
	return nil, book.ErrNotFound
}
func (m *CatalogServiceMock) DeleteBook(ctx context.Context, id int) error {
	if m.DeleteBookFn != nil {
		return m.DeleteBookFn(ctx, id)
	}
	return nil
}
func (m *CatalogServiceMock) OpenBookFile(ctx context.Context, id int) (*os.File, error) {
	if m.OpenBookFileFn != nil {
		return m.OpenBookFileFn(ctx, id)
	}
	return nil, book.ErrNotFound
}

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, subject, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, subject string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, subject)
	}
	return true, 99, 100, time.Now().Add(time.Minute), nil
}

// HealthCheckerMock is a named probe returning Err.
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }

// AuditRepositoryMock keeps created entries in memory.
type AuditRepositoryMock struct {
	mu      sync.Mutex
	Created []*audit.AuditLog
	ListFn  func(ctx context.Context, filter *audit.AuditLogFilter) ([]*audit.AuditLog, error)
	CountFn func(ctx context.Context, filter *audit.AuditLogFilter) (int, error)
	Err     error
}

func (m *AuditRepositoryMock) Create(ctx context.Context, log *audit.AuditLog) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, log)
	return nil
}

func (m *AuditRepositoryMock) List(ctx context.Context, filter *audit.AuditLogFilter) ([]*audit.AuditLog, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*audit.AuditLog(nil), m.Created...), nil
}

func (m *AuditRepositoryMock) Count(ctx context.Context, filter *audit.AuditLogFilter) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Created), nil
}

// AuditServiceMock records every LogAction request.
type AuditServiceMock struct {
	mu             sync.Mutex
	Logged         []*audit.CreateAuditLogRequest
	LogActionErr   error
	GetAuditLogsFn func(ctx context.Context, filter *audit.AuditLogFilter) ([]*audit.AuditLog, int, error)
}

func (m *AuditServiceMock) LogAction(ctx context.Context, req *audit.CreateAuditLogRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logged = append(m.Logged, req)
	return m.LogActionErr
}

func (m *AuditServiceMock) GetAuditLogs(ctx context.Context, filter *audit.AuditLogFilter) ([]*audit.AuditLog, int, error) {
	if m.GetAuditLogsFn != nil {
		return m.GetAuditLogsFn(ctx, filter)
	}
	return []*audit.AuditLog{}, 0, nil
}

// Requests returns a copy of the recorded requests.
func (m *AuditServiceMock) Requests() []*audit.CreateAuditLogRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*audit.CreateAuditLogRequest(nil), m.Logged...)
}

var (
	_ ports.BookRepository      = (*BookRepositoryMock)(nil)
	_ ports.AuthorRepository    = (*AuthorRepositoryMock)(nil)
	_ ports.BookFileStore       = (*BookFileStoreMock)(nil)
	_ ports.CatalogService      = (*CatalogServiceMock)(nil)
	_ ports.RateLimitRepository = (*RateLimitRepositoryMock)(nil)
	_ ports.RateLimiterService  = (*RateLimiterServiceMock)(nil)
	_ ports.HealthChecker       = (*HealthCheckerMock)(nil)
	_ ports.AuditRepository     = (*AuditRepositoryMock)(nil)
	_ ports.AuditService        = (*AuditServiceMock)(nil)
)
