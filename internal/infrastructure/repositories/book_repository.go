package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
	"github.com/booknest/catalog-service/internal/infrastructure/db"
)

// BookRepository implements ports.BookRepository on postgres.
type BookRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewBookRepository(database *db.Database, logger *logrus.Logger) ports.BookRepository {
	return &BookRepository{db: database, logger: logger}
}

// bookRow mirrors the books table; genres need pq's array scanner.
type bookRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	FilePath     string         `db:"file_path"`
	Rating       float64        `db:"rating"`
	RatingsCount int            `db:"ratings_count"`
	IssuedDate   time.Time      `db:"issued_date"`
	Genres       pq.StringArray `db:"genres"`
	Likes        int            `db:"likes"`
	AuthorID     int            `db:"author_id"`
}

func (r bookRow) toBook() *book.Book {
	return &book.Book{
		ID:           r.ID,
		Name:         r.Name,
		FilePath:     r.FilePath,
		Rating:       r.Rating,
		RatingsCount: r.RatingsCount,
		IssuedDate:   r.IssuedDate,
		Genres:       []string(r.Genres),
		Likes:        r.Likes,
		AuthorID:     r.AuthorID,
	}
}

// searchRow is a book row plus the optional author join.
type searchRow struct {
	bookRow
	AuthorJoinID  sql.NullInt64  `db:"a_id"`
	AuthorName    sql.NullString `db:"a_name"`
	AuthorPicPath sql.NullString `db:"a_profile_pic_path"`
}

const bookColumns = `b.id, b.name, b.file_path, b.rating, b.ratings_count, b.issued_date, b.genres, b.likes, b.author_id`

func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	query := `
		INSERT INTO books (name, file_path, rating, ratings_count, issued_date, genres, likes, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	issued := b.IssuedDate
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	err := r.db.DB.QueryRowxContext(ctx, query,
		b.Name, b.FilePath, b.Rating, b.RatingsCount, issued, pq.Array(b.Genres), b.Likes, b.AuthorID,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	b.IssuedDate = issued
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int) (*book.Book, error) {
	var row bookRow
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1`

	if err := r.db.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, book.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return row.toBook(), nil
}

// Update persists the mutable display fields of b.
func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	query := `UPDATE books SET name = $2, genres = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, b.ID, b.Name, pq.Array(b.Genres))
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("book %d: %w", b.ID, book.ErrNotFound)
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, book.ErrNotFound)
	}
	return nil
}

func (r *BookRepository) Search(ctx context.Context, c *book.SearchCriteria, p *book.Page) ([]book.Summary, error) {
	query, args := buildSearchQuery(c, p)

	var rows []searchRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	out := make([]book.Summary, 0, len(rows))
	for i := range rows {
		var author *book.Author
		if c.JoinModeForAuthor == book.JoinWith && rows[i].AuthorJoinID.Valid {
			author = &book.Author{
				ID:             int(rows[i].AuthorJoinID.Int64),
				Name:           rows[i].AuthorName.String,
				ProfilePicPath: rows[i].AuthorPicPath.String,
			}
		}
		out = append(out, book.NewSummary(rows[i].bookRow.toBook(), author))
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"rows": len(out), "page": p.PageNum, "size": p.PageSize}).Debug("book search executed")
	}
	return out, nil
}

var sortColumns = map[book.SortField]string{
	book.SortByRating:       "b.rating",
	book.SortByName:         "b.name",
	book.SortByAuthor:       "a.name",
	book.SortByRatingsCount: "b.ratings_count",
	book.SortByIssuedDate:   "b.issued_date",
}

// buildSearchQuery renders the filtered, ordered and paginated search as SQL with
// positional arguments. The authors table is joined only when a filter, the sort
// or the requested projection needs it.
func buildSearchQuery(c *book.SearchCriteria, p *book.Page) (string, []any) {
	needsAuthor := c.JoinModeForAuthor == book.JoinWith || c.AuthorName != "" || p.SortField == book.SortByAuthor

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(bookColumns)
	if needsAuthor {
		sb.WriteString(", a.id AS a_id, a.name AS a_name, a.profile_pic_path AS a_profile_pic_path FROM books b JOIN authors a ON a.id = b.author_id")
	} else {
		sb.WriteString(", NULL::int AS a_id, NULL::text AS a_name, NULL::text AS a_profile_pic_path FROM books b")
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.Name != "" {
		where = append(where, "b.name ILIKE "+arg("%"+c.Name+"%"))
	}
	if c.AuthorID > 0 {
		where = append(where, "b.author_id = "+arg(c.AuthorID))
	}
	if c.AuthorName != "" {
		where = append(where, "a.name ILIKE "+arg("%"+c.AuthorName+"%"))
	}
	if len(c.Genres) > 0 {
		where = append(where, "b.genres @> "+arg(pq.Array(c.Genres)))
	}
	if c.IssuedDate != nil {
		op := ">"
		if c.IssuedDateOperator == book.DateOlder {
			op = "<"
		}
		where = append(where, "b.issued_date "+op+" "+arg(*c.IssuedDate))
	}
	if c.Rating != nil {
		op := ">"
		switch c.RatingOperator {
		case book.NumberEqual:
			op = "="
		case book.NumberLess:
			op = "<"
		}
		where = append(where, "b.rating "+op+" "+arg(*c.Rating))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	col, ok := sortColumns[p.SortField]
	if !ok {
		col = sortColumns[book.SortByRating]
	}
	dir := "DESC"
	if p.SortDirection == book.SortAsc {
		dir = "ASC"
	}
	// b.id keeps pages stable when the sort column has ties.
	fmt.Fprintf(&sb, " ORDER BY %s %s, b.id ASC", col, dir)
	sb.WriteString(" LIMIT " + arg(p.PageSize))
	sb.WriteString(" OFFSET " + arg(p.Offset()))

	return sb.String(), args
}
