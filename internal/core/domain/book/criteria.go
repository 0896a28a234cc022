package book

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	dateLayout    = "2006-01-02"
	listKeyPrefix = "books:list?"
)

type DateOperator string

const (
	DateNewer DateOperator = "newer"
	DateOlder DateOperator = "older"
)

type NumberOperator string

const (
	NumberGreater NumberOperator = "greater"
	NumberEqual   NumberOperator = "equal"
	NumberLess    NumberOperator = "less"
)

type JoinMode string

const (
	JoinWithout JoinMode = "without"
	JoinWith    JoinMode = "with"
)

type SortField string

const (
	SortByRating       SortField = "rating"
	SortByName         SortField = "name"
	SortByAuthor       SortField = "author"
	SortByRatingsCount SortField = "ratings_count"
	SortByIssuedDate   SortField = "issued_date"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchCriteria holds the filters of a book list request.
// Zero values mean "no filter".
type SearchCriteria struct {
	Name               string
	AuthorID           int
	AuthorName         string
	Genres             []string
	IssuedDate         *time.Time
	IssuedDateOperator DateOperator
	Rating             *float64
	RatingOperator     NumberOperator
	JoinModeForAuthor  JoinMode
}

// Page describes ordering and the requested slice of the result set.
type Page struct {
	SortField     SortField
	SortDirection SortDirection
	PageNum       int
	PageSize      int
}

func (p Page) Offset() int { return p.PageNum * p.PageSize }

// ParseListQuery builds criteria and paging from request query parameters,
// applying the catalog defaults. Every failure wraps ErrInvalidCriteria.
func ParseListQuery(q url.Values) (*SearchCriteria, *Page, error) {
	c := &SearchCriteria{
		Name:              strings.TrimSpace(q.Get("name")),
		AuthorName:        strings.TrimSpace(q.Get("authorName")),
		JoinModeForAuthor: JoinWithout,
	}

	if v := q.Get("authorId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return nil, nil, invalid("authorId must be a positive integer")
		}
		c.AuthorID = id
	}

	if v := q.Get("genres"); v != "" {
		c.Genres = normalizeGenres(strings.Split(v, ","))
	}

	if v := q.Get("issuedDate"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, invalid("date format is invalid, expected yyyy-MM-dd")
		}
		c.IssuedDate = &d
		c.IssuedDateOperator = DateNewer
		if op := q.Get("issuedDateOperator"); op != "" {
			switch DateOperator(strings.ToLower(op)) {
			case DateNewer, DateOlder:
				c.IssuedDateOperator = DateOperator(strings.ToLower(op))
			default:
				return nil, nil, invalid("unknown date operator: " + op)
			}
		}
	}

	if v := q.Get("rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, invalid("rating must be a number")
		}
		c.Rating = &r
		c.RatingOperator = NumberGreater
		if op := q.Get("ratingOperator"); op != "" {
			switch NumberOperator(strings.ToLower(op)) {
			case NumberGreater, NumberEqual, NumberLess:
				c.RatingOperator = NumberOperator(strings.ToLower(op))
			default:
				return nil, nil, invalid("unknown number operator: " + op)
			}
		}
	}

	if v := q.Get("joinModeForAuthor"); v != "" {
		switch JoinMode(strings.ToLower(v)) {
		case JoinWith, JoinWithout:
			c.JoinModeForAuthor = JoinMode(strings.ToLower(v))
		default:
			return nil, nil, invalid("unknown join mode: " + v)
		}
	}

	p, err := parsePage(q)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

func parsePage(q url.Values) (*Page, error) {
	p := &Page{SortField: SortByRating, SortDirection: SortDesc, PageSize: DefaultPageSize}

	if v := q.Get("sortField"); v != "" {
		switch SortField(strings.ToLower(v)) {
		case SortByRating, SortByName, SortByAuthor, SortByRatingsCount, SortByIssuedDate:
			p.SortField = SortField(strings.ToLower(v))
		default:
			return nil, invalid("unknown sort field: " + v)
		}
	}
	if v := q.Get("sortDirection"); v != "" {
		switch SortDirection(strings.ToLower(v)) {
		case SortAsc, SortDesc:
			p.SortDirection = SortDirection(strings.ToLower(v))
		default:
			return nil, invalid("invalid sort direction value")
		}
	}
	if v := q.Get("pageNum"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, invalid("pageNum must be a non-negative integer")
		}
		p.PageNum = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxPageSize {
			return nil, invalid(fmt.Sprintf("pageSize must be between 1 and %d", MaxPageSize))
		}
		p.PageSize = n
	}
	return p, nil
}

// ListKey derives the list-cache key for a request. Parameters are encoded with
// defaults applied and in sorted order, so requests that differ only in
// parameter order, case of enum values or genre order share a key.
func ListKey(c *SearchCriteria, p *Page) string {
	v := url.Values{}
	if c.Name != "" {
		v.Set("name", c.Name)
	}
	if c.AuthorID > 0 {
		v.Set("authorId", strconv.Itoa(c.AuthorID))
	}
	if c.AuthorName != "" {
		v.Set("authorName", c.AuthorName)
	}
	if len(c.Genres) > 0 {
		v.Set("genres", strings.Join(c.Genres, ","))
	}
	if c.IssuedDate != nil {
		v.Set("issuedDate", c.IssuedDate.Format(dateLayout))
		v.Set("issuedDateOperator", string(c.IssuedDateOperator))
	}
	if c.Rating != nil {
		v.Set("rating", strconv.FormatFloat(*c.Rating, 'f', -1, 64))
		v.Set("ratingOperator", string(c.RatingOperator))
	}
	v.Set("joinModeForAuthor", string(c.JoinModeForAuthor))
	v.Set("sortField", string(p.SortField))
	v.Set("sortDirection", string(p.SortDirection))
	v.Set("pageNum", strconv.Itoa(p.PageNum))
	v.Set("pageSize", strconv.Itoa(p.PageSize))
	return listKeyPrefix + v.Encode()
}

func normalizeGenres(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, g := range raw {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCriteria, msg)
}
