package book_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/booknest/catalog-service/internal/core/domain/book"
)

func TestParseListQuery_Defaults(t *testing.T) {
	c, p, err := book.ParseListQuery(url.Values{})
	require.NoError(t, err)
	require.Equal(t, book.JoinWithout, c.JoinModeForAuthor)
	require.Nil(t, c.Rating)
	require.Nil(t, c.IssuedDate)
	require.Equal(t, book.SortByRating, p.SortField)
	require.Equal(t, book.SortDesc, p.SortDirection)
	require.Equal(t, 0, p.PageNum)
	require.Equal(t, book.DefaultPageSize, p.PageSize)
}

func TestParseListQuery_OperatorsDefaultWhenValueGiven(t *testing.T) {
	q := url.Values{"rating": {"4.5"}, "issuedDate": {"2006-03-23"}}
	c, _, err := book.ParseListQuery(q)
	require.NoError(t, err)
	require.NotNil(t, c.Rating)
	require.InDelta(t, 4.5, *c.Rating, 1e-9)
	require.Equal(t, book.NumberGreater, c.RatingOperator)
	require.Equal(t, book.DateNewer, c.IssuedDateOperator)
	require.Equal(t, "2006-03-23", c.IssuedDate.Format("2006-01-02"))
}

func TestParseListQuery_RejectsBadInput(t *testing.T) {
	cases := []url.Values{
		{"issuedDate": {"23.03.2006"}},
		{"rating": {"five"}},
		{"rating": {"3"}, "ratingOperator": {"around"}},
		{"sortField": {"popularity"}},
		{"sortDirection": {"up"}},
		{"pageSize": {"0"}},
		{"pageSize": {"1000"}},
		{"pageNum": {"-1"}},
		{"authorId": {"abc"}},
		{"joinModeForAuthor": {"maybe"}},
	}
	for _, q := range cases {
		_, _, err := book.ParseListQuery(q)
		require.Error(t, err, q.Encode())
		require.True(t, errors.Is(err, book.ErrInvalidCriteria), q.Encode())
	}
}

func TestListKey_NormalizesEquivalentRequests(t *testing.T) {
	a := url.Values{"genres": {"Horror, Adventure"}, "sortDirection": {"DESC"}, "name": {"ring"}}
	b := url.Values{"name": {" ring "}, "genres": {"Adventure,Horror,Horror"}}

	ca, pa, err := book.ParseListQuery(a)
	require.NoError(t, err)
	cb, pb, err := book.ParseListQuery(b)
	require.NoError(t, err)

	require.Equal(t, book.ListKey(ca, pa), book.ListKey(cb, pb))
}

func TestListKey_DistinctRequestsDoNotCollide(t *testing.T) {
	queries := []url.Values{
		{},
		{"pageNum": {"1"}},
		{"pageSize": {"10"}},
		{"sortDirection": {"asc"}},
		{"sortField": {"name"}},
		{"joinModeForAuthor": {"with"}},
		{"rating": {"3"}},
		{"rating": {"3"}, "ratingOperator": {"less"}},
		{"genres": {"Horror"}},
	}
	seen := map[string]string{}
	for _, q := range queries {
		c, p, err := book.ParseListQuery(q)
		require.NoError(t, err)
		key := book.ListKey(c, p)
		prev, dup := seen[key]
		require.False(t, dup, "%q collides with %q", q.Encode(), prev)
		seen[key] = q.Encode()
	}
}

func TestSummaryClone_DoesNotShareState(t *testing.T) {
	s := book.Summary{ID: 1, Name: "n", Genres: []string{"a"}, Author: &book.Author{ID: 2, Name: "x"}}
	c := s.Clone()
	c.Genres[0] = "changed"
	c.Author.Name = "changed"
	require.Equal(t, "a", s.Genres[0])
	require.Equal(t, "x", s.Author.Name)
}

func TestUpdateRequestApply(t *testing.T) {
	name := "New"
	genres := []string{"Drama"}
	b := &book.Book{ID: 1, Name: "Old", Genres: []string{"Horror"}, Rating: 4}
	(&book.UpdateRequest{Name: &name}).Apply(b)
	require.Equal(t, "New", b.Name)
	require.Equal(t, []string{"Horror"}, b.Genres)

	(&book.UpdateRequest{Genres: &genres}).Apply(b)
	require.Equal(t, []string{"Drama"}, b.Genres)
	require.InDelta(t, 4.0, b.Rating, 1e-9)
}
