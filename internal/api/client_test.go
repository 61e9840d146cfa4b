package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/apitest"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// staticTokens is a TokenSource with a fixed credential.
type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, srv *apitest.Server, token string) *Client {
	t.Helper()
	c, err := New(srv.Config(), staticTokens(token))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(types.Config{APIURL: ""}, nil)
	assert.ErrorIs(t, err, types.ErrAPIURLEmpty)
}

func TestAuthEndpointsNeverCarryCredential(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv, "stale-token")
	ctx := context.Background()

	msg, err := c.Register(ctx, "amina", "secret")
	require.NoError(t, err)
	assert.Contains(t, msg, "amina")

	token, err := c.Login(ctx, "amina", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	for _, path := range []string{"/api/register", "/api/login"} {
		reqs := srv.RequestsTo(http.MethodPost, path)
		require.Len(t, reqs, 1, path)
		assert.Empty(t, reqs[0].Authorization, "%s must not carry a credential", path)
	}
}

func TestCredentialAttachedWhenPresent(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedBooks(types.Book{Title: "Maths"})
	ctx := context.Background()

	withToken := newTestClient(t, srv, "abc")
	_, err := withToken.ListBooks(ctx)
	require.NoError(t, err)

	without := newTestClient(t, srv, "")
	_, err = without.ListBooks(ctx)
	require.NoError(t, err)

	reqs := srv.RequestsTo(http.MethodGet, "/api/books")
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer abc", reqs[0].Authorization)
	assert.Empty(t, reqs[1].Authorization)
}

func TestNilTokenSource(t *testing.T) {
	srv := apitest.NewServer(t)
	c, err := New(srv.Config(), nil)
	require.NoError(t, err)

	_, err = c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, srv.Requests()[0].Authorization)
}

func TestRequestIDHeader(t *testing.T) {
	ids := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(HeaderRequestID)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c, err := New(types.Config{APIURL: ts.URL}, nil)
	require.NoError(t, err)
	_, err = c.ListBooks(context.Background())
	require.NoError(t, err)

	got := <-ids
	_, err = uuid.Parse(got)
	assert.NoError(t, err, "request id %q should be a UUID", got)
}

func TestBookCRUD(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("admin", "pw")
	c := newTestClient(t, srv, srv.IssueToken("admin"))
	ctx := context.Background()

	created, err := c.CreateBook(ctx, types.BookInput{Title: "Blossoms", Publisher: "KLB", Price: 350})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Blossoms", created.Title)

	got, err := c.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	in := got.Input()
	in.Price = 400
	updated, err := c.UpdateBook(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.Price)

	require.NoError(t, c.DeleteBook(ctx, created.ID))
	_, err = c.GetBook(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestProtectedCallWithoutCredential(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv, "")

	err := c.DeleteBook(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.True(t, IsClientError(err))
}

func TestFilterBooksQueryString(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedBooks(
		types.Book{Title: "Primary math 1", Price: 300},
		types.Book{Title: "Primary math 2", Price: 500},
		types.Book{Title: "English", Price: 100},
	)
	c := newTestClient(t, srv, "")

	page, err := c.FilterBooks(context.Background(), types.Query{
		Subject: "math", Sort: types.SortPrice, Direction: types.DirDesc, Page: 1, Limit: 5,
	})
	require.NoError(t, err)

	reqs := srv.RequestsTo(http.MethodGet, "/api/filter")
	require.Len(t, reqs, 1)
	q := reqs[0].Query
	assert.Len(t, q, 5)
	assert.Equal(t, "math", q.Get("subject"))
	assert.Equal(t, "price", q.Get("sort"))
	assert.Equal(t, "desc", q.Get("direction"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.False(t, q.Has("publisher"))
	assert.False(t, q.Has("level"))

	require.Len(t, page.Books, 2)
	assert.Equal(t, "Primary math 2", page.Books[0].Title)
	assert.Equal(t, 1, page.TotalPages)
}

func TestFilterBooksRejectsOtherShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare list", body: `[{"id": 1, "title": "x"}]`},
		{name: "object without data", body: `{"total_pages": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c, err := New(types.Config{APIURL: ts.URL}, nil)
			require.NoError(t, err)
			_, err = c.FilterBooks(context.Background(), types.DefaultQuery())
			assert.Error(t, err)
		})
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv, "")

	_, err := c.Login(context.Background(), "nobody", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid username or password", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "POST /api/login: 401")
}

func TestErrorMessageFromPlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	c, err := New(types.Config{APIURL: ts.URL}, nil)
	require.NoError(t, err)
	_, err = c.ListBooks(context.Background())
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.False(t, IsClientError(err))
}

func TestLoginWithoutToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := New(types.Config{APIURL: ts.URL}, nil)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNoAccessToken)
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(types.Config{APIURL: url}, nil)
	require.NoError(t, err)
	_, err = c.ListBooks(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
}

func TestRateLimitedClientStillServes(t *testing.T) {
	srv := apitest.NewServer(t)
	cfg := srv.Config()
	cfg.RateLimit = 1000
	c, err := New(cfg, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.ListBooks(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, srv.Requests(), 3)
}

func TestInvoices(t *testing.T) {
	srv := apitest.NewServer(t)
	books := srv.SeedBooks(types.Book{Title: "A", Price: 100}, types.Book{Title: "B", Price: 250})
	c := newTestClient(t, srv, srv.IssueToken("kamau"))
	ctx := context.Background()

	inv, err := c.CreateInvoice(ctx, []int{books[1].ID, books[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "kamau", inv.UserName)
	assert.Equal(t, 350.0, inv.TotalPrice)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, books[1].ID, inv.Items[0].BookID)

	reqs := srv.RequestsTo(http.MethodPost, "/api/invoices")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"book_ids":[2,1]}`, string(reqs[0].Body))

	list, err := c.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inv.ID, list[0].ID)

	detail, err := c.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 2)
}
