package cli

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

func seedCatalog(h *harness) {
	h.srv.SeedBooks(
		types.Book{Title: "Maths A", Publisher: "Longhorn", Price: 500},
		types.Book{Title: "Maths B", Publisher: "Longhorn", Price: 100},
		types.Book{Title: "Maths C", Publisher: "Oxford", Price: 300},
		types.Book{Title: "English A", Publisher: "Oxford", Price: 200},
		types.Book{Title: "English B", Publisher: "Oxford", Price: 400},
		types.Book{Title: "Kiswahili", Publisher: "Longhorn", Price: 250},
	)
}

func TestBrowse_Session(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)

	script := strings.Join([]string{
		"limit 2",            // page 1 of 3
		"next",               // page 2
		"next",               // page 3
		"next",               // last page: no fetch
		"publisher longhorn", // back to page 1
		"prev",               // first page: no fetch
		"sort isbn",          // rejected locally
		"bogus",
		"page",
		"all",
		"quit",
	}, "\n") + "\n"

	res := h.run(script, "browse")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	reqs := h.srv.RequestsTo(http.MethodGet, "/api/filter")
	pages := make([]string, 0, len(reqs))
	for _, r := range reqs {
		pages = append(pages, r.Query.Get("page"))
	}
	// initial load, limit, next, next, publisher, all
	assert.Equal(t, []string{"1", "1", "2", "3", "1", "1"}, pages)
	assert.Equal(t, "longhorn", reqs[4].Query.Get("publisher"))
	assert.Empty(t, reqs[5].Query.Get("publisher"))
	assert.Equal(t, "2", reqs[5].Query.Get("limit"), "view all keeps the page size")

	assert.Contains(t, res.stdout, "Page 3 of 3")
	assert.Contains(t, res.stdout, "Error: "+types.ErrInvalidSort.Error())
	assert.Contains(t, res.stdout, `Unknown command "bogus"`)
	assert.Contains(t, res.stdout, "usage: page <n>")
}

func TestBrowse_PageRejectsNonPositive(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"not a number", "two"},
		{"two args", "1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			seedCatalog(h)

			res := h.run("limit 2\npage "+tt.arg+"\nquit\n", "browse")
			require.Equal(t, exitSuccess, res.code, res.stderr)

			reqs := h.srv.RequestsTo(http.MethodGet, "/api/filter")
			require.Len(t, reqs, 2, "initial load and limit only")
			assert.Equal(t, "1", reqs[1].Query.Get("page"))
			assert.Contains(t, res.stdout, "usage: page <n>")
			assert.NotContains(t, res.stdout, "Page "+tt.arg+" of")
		})
	}
}

func TestBrowse_DeleteNeedsLogin(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)

	res := h.run("delete 1\nquit\n", "browse")
	require.Equal(t, exitSuccess, res.code)
	assert.Contains(t, res.stdout, "Error: "+types.ErrAuthRequired.Error())
	assert.Empty(t, h.srv.RequestsTo(http.MethodDelete, "/api/books/1"))

	h.login("amina")
	h.srv.ResetRequests()
	res = h.run("delete 1\nquit\n", "browse")
	require.Equal(t, exitSuccess, res.code)
	assert.Contains(t, res.stdout, "Deleted book 1")
	assert.Len(t, h.srv.RequestsTo(http.MethodDelete, "/api/books/1"), 1)
	assert.Len(t, h.srv.RequestsTo(http.MethodGet, "/api/filter"), 2, "initial load and reload")
}

func TestBrowse_FailureKeepsSession(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)
	h.srv.FailNext(http.MethodGet, "/api/filter", http.StatusInternalServerError)

	res := h.run("show\nquit\n", "browse")
	require.Equal(t, exitSuccess, res.code)
	assert.Contains(t, res.stdout, "Request failed")
	assert.Contains(t, res.stdout, "No books found.")
}

func TestCart_Session(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)
	h.login("amina")

	script := strings.Join([]string{
		"create", // empty cart
		"search", // empty search
		"search maths",
		"add 1",
		"add 2",
		"add 1",    // duplicate
		"add 4",    // not in results
		"remove 9", // absent
		"remove 2",
		"create",
		"items",
		"history",
		"quit",
	}, "\n") + "\n"

	res := h.run(script, "cart")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	assert.Contains(t, res.stdout, "Error: "+types.ErrEmptyCart.Error())
	assert.Contains(t, res.stdout, "Error: "+types.ErrEmptySearch.Error())
	assert.Contains(t, res.stdout, "Book 1 is already in the cart.")
	assert.Contains(t, res.stdout, "Book 4 is not in the search results.")
	assert.Contains(t, res.stdout, "Invoice 1 for amina")
	assert.Contains(t, res.stdout, "Cart is empty.")

	creates := h.srv.RequestsTo(http.MethodPost, "/api/invoices")
	require.Len(t, creates, 1)
	assert.JSONEq(t, `{"book_ids":[1]}`, string(creates[0].Body))

	search := h.srv.RequestsTo(http.MethodGet, "/api/filter")
	require.Len(t, search, 1)
	assert.Equal(t, "maths", search[0].Query.Get("subject"))
	assert.Equal(t, "50", search[0].Query.Get("limit"))

	assert.Len(t, h.srv.RequestsTo(http.MethodGet, "/api/invoices"), 1)
}

func TestCart_WithoutLogin(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)

	res := h.run("search english\nadd 4\ncreate\nhistory\nquit\n", "cart")
	require.Equal(t, exitSuccess, res.code)
	assert.Contains(t, res.stdout, "Error: "+types.ErrAuthRequired.Error())
	assert.Contains(t, res.stdout, "Log in to see past invoices.")
	assert.Empty(t, h.srv.RequestsTo(http.MethodPost, "/api/invoices"))
	assert.Empty(t, h.srv.RequestsTo(http.MethodGet, "/api/invoices"))
}
