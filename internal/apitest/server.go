// Package apitest runs an in-process fake of the bookstore API for tests.
// It keeps books, users and invoices in memory, records every request it
// receives, and can be told to fail the next call to a route.
package apitest

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Request is one request as received by the fake.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          []byte
}

// Server is the fake bookstore API.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]string
	tokens        map[string]string
	books         map[int]types.Book
	nextBookID    int
	invoices      []types.Invoice
	invoiceOwner  map[int]string
	nextInvoiceID int
	requests      []Request
	failures      map[string]int
	now           func() time.Time
}

// signingKey signs the fake's tokens. The client never verifies them.
var signingKey = []byte("apitest")

// NewServer starts a fake and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:         map[string]string{},
		tokens:        map[string]string{},
		books:         map[int]types.Book{},
		nextBookID:    1,
		invoiceOwner:  map[int]string{},
		nextInvoiceID: 1,
		failures:      map[string]int{},
		now:           func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Config returns a client config pointing at the fake.
func (s *Server) Config() types.Config {
	return types.Config{APIURL: s.URL}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/books", s.handleListBooks)
		r.Get("/books/{id}", s.handleGetBook)
		r.Get("/filter", s.handleFilter)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/books", s.handleCreateBook)
			r.Put("/books/{id}", s.handleUpdateBook)
			r.Delete("/books/{id}", s.handleDeleteBook)
			r.Post("/invoices", s.handleCreateInvoice)
			r.Get("/invoices", s.handleListInvoices)
			r.Get("/invoices/{id}", s.handleGetInvoice)
		})
	})
	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// IssueToken returns a valid token for username without a login request.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(username)
}

// SeedBooks adds books, assigning IDs in order, and returns them.
func (s *Server) SeedBooks(books ...types.Book) []types.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Book, 0, len(books))
	for _, b := range books {
		b.ID = s.nextBookID
		s.nextBookID++
		s.books[b.ID] = b
		out = append(out, b)
	}
	return out
}

// Book returns a stored book.
func (s *Server) Book(id int) (types.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

// FailNext makes the next request to method and path answer status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received for method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// record logs the request and applies any injected failure.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		key := r.Method + " " + r.URL.Path
		status, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a token the fake issued.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		user, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		r.Header.Set("X-Apitest-User", user)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) issueTokenLocked(username string) string {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": s.now().Unix(),
		"exp": s.now().Add(time.Hour).Unix(),
		"jti": strconv.Itoa(len(s.tokens) + 1),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = username
	return token
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username already taken"})
		return
	}
	s.users[in.Username] = in.Password
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User '" + in.Username + "' registered successfully."})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.users[in.Username]; !ok || pw != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": s.issueTokenLocked(in.Username)})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	books := s.sortedBooksLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	b, found := s.books[id]
	s.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No book found with ID " + strconv.Itoa(id)})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var in types.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"Missing data for required field."}})
		return
	}
	s.mu.Lock()
	b := bookFromInput(s.nextBookID, in)
	s.nextBookID++
	s.books[b.ID] = b
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in types.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.books[id]; !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	b := bookFromInput(id, in)
	s.books[id] = b
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.books[id]; !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	delete(s.books, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book " + strconv.Itoa(id) + " deleted"})
}

// handleFilter matches publisher and level by case-insensitive substring and
// subject against the title, then sorts and paginates.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	publisher := strings.ToLower(strings.TrimSpace(q.Get("publisher")))
	level := strings.ToLower(strings.TrimSpace(q.Get("level")))
	subject := strings.ToLower(strings.TrimSpace(q.Get("subject")))
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	if limit < 1 {
		limit = 10
	}

	s.mu.Lock()
	var matched []types.Book
	for _, b := range s.sortedBooksLocked() {
		if publisher != "" && !strings.Contains(strings.ToLower(b.Publisher), publisher) {
			continue
		}
		if level != "" && !strings.Contains(strings.ToLower(b.Level), level) {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(b.Title), subject) {
			continue
		}
		matched = append(matched, b)
	}
	s.mu.Unlock()

	desc := q.Get("direction") == types.DirDesc
	byPrice := q.Get("sort") == types.SortPrice
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if byPrice {
			if desc {
				return a.Price > b.Price
			}
			return a.Price < b.Price
		}
		if desc {
			return a.Title > b.Title
		}
		return a.Title < b.Title
	})

	total := len(matched)
	pages := int(math.Ceil(float64(total) / float64(limit)))
	start := (page - 1) * limit
	data := []types.Book{}
	if start >= 0 && start < total {
		end := min(start+limit, total)
		data = matched[start:end]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":        page,
		"limit":       limit,
		"total_count": total,
		"total_pages": pages,
		"data":        data,
	})
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		BookIDs []int `json:"book_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.BookIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'book_ids' array"})
		return
	}
	user := r.Header.Get("X-Apitest-User")

	s.mu.Lock()
	defer s.mu.Unlock()
	inv := types.Invoice{ID: s.nextInvoiceID, UserName: user}
	for _, id := range in.BookIDs {
		b, ok := s.books[id]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Some book IDs not found"})
			return
		}
		inv.Items = append(inv.Items, types.InvoiceItem{BookID: b.ID, Title: b.Title, BookPrice: b.Price, Quantity: 1})
		inv.TotalPrice += b.Price
	}
	created := s.now().Add(time.Duration(s.nextInvoiceID) * time.Minute)
	inv.CreatedAt = types.Timestamp{Time: created, Raw: created.Format("2006-01-02T15:04:05")}
	s.nextInvoiceID++
	s.invoices = append(s.invoices, inv)
	s.invoiceOwner[inv.ID] = user
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Apitest-User")
	s.mu.Lock()
	out := []types.Invoice{}
	for i := len(s.invoices) - 1; i >= 0; i-- {
		inv := s.invoices[i]
		if s.invoiceOwner[inv.ID] != user {
			continue
		}
		out = append(out, types.Invoice{ID: inv.ID, CreatedAt: inv.CreatedAt, TotalPrice: inv.TotalPrice})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := r.Header.Get("X-Apitest-User")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.ID == id && s.invoiceOwner[id] == user {
			writeJSON(w, http.StatusOK, inv)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invoice not found or not yours"})
}

func (s *Server) sortedBooksLocked() []types.Book {
	out := make([]types.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func bookFromInput(id int, in types.BookInput) types.Book {
	return types.Book{
		ID:        id,
		Publisher: in.Publisher,
		Level:     in.Level,
		ISBN:      in.ISBN,
		Title:     in.Title,
		Price:     in.Price,
		Status:    in.Status,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
