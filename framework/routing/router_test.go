package routing_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/simple-lms/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New()
	r.Get("/courses", okHandler)
	r.Post("/courses", okHandler)
	r.Put("/courses/{id}", okHandler)
	r.Delete("/courses/{id}", okHandler)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/courses", http.StatusOK},
		{http.MethodPost, "/courses", http.StatusOK},
		{http.MethodPut, "/courses/1", http.StatusOK},
		{http.MethodDelete, "/courses/1", http.StatusOK},
		{http.MethodGet, "/not-registered", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, r, tt.method, tt.path).Code)
		})
	}
}

// ── Route params ─────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r := routing.New()
	r.Get("/lessons/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(routing.Param(req, "id")))
	})

	rr := do(t, r, http.MethodGet, "/lessons/42")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "42", rr.Body.String())
}

// ── Prefix / Group ───────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r := routing.New()
	r.Prefix("/admin", func(admin *routing.Router) {
		admin.Get("/settings", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/admin/settings").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/settings").Code)
}

func TestRouter_Group_Middleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r := routing.New()
	r.Group(func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/protected", okHandler)
	})
	r.Get("/public", okHandler)

	do(t, r, http.MethodGet, "/public")
	assert.False(t, called, "group middleware leaked outside the group")

	do(t, r, http.MethodGet, "/protected")
	assert.True(t, called)
}

// ── Request logging ──────────────────────────────────────────────────────────

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := routing.New(routing.RequestLogger(logger))
	r.Get("/ping", okHandler)
	do(t, r.Handler(), http.MethodGet, "/ping")

	assert.Contains(t, buf.String(), "path=/ping")
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "request_id=")
}
