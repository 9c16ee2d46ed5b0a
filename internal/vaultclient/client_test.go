package vaultclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/taigrr/vault-gateway/internal/errs"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", nil, zerolog.Nop()), srv
}

func TestClient_GetNote(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/vault/notes/a.md" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	})

	body, err := c.GetNote(t.Context(), "notes/a.md")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if body != "hello" {
		t.Errorf("GetNote() = %q, want %q", body, "hello")
	}
}

func TestClient_GetNote_NotFound(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetNote(t.Context(), "missing.md")
	e, ok := errs.As(err)
	if !ok || e.Kind != "not_found" {
		t.Errorf("GetNote() error = %v, want NotFound", err)
	}
}

func TestClient_GetNote_RejectsTraversal(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream should not be called for an invalid path")
	})

	_, err := c.GetNote(t.Context(), "../escape.md")
	if err == nil {
		t.Fatal("expected an error for path traversal")
	}
}

func TestClient_PutNote_Unauthorized(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := c.PutNote(t.Context(), "a.md", "content", false)
	e, ok := errs.As(err)
	if !ok || e.Kind != "auth_error" {
		t.Errorf("PutNote() error = %v, want AuthError", err)
	}
}

func TestClient_DeleteNote_Idempotent(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := c.DeleteNote(t.Context(), "a.md"); err != nil {
		t.Errorf("DeleteNote() error = %v", err)
	}
}
