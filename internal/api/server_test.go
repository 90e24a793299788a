package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fdassist/internal/document"
	"fdassist/internal/log"
	"fdassist/internal/stream"
)

func TestNewServer_RequiresAssistant(t *testing.T) {
	_, err := NewServer(ServerConfig{
		Formatter: stream.NewFormatter(0),
		Parser:    document.NewParser(1<<20, log.NewNop()),
	})
	if err == nil {
		t.Fatal("NewServer() without assistant should fail")
	}
}

func TestNewServer_RequiresFormatter(t *testing.T) {
	_, err := NewServer(ServerConfig{
		Assistant: &fakeAssistant{},
		Parser:    document.NewParser(1<<20, log.NewNop()),
	})
	if err == nil {
		t.Fatal("NewServer() without formatter should fail")
	}
}

func TestNewServer_RequiresParser(t *testing.T) {
	_, err := NewServer(ServerConfig{
		Assistant: &fakeAssistant{},
		Formatter: stream.NewFormatter(0),
	})
	if err == nil {
		t.Fatal("NewServer() without parser should fail")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{}, 0)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestReady_WithoutPool(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{}, 0)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if body["status"] != "ready" {
		t.Errorf("status = %q, want ready", body["status"])
	}
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{}, 0)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestServer_SetsRequestID(t *testing.T) {
	st := routerStateWithFinal("hi")
	srv := newTestServer(t, &fakeAssistant{state: st}, 0)

	w := postAsk(t, srv, `{"question": "hi"}`)

	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Error("X-Request-ID header not set")
	}
}
