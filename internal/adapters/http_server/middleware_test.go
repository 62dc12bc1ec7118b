package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	server "review_mapper/internal/adapters/http_server"
)

func TestLogger_RecordsRouteStatusAndForwardedClient(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(server.Logger(zerolog.New(&buf)))
	r.Get("/v1/reviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reviews/42", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Route  string `json:"route"`
		Status int    `json:"status"`
		Client string `json:"client"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Route != "/v1/reviews/{id}" {
		t.Errorf("route = %q", line.Route)
	}
	if line.Status != http.StatusNotFound {
		t.Errorf("status = %d", line.Status)
	}
	if line.Client != "203.0.113.7" {
		t.Errorf("client = %q", line.Client)
	}
}

func TestLogger_DefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	h := server.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Route  string `json:"route"`
		Status int    `json:"status"`
		Client string `json:"client"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Route != "/healthz" || line.Status != http.StatusOK || line.Client != "192.0.2.1" {
		t.Errorf("got %+v", line)
	}
}
