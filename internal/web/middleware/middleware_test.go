package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"untrusted ignores headers", "203.0.113.9:4000", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9"},
		{"trusted real ip", "10.1.2.3:4000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted forwarded chain", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.1.2.3"}, "5.6.7.8"},
		{"trusted single ip entry", "192.168.0.7:1", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"invalid header kept out", "10.1.2.3:4000", map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP([]string{"10.0.0.0/8", "192.168.0.7", "bogus"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidAPIKey(t *testing.T) {
	keys := []string{"alpha", "beta"}
	for key, want := range map[string]bool{"alpha": true, "beta": true, "gamma": false, "": false} {
		if got := isValidAPIKey(key, keys); got != want {
			t.Errorf("isValidAPIKey(%q) = %v, want %v", key, got, want)
		}
	}
	if isValidAPIKey("alpha", nil) {
		t.Error("accepted a key with none configured")
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "json"))
	defer slog.SetDefault(prev)

	r := chi.NewRouter()
	r.Use(Logger)
	r.Post("/{module}/v1/execute", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream"))
	})

	req := httptest.NewRequest(http.MethodPost, "/google_sheets_reader/v1/execute", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for k, want := range map[string]any{
		"msg":    "http request",
		"level":  "WARN",
		"status": float64(http.StatusBadGateway),
		"bytes":  float64(len("upstream")),
		"route":  "/{module}/v1/execute",
		"module": "google_sheets_reader",
		"ip":     "203.0.113.9",
	} {
		if entry[k] != want {
			t.Errorf("entry[%q] = %v, want %v", k, entry[k], want)
		}
	}
}
