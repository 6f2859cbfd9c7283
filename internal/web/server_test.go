package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/sheethooks/internal/config"
	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/core/coretest"
	_ "github.com/JonMunkholm/sheethooks/internal/core/modules"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   4096,
		},
		Google:  config.GoogleConfig{ReadRange: "A1:ZZ1000"},
		Execute: config.ExecuteConfig{MaxConcurrent: 2, MaxWaitTime: 50 * time.Millisecond},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *coretest.Sheets) {
	t.Helper()
	fake := coretest.New()
	fake.Seed("book-1", "Sheet1", 0,
		[]string{"id", "name"},
		[]string{"1", "a"},
		[]string{"2", "b"},
	)
	s := NewServer(core.NewService(fake, cfg), cfg)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, fake
}

func do(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Success {
		t.Error("error response has success=true")
	}
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Modules < 7 || resp.Executions.MaxConcurrent != 2 {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestExecute_Success(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	for name, body := range map[string]string{
		"bare payload": `{"sheet_id":"book-1","sheet_name":"Sheet1","num_rows":"1"}`,
		"data wrapper": `{"data":{"sheet_id":"book-1","sheet_name":{"id":"Sheet1"},"num_rows":"1"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/google_sheets_reader/v1/execute", body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}

			var resp struct {
				Success bool `json:"success"`
				Data    struct {
					Data []map[string]any `json:"data"`
				} `json:"data"`
				Metadata core.Metadata `json:"metadata"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if !resp.Success || len(resp.Data.Data) != 1 || resp.Data.Data[0]["_row_number"] != float64(2) {
				t.Errorf("response = %+v", resp)
			}
			if resp.Metadata.ExecutionID == "" || rec.Header().Get("X-Execution-ID") != resp.Metadata.ExecutionID {
				t.Errorf("execution id = %q, header %q", resp.Metadata.ExecutionID, rec.Header().Get("X-Execution-ID"))
			}
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		setup   func(*coretest.Sheets)
		status  int
		code    string
		kind    core.Kind
		message string
	}{
		{
			name:    "missing parameter",
			path:    "/google_sheets_reader/v1/execute",
			body:    `{"sheet_name":"Sheet1"}`,
			status:  http.StatusBadRequest,
			code:    "REQ001",
			kind:    core.KindMissingParameter,
			message: "Sheet ID is required",
		},
		{
			name:    "column not found",
			path:    "/delete_row_by_key_value/v1/execute",
			body:    `{"sheet_id":"book-1","sheet_name":"Sheet1","conditions":[{"key_column":"Name","key_value":"a"}]}`,
			status:  http.StatusBadRequest,
			code:    "COL001",
			kind:    core.KindColumnNotFound,
			message: `column "Name" not found in header: ["id", "name"]`,
		},
		{
			name:    "no match",
			path:    "/delete_row_by_key_value/v1/execute",
			body:    `{"sheet_id":"book-1","sheet_name":"Sheet1","conditions":[{"key_column":"name","key_value":"zz"}]}`,
			status:  http.StatusNotFound,
			code:    "ROW001",
			kind:    core.KindNoMatch,
			message: "No rows found matching all conditions.",
		},
		{
			name:   "unknown module",
			path:   "/nope/v1/execute",
			body:   `{}`,
			status: http.StatusNotFound,
			code:   "MOD001",
			kind:   core.KindUnknownModule,
		},
		{
			name: "remote error passes through",
			path: "/create_sheet/v1/execute",
			body: `{"sheet_id":"book-1","tab_sheet_name":"X"}`,
			setup: func(f *coretest.Sheets) {
				f.Err["AddSheet"] = &gsheets.APIError{Op: "Failed to create tab", Status: 403, Message: "The caller does not have permission"}
			},
			status:  http.StatusBadGateway,
			code:    "API001",
			kind:    core.KindRemoteAPI,
			message: "Failed to create tab: The caller does not have permission",
		},
		{
			name: "internal error is not leaked",
			path: "/google_sheets_reader/v1/execute",
			body: `{"sheet_id":"book-1","sheet_name":"Sheet1"}`,
			setup: func(f *coretest.Sheets) {
				f.Err["Values"] = errors.New("decoder state 0x7f")
			},
			status:  http.StatusInternalServerError,
			code:    "ERR000",
			kind:    core.KindInternal,
			message: "An unexpected error occurred",
		},
		{
			name:   "malformed json",
			path:   "/google_sheets_reader/v1/execute",
			body:   `{"sheet_id":`,
			status: http.StatusBadRequest,
			code:   "REQ002",
			kind:   core.KindInvalidParameter,
		},
		{
			name:   "body too large",
			path:   "/google_sheets_reader/v1/execute",
			body:   `{"sheet_id":"` + strings.Repeat("x", 5000) + `"}`,
			status: http.StatusBadRequest,
			code:   "REQ002",
			kind:   core.KindInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fake := newTestServer(t, testConfig())
			if tt.setup != nil {
				tt.setup(fake)
			}

			rec := do(t, s, http.MethodPost, tt.path, tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body)
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.code || resp.Type != string(tt.kind) {
				t.Errorf("code/type = %s/%s, want %s/%s", resp.Code, resp.Type, tt.code, tt.kind)
			}
			if tt.message != "" && resp.Error != tt.message {
				t.Errorf("error = %q, want %q", resp.Error, tt.message)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[core.Kind]int{
		core.KindTimeout:      http.StatusGatewayTimeout,
		core.KindCancelled:    499,
		core.KindBusy:         http.StatusServiceUnavailable,
		core.KindInternal:     http.StatusInternalServerError,
		core.Kind("Whatever"): http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := statusFor(kind); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestRespondError_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		msg   string
		level string
	}{
		{"unmapped internal", errors.New("decoder state 0x7f"), "unmapped request error", "ERROR"},
		{"known upstream code", &gsheets.APIError{Op: "Failed to read sheet data", Status: 500, Message: "backend error"}, "request error", "WARN"},
		{"caller mistake", core.Missing("Sheet ID"), "request rejected", "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(logging.New(&buf, "debug", "json"))
			defer slog.SetDefault(prev)

			s, fake := newTestServer(t, testConfig())
			fake.Err["Values"] = tt.err
			do(t, s, http.MethodPost, "/google_sheets_reader/v1/execute", `{"sheet_id":"book-1","sheet_name":"Sheet1"}`, nil)

			var found bool
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var entry map[string]any
				if err := json.Unmarshal([]byte(line), &entry); err != nil {
					t.Fatalf("log line is not JSON: %s", line)
				}
				if entry["msg"] == tt.msg {
					found = true
					if entry["level"] != tt.level {
						t.Errorf("level = %v, want %s", entry["level"], tt.level)
					}
				}
			}
			if !found {
				t.Errorf("no %q entry in:\n%s", tt.msg, buf.String())
			}
		})
	}
}

func TestContent(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	body := `{"form_data":{"sheet_id":"book-1","sheet_name":"Sheet1"},"content_object_names":[{"id":"column_names","array_index":0},"sheet_names"]}`
	rec := do(t, s, http.MethodPost, "/add_row_to_sheet/v1/content", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp core.ContentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.ContentObjects) != 2 {
		t.Fatalf("content objects = %+v", resp.ContentObjects)
	}
	cols := resp.ContentObjects[0]
	if cols.Name != "column_names" || len(cols.Data) != 2 || cols.Data[1].Value.ID != "name" {
		t.Errorf("column_names = %+v", cols)
	}
	if cols.ArrayIndex == nil || *cols.ArrayIndex != 0 {
		t.Errorf("array_index = %v", cols.ArrayIndex)
	}

	rec = do(t, s, http.MethodPost, "/nope/v1/content", body, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown module status = %d", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}
	s, _ := newTestServer(t, cfg)

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "k3"}, http.StatusForbidden},
		{"second key", map[string]string{"X-API-Key": "k2"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/modules", "", tt.header)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz behind auth: %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "RATE001" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("10.0.0.1") || rl.allow("10.0.0.1") {
		t.Fatal("expected one request per window")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("limit shared across IPs")
	}
	now = now.Add(61 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("window did not reset")
	}
}

func TestUnwrapEnvelope(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"", "{}", false},
		{`{"a":1}`, `{"a":1}`, false},
		{`{"data":{"a":1}}`, `{"a":1}`, false},
		{`{"data":"x"}`, `{"data":"x"}`, false},
		{`{"data":{"a":1},"b":2}`, `{"data":{"a":1},"b":2}`, false},
		{`[1]`, "", true},
	}
	for _, tt := range tests {
		got, err := unwrapEnvelope([]byte(tt.in))
		if (err != nil) != tt.err {
			t.Errorf("unwrapEnvelope(%s) error = %v", tt.in, err)
			continue
		}
		if !tt.err && string(got) != tt.want {
			t.Errorf("unwrapEnvelope(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
