package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheethooks/internal/core"
)

// SuccessResponse is the JSON body of a successful /execute call.
type SuccessResponse struct {
	Success  bool          `json:"success"`
	Data     any           `json:"data"`
	Metadata core.Metadata `json:"metadata"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status     string             `json:"status"`
	Modules    int                `json:"modules"`
	Executions core.LimiterStatus `json:"executions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Modules:    core.ModuleCount(),
		Executions: s.service.LimiterStatus(),
	})
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"modules": s.service.ListModules()})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req core.ContentRequest
	if err := core.DecodePayload(body, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	resp, err := s.service.Content(r.Context(), chi.URLParam(r, "module"), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Execute(r.Context(), chi.URLParam(r, "module"), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("X-Execution-ID", res.Metadata.ExecutionID)
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success:  true,
		Data:     res.Data,
		Metadata: res.Metadata,
	})
}

// readBody reads the request body within the configured size limit and
// unwraps the optional {"data": {...}} envelope.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, core.Invalid("request body", "larger than %d bytes", tooLarge.Limit)
		}
		return nil, err
	}
	return unwrapEnvelope(b)
}

// unwrapEnvelope returns the value of "data" when the body is an object
// whose only key is "data" holding an object; otherwise the body itself.
func unwrapEnvelope(b []byte) (json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return json.RawMessage("{}"), nil
	}
	if b[0] != '{' {
		return nil, core.Invalid("request body", "expected a JSON object")
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(b, &outer); err != nil {
		return nil, core.Invalid("request body", "%v", err)
	}
	if inner, ok := outer["data"]; ok && len(outer) == 1 {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			return inner, nil
		}
	}
	return b, nil
}
