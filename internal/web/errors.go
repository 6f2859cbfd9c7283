package web

// errors.go renders failures as the error envelope:
//
//	{"success": false, "error": "...", "code": "COL001", "type": "ColumnNotFound", "action": "..."}
//
// The error text of typed failures is returned verbatim so callers see the
// remote API message or the missing column. Untyped failures are logged in
// full and reported with the generic ERR000 message.

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
}

// statusClientClosedRequest is nginx's status for a caller that hung up
// before the response was written.
const statusClientClosedRequest = 499

var kindStatus = map[core.Kind]int{
	core.KindMissingParameter: http.StatusBadRequest,
	core.KindInvalidParameter: http.StatusBadRequest,
	core.KindColumnNotFound:   http.StatusBadRequest,
	core.KindNoMatch:          http.StatusNotFound,
	core.KindRemoteAPI:        http.StatusBadGateway,
	core.KindCredential:       http.StatusInternalServerError,
	core.KindUnknownModule:    http.StatusNotFound,
	core.KindBusy:             http.StatusServiceUnavailable,
	core.KindTimeout:          http.StatusGatewayTimeout,
	core.KindCancelled:        statusClientClosedRequest,
	core.KindInternal:         http.StatusInternalServerError,
}

// statusFor returns the HTTP status for an error kind.
func statusFor(kind core.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs err with the request id and writes the envelope.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := statusFor(kind)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"kind", kind,
		"code", userMsg.Code,
		"error", err.Error(),
	}
	// Failures with a known code are expected upstream trouble. The rest
	// need a look.
	switch {
	case status >= http.StatusInternalServerError && !core.IsUserFacing(err):
		logger.Error("unmapped request error", attrs...)
	case status >= http.StatusInternalServerError:
		logger.Warn("request error", attrs...)
	default:
		logger.Info("request rejected", attrs...)
	}

	message := err.Error()
	if kind == core.KindInternal {
		message = userMsg.Message
	}
	if id := requestID(r); id != "" {
		w.Header().Set("X-Request-ID", id)
	}
	if kind == core.KindBusy {
		w.Header().Set("Retry-After", "5")
	}

	writeErrorResponse(w, status, ErrorResponse{
		Error:  message,
		Code:   userMsg.Code,
		Type:   string(kind),
		Action: userMsg.Action,
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	resp.Success = false
	writeJSON(w, status, resp)
}

// requestID returns chi's request id, for response headers.
func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
