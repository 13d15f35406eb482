package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// JSONResponseBuilder is a small fluent helper for JSON replies.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Send writes headers, status and the encoded body. 204 responses carry
// no body.
func (b *JSONResponseBuilder) Send(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields []core.FieldError `json:"fields,omitempty"`
}

// ErrorResponse builds a JSON error reply.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Data(errorBody{Error: message})
}

// ValidationErrorResponse lists every rejected field with a 422.
func ValidationErrorResponse(verr *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Data(errorBody{Error: "validation failed", Fields: verr.Fields})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationErrorResponse(verr).Send(w)
	case errors.Is(err, core.ErrNoSelection):
		BadRequestError(core.ErrNoSelection.Error()).Send(w)
	case errors.Is(err, core.ErrNotFound):
		ErrorResponse(http.StatusNotFound, core.ErrNotFound.Error()).Send(w)
	case core.IsStorageUnavailable(err):
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Storage unavailable", err, r.Method+" "+r.URL.Path, nil)
		ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").
			Header("Retry-After", "5").
			Send(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, r.Method+" "+r.URL.Path, nil)
		ErrorResponse(http.StatusInternalServerError, "internal error").Send(w)
	}
}
