package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
	"moneyboard/internal/validate"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// errorBody is the error payload every endpoint uses.
type errorBody struct {
	Error  string                `json:"error"`
	Fields map[core.Field]string `json:"fields,omitempty"`
}

// messageBody acknowledges a deletion.
type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MessageResponse creates a 200 {"message": message} response.
func MessageResponse(message string) *JSONResponseBuilder {
	return NewJSONResponse().Body(messageBody{Message: message})
}

var badRequestErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionLong,
	core.ErrEmptyCategory,
	core.ErrUnknownCategory,
	core.ErrInvalidDate,
	core.ErrInvalidMonth,
	core.ErrEmptyName,
	storage.ErrCategoryInUse,
	storage.ErrDuplicateCategory,
	errBadRequest,
}

// errorResponse maps err onto a response. what names the addressed entity
// in not-found messages. Unexpected errors are logged and hidden.
func (s *Server) errorResponse(r *http.Request, what string, err error) *JSONResponseBuilder {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return NewJSONResponse().Status(http.StatusBadRequest).Body(errorBody{
			Error:  "validation failed",
			Fields: verrs.Messages(translatorFor(r)),
		})
	}
	if errors.Is(err, core.ErrNotFound) {
		return NotFoundError(what + " not found")
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return BadRequestError(err.Error())
		}
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldPath, r.URL.Path, log.FieldError, err, log.FieldErrorType, log.ErrorTypeInternal)
	return InternalServerError()
}
