// Package server provides the HTTP server, router, middleware, and JSON
// response helpers for the library content API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError represents a single field-level validation error in an API response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PaginationMeta holds pagination metadata for list responses.
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta computes TotalPages from the total row count.
func NewPaginationMeta(page, perPage, total int) PaginationMeta {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return PaginationMeta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

type successResponse struct {
	Data any `json:"data"`
}

type paginatedResponse struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type errorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// JSON writes a JSON response with the given status code. The data is wrapped
// in a {"data": ...} envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successResponse{Data: data})
}

// Error writes a JSON error response with the given status code, error code,
// message, and optional field-level details.
func Error(w http.ResponseWriter, status int, code string, message string, details []FieldError) {
	writeJSON(w, status, errorResponse{
		Error: errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// InternalError logs err with the given message and writes a generic 500
// that does not leak storage details to the client.
func InternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", nil)
}

// Paginated writes a JSON list response with pagination metadata.
func Paginated(w http.ResponseWriter, data any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, paginatedResponse{Data: data, Meta: meta})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent, so we can only log.
		slog.Error("failed to encode JSON response", "error", err)
	}
}
