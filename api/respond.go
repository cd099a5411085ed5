package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/divanco-studio/backend/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// Pagination describes the page window of a list response.
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

// NewPagination computes the page window for a total row count.
func NewPagination(page, limit int, total int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Field      string      `json:"field,omitempty"`
	Details    string      `json:"details,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	jsonData, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteData writes a successful response carrying a payload.
func (r Responder) WriteData(w http.ResponseWriter, status int, data interface{}) {
	r.writeJSON(w, status, envelope{Success: true, Data: data})
}

// WritePage writes a successful list response with pagination metadata.
func (r Responder) WritePage(w http.ResponseWriter, data interface{}, pagination Pagination) {
	r.writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &pagination})
}

// WriteMessage writes a successful response carrying only a message.
func (r Responder) WriteMessage(w http.ResponseWriter, status int, message string) {
	r.writeJSON(w, status, envelope{Success: true, Message: message})
}

// WriteError maps an error to the response envelope. Unexpected errors
// are logged and reported as a generic 500.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Message: "An unexpected error occurred",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Msg(apiErr.GetFullError())
	}

	r.writeJSON(w, apiErr.StatusCode, envelope{
		Success: false,
		Message: apiErr.Error(),
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
