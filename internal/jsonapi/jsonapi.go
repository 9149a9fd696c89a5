// Package jsonapi implements the JSON:API document shapes used by the
// public API: {"data": ...} on success, {"errors": [...]} on failure.
// All HTTP error responses must go through WriteError.
package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Version is the JSON:API version advertised in responses.
const Version = "1.1"

// Error is a single JSON:API error object.
type Error struct {
	Status string         `json:"status"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail"`
	Source *ErrorSource   `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// ErrorSource points at the part of the request that caused the error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

// ErrorDocument is the top-level error response.
type ErrorDocument struct {
	Errors  []Error  `json:"errors"`
	JSONAPI *Object  `json:"jsonapi,omitempty"`
}

// SuccessDocument is the top-level success response.
type SuccessDocument struct {
	Data    any            `json:"data"`
	JSONAPI *Object        `json:"jsonapi,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Object carries the jsonapi version member.
type Object struct {
	Version string `json:"version"`
}

// Resource is a JSON:API resource object.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
}

// ValidationError builds a 400 error object. pointer may be "" when the
// error is not attributable to a single field.
func ValidationError(detail, pointer string) Error {
	e := Error{
		Status: strconv.Itoa(http.StatusBadRequest),
		Title:  "Validation Error",
		Detail: detail,
	}
	if pointer != "" {
		e.Source = &ErrorSource{Pointer: pointer}
	}
	return e
}

// InternalError builds a 500 error object with optional meta details.
func InternalError(detail string, meta map[string]any) Error {
	return Error{
		Status: strconv.Itoa(http.StatusInternalServerError),
		Title:  "Internal Server Error",
		Detail: detail,
		Meta:   meta,
	}
}

// NewError builds an error object for an arbitrary HTTP status.
func NewError(status int, title, detail string) Error {
	return Error{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}
}

// WriteError writes an error document with the given HTTP status.
func WriteError(w http.ResponseWriter, statusCode int, errs ...Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorDocument{
		Errors:  errs,
		JSONAPI: &Object{Version: Version},
	})
}

// WriteSuccess writes a success document with the given HTTP status.
func WriteSuccess(w http.ResponseWriter, statusCode int, data any, meta map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(SuccessDocument{
		Data:    data,
		JSONAPI: &Object{Version: Version},
		Meta:    meta,
	})
}
