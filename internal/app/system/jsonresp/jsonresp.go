// Package jsonresp writes JSON bodies and the common error envelope used by
// every API feature.
package jsonresp

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes 200 with v.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// Created writes 201 with v.
func Created(w http.ResponseWriter, v any) { Write(w, http.StatusCreated, v) }

// Message writes 200 with {"message": msg}.
func Message(w http.ResponseWriter, msg string) {
	Write(w, http.StatusOK, map[string]string{"message": msg})
}

// Error writes the error envelope.
func Error(w http.ResponseWriter, status int, code, msg string) {
	Write(w, status, ErrorBody{Error: code, Message: msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, "validation_error", msg)
}

func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, "not_found", msg)
}

func Forbidden(w http.ResponseWriter, msg string) {
	Error(w, http.StatusForbidden, "forbidden", msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	Error(w, http.StatusUnauthorized, "unauthorized", msg)
}

// ServerError logs err with the operation name and writes a 500 that does
// not leak driver details.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op+" failed", zap.Error(err))
	Error(w, http.StatusInternalServerError, "storage_error", "Something went wrong. Please try again.")
}

// Decode reads a JSON body into dst. Unknown fields are allowed; trailing
// garbage is not.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailing
	}
	return nil
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

const errTrailing = decodeError("unexpected data after JSON body")
