// Package apierror provides standardized error response structures for the API
// plus the typed domain errors used across services. All errors returned to
// clients go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// ── Domain errors ─────────────────────────────────────────────────────────────
// Sentinels matchable with errors.Is. Services wrap them with context via
// fmt.Errorf; handlers map them to HTTP codes with StatusFor.

var (
	// ErrValidacion: bad numeric/string input, detected before any write.
	ErrValidacion = errors.New("datos invalidos")
	// ErrConflicto: the operation collides with existing state
	// (duplicate open session, session with linked sales).
	ErrConflicto = errors.New("conflicto con el estado actual")
	// ErrNoEncontrado: missing session/sale/order id.
	ErrNoEncontrado = errors.New("registro no encontrado")
	// ErrCajaCerrada: a sale was attempted with no open session for the POS.
	ErrCajaCerrada = errors.New("la caja esta cerrada")
	// ErrPersistencia: the backend is unavailable or a record is corrupt.
	// Write paths must surface it; read paths degrade to empty results.
	ErrPersistencia = errors.New("error de persistencia")
)

// Validacionf wraps ErrValidacion with a human-readable message.
func Validacionf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidacion)
}

// Conflictof wraps ErrConflicto with a human-readable message.
func Conflictof(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflicto)
}

// NoEncontradof wraps ErrNoEncontrado with a human-readable message.
func NoEncontradof(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNoEncontrado)
}

// Persistenciaf wraps ErrPersistencia with a human-readable message.
func Persistenciaf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPersistencia)
}

// StatusFor maps a domain error to its HTTP status code.
// Unknown errors are treated as internal failures.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidacion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, ErrConflicto), errors.Is(err, ErrCajaCerrada):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
