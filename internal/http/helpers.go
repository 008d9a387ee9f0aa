package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"fondi/internal/core"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes: validation failures
// to 422, missing entities to 404, conflicts and constraint violations
// to 409, everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		conflictErr   *core.ConflictError
		constraintErr *core.ConstraintError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Detail: validationErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:  "not found",
			Detail: notFoundErr.Error(),
		})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:  "conflict",
			Detail: conflictErr.Error(),
		})
	case errors.As(err, &constraintErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:  "constraint violated",
			Detail: constraintErr.Error(),
		})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &core.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// pathID parses the {id} path segment of a request.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// queryInt64 parses an optional integer query parameter, returning 0 when
// absent.
func queryInt64(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &core.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return v, nil
}

// parseOptionalDate parses a YYYY-MM-DD string, mapping the empty string
// to the zero date.
func parseOptionalDate(field, raw string) (core.Date, error) {
	if raw == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Reason: "must be formatted YYYY-MM-DD"}
	}
	return d, nil
}
