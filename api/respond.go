package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/mentorship/internal/mentorship"
)

// kindUnauthenticated is reported by the access guard; it never leaves the core.
const kindUnauthenticated = "unauthenticated"

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeProblem(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, errorResponse{Error: kind, Detail: detail}, status)
}

// writeError maps a core error kind onto its HTTP status. Anything that is
// not a domain error is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *mentorship.Error
	if !errors.As(err, &de) {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		writeProblem(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeProblem(w, statusFor(de.Kind), string(de.Kind), de.Detail)
}

func statusFor(k mentorship.Kind) int {
	switch k {
	case mentorship.KindNotFound:
		return http.StatusNotFound
	case mentorship.KindForbidden:
		return http.StatusForbidden
	case mentorship.KindValidation:
		return http.StatusBadRequest
	case mentorship.KindInvalidTransition, mentorship.KindCapacityExceeded, mentorship.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(detail string) error {
	return &mentorship.Error{Kind: mentorship.KindValidation, Detail: detail}
}
