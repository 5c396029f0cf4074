package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/middleware"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/problem"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a single JSON document into dst. Type mismatches are
// reported against the offending field; any other malformed body is a
// validation error on "body".
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation(typeErr.Field, "must be a "+jsonKind(typeErr.Type.Kind().String()))
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("body", "request body is required")
	}
	return apperr.Wrap(apperr.KindValidation, "request body must be valid JSON", err)
}

func jsonKind(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	default:
		return "string"
	}
}

// writeError renders err as a problem document. Oversized bodies become 413.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeValidation, "Request too large", err, env,
			problem.WithDetail("request body exceeds "+strconv.FormatInt(maxBytes.Limit, 10)+" bytes"))
		return
	}
	problem.WriteError(w, r, err, env)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("id", "must be a positive integer")
	}
	return id, nil
}

// actorFrom returns the authenticated caller. Routes that reach a handler
// needing an actor are wrapped in RequireAuth, so a missing actor is an
// auth failure rather than a server error.
func actorFrom(r *http.Request) (auth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, middleware.ErrAuthRequired
	}
	return actor, nil
}
