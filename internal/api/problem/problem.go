package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typeBase = "https://fomo.dance/problems/"

// Problem type URIs
const (
	TypeValidation = typeBase + "validation-error"
	TypeAuth       = typeBase + "unauthorized"
	TypeForbidden  = typeBase + "forbidden"
	TypeNotFound   = typeBase + "not-found"
	TypeConflict   = typeBase + "conflict"
	TypeRateLimit  = typeBase + "rate-limit-exceeded"
	TypeServer     = typeBase + "server-error"
)

type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]string) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write renders an RFC 7807 response. Without an explicit detail, the error
// text is shown only in development and test; elsewhere the status text is
// used.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if showDetail(env) {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		problem.Instance = r.URL.Path
		logProblem(r, status, typ, title, err)
	}

	WriteProblem(w, problem)
}

// WriteError classifies err by its apperr kind and renders it. Internal
// errors never expose their cause in the body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, env string) {
	kind := apperr.KindOf(err)
	status, typ, title := describe(kind)

	var opts []Option
	switch kind {
	case apperr.KindInternal:
		opts = append(opts, WithDetail(http.StatusText(status)))
	default:
		detail := apperr.PublicMessage(err)
		if showDetail(env) {
			detail = err.Error()
		}
		opts = append(opts, WithDetail(detail))
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Field != "" {
			opts = append(opts, WithErrors(map[string]string{appErr.Field: appErr.Message}))
		}
	}

	Write(w, r, status, typ, title, err, env, opts...)
}

// StatusFor maps an error to the HTTP status WriteError would use.
func StatusFor(err error) int {
	status, _, _ := describe(apperr.KindOf(err))
	return status
}

func describe(kind apperr.Kind) (int, string, string) {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, TypeValidation, "Invalid request"
	case apperr.KindAuth:
		return http.StatusUnauthorized, TypeAuth, "Unauthorized"
	case apperr.KindForbidden:
		return http.StatusForbidden, TypeForbidden, "Forbidden"
	case apperr.KindNotFound:
		return http.StatusNotFound, TypeNotFound, "Not found"
	case apperr.KindConflict:
		return http.StatusConflict, TypeConflict, "Conflict"
	case apperr.KindInternal:
		return http.StatusInternalServerError, TypeServer, "Server error"
	default:
		return http.StatusInternalServerError, TypeServer, "Server error"
	}
}

func showDetail(env string) bool {
	return env == "development" || env == "test"
}

func logProblem(r *http.Request, status int, typ, title string, err error) {
	if err == nil || status < 400 {
		return
	}
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= 500 {
		event = logger.Error()
	}
	event.
		Err(err).
		Int("status", status).
		Str("type", typ).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(title)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
