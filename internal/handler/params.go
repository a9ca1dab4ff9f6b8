package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
)

// PathInt64 parses a positive integer URL parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.ErrValidation(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// PathUUID parses a UUID URL parameter.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// QueryInt64 parses an optional integer query parameter. Absent means nil.
func QueryInt64(r *http.Request, name string) (*int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, domain.ErrValidation(fmt.Sprintf("%s must be an integer", name))
	}
	return &v, nil
}

// QueryInt parses an optional int query parameter. Absent means nil.
func QueryInt(r *http.Request, name string) (*int, error) {
	v, err := QueryInt64(r, name)
	if err != nil || v == nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

// RequiredQueryInt64 parses an integer query parameter that must be present.
func RequiredQueryInt64(r *http.Request, name string) (int64, error) {
	v, err := QueryInt64(r, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, domain.ErrValidation(fmt.Sprintf("%s is required", name))
	}
	return *v, nil
}
