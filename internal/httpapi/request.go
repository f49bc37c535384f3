package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxBodyBytes = 1 << 20
)

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %v: %w", err, domain.ErrValidation)
	}
	return nil
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q is not a valid id: %w", name, raw, domain.ErrValidation)
	}
	return uint(id), nil
}

// idParam читает числовой параметр пути.
func idParam(r *http.Request, name string) (uint, error) {
	return parseID(chi.URLParam(r, name), name)
}

// queryID читает необязательный id из query; 0 - параметр не задан.
func queryID(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return parseID(raw, name)
}

func pagination(r *http.Request) (storage.PaginationArgs, error) {
	args := storage.PaginationArgs{Limit: defaultLimit}
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return args, fmt.Errorf("limit %q must be a positive integer: %w", raw, domain.ErrValidation)
		}
		args.Limit = min(n, maxLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return args, fmt.Errorf("offset %q must be a non-negative integer: %w", raw, domain.ErrValidation)
		}
		args.Offset = n
	}
	return args, nil
}
