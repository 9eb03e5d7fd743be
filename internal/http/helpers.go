package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"conti/internal/core"
	"conti/internal/reports"
)

const (
	tenantHeader = "X-Tenant-ID"
	dateLayout   = "2006-01-02"
	maxBodySize  = 1 << 20 // 1 MiB
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps domain error kinds onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, core.ErrInvalidOperation),
		errors.Is(err, core.ErrNothingToReplenish),
		errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
		msg = err.Error()
	}

	respondJSON(w, status, errorResponse{Error: msg})
}

// tenantID reads the tenant from the request header. Every /api route
// requires it.
func tenantID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(tenantHeader))
	if id == "" {
		return "", fmt.Errorf("%w: missing %s header", core.ErrValidation, tenantHeader)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, name, raw)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, name, raw)
	}
	return id, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q, want YYYY-MM-DD", core.ErrValidation, name, raw)
	}
	return d, nil
}

// parseScope reads the from/to/institute_id report parameters.
func parseScope(r *http.Request) (reports.Scope, error) {
	var scope reports.Scope
	var err error
	if scope.Start, err = queryDate(r, "from"); err != nil {
		return reports.Scope{}, err
	}
	if scope.End, err = queryDate(r, "to"); err != nil {
		return reports.Scope{}, err
	}
	if scope.InstituteID, err = queryInt64(r, "institute_id"); err != nil {
		return reports.Scope{}, err
	}
	return scope, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	return nil
}

// parseDate requires a YYYY-MM-DD value.
func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", core.ErrValidation, raw)
	}
	return d, nil
}

// clientIP prefers the forwarded address set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
