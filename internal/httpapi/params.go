package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/go-chi/chi/v5"
)

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest(fmt.Sprintf("invalid %s %q", key, v))
	}
	return n, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(v)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", key, v))
	}
	return &t, nil
}

func queryRange(r *http.Request) (start, end *time.Time, err error) {
	if start, err = queryDate(r, "startDate"); err != nil {
		return nil, nil, err
	}
	if end, err = queryDate(r, "endDate"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// queryFilter reads clientId, startDate, endDate, year and month.
func queryFilter(r *http.Request) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	var err error

	if f.Start, f.End, err = queryRange(r); err != nil {
		return f, err
	}
	clientID, err := queryInt(r, "clientId")
	if err != nil {
		return f, err
	}
	f.ClientID = int64(clientID)
	if f.Year, err = queryInt(r, "year"); err != nil {
		return f, err
	}
	if f.Month, err = queryInt(r, "month"); err != nil {
		return f, err
	}
	if f.Month > 12 {
		return f, badRequest(fmt.Sprintf("invalid month %d", f.Month))
	}
	return f, nil
}
