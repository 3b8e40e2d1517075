package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
	"moneyboard/internal/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// parseID reads the {id} path segment.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("invalid id %q", raw)
	}
	return id, nil
}

// parseFilter reads the optional start_date and end_date query parameters.
func parseFilter(r *http.Request) (storage.Filter, error) {
	var f storage.Filter
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *core.Date
	}{{"start_date", &f.Start}, {"end_date", &f.End}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return storage.Filter{}, badRequest("invalid %s %q", p.name, v)
		}
		*p.dst = d
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return storage.Filter{}, badRequest("end_date before start_date")
	}
	return f, nil
}

// parsePeriod reads year and month. Each missing part defaults to the
// current UTC month's.
func parsePeriod(r *http.Request, now time.Time) (core.Period, error) {
	y, m, _ := now.UTC().Date()
	p := core.Period{Year: y, Month: int(m)}
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, badRequest("invalid year %q", v)
		}
		p.Year = year
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, badRequest("invalid month %q", v)
		}
		p.Month = month
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// decodeJSON reads one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("trailing data after JSON body")
	}
	return nil
}

// translatorFor picks the message language from Accept-Language.
func translatorFor(r *http.Request) *i18n.Translator {
	first, _, _ := strings.Cut(r.Header.Get("Accept-Language"), ",")
	tag, _, _ := strings.Cut(first, ";")
	return i18n.NewTranslator(strings.TrimSpace(tag))
}
