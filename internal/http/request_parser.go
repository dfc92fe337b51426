package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rutapro/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON decodes a JSON request body into dst, rejecting oversized
// bodies and trailing garbage. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A missing
// parameter returns the zero Date, which leaves the range bound open.
func parseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %q parameter: %w", key, err)
	}
	return d, nil
}

// parseClockOrNow parses an optional HH:MM value, falling back to the
// clock time of now.
func parseClockOrNow(s string, now time.Time) (core.ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.ClockTimeOf(now), nil
	}
	return core.ParseClockTime(s)
}

// parseDateOrToday parses an optional YYYY-MM-DD value, falling back to
// the civil date of now.
func parseDateOrToday(s string, now time.Time) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(s)
}

// parseAmount parses a decimal money string ("8000", "12.50") to Money.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseOptionalAmount is parseAmount tolerating empty and zero values,
// used for fields like cash-on-hand where zero is meaningful.
func parseOptionalAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return core.Money{}, nil
	}
	return parseAmount(s)
}
