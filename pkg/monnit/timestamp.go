package monnit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMessageDate decodes the provider's /Date(1701430000000)/ encoding
// into a UTC time. The embedded number is Unix milliseconds.
func ParseMessageDate(raw string) (time.Time, error) {
	inner, ok := strings.CutPrefix(raw, "/Date(")
	if !ok {
		return time.Time{}, fmt.Errorf("message date %q: missing /Date( prefix", raw)
	}
	inner, ok = strings.CutSuffix(inner, ")/")
	if !ok {
		return time.Time{}, fmt.Errorf("message date %q: missing )/ suffix", raw)
	}

	millis, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("message date %q: %w", raw, err)
	}

	return time.UnixMilli(millis).UTC(), nil
}
