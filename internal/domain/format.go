package domain

import (
	"fmt"
	"strings"
)

// FormatAddress renders a location's address on one line, skipping empty
// parts.
func FormatAddress(loc Location) string {
	addr := loc.Sub("address")
	if addr == nil {
		return ""
	}
	parts := []string{
		strings.Join(addr.Strings("addressLines"), " "),
		addr.String("locality"),
		addr.String("administrativeArea"),
		addr.String("postalCode"),
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// FormatHours renders the regular opening hours of a location, one period per
// line.
func FormatHours(loc Location) []string {
	hours := loc.Sub("regularHours")
	if hours == nil {
		return nil
	}
	periods, _ := hours["periods"].([]any)
	lines := make([]string, 0, len(periods))
	for _, p := range periods {
		rec, ok := asRecord(p)
		if !ok {
			continue
		}
		day := rec.String("openDay")
		if day == "" {
			day = "Unknown"
		}
		opens, closes := rec.Sub("openTime"), rec.Sub("closeTime")
		if len(opens) == 0 || len(closes) == 0 {
			lines = append(lines, day+": Closed")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s - %s", day, clock(opens), clock(closes)))
	}
	return lines
}

func clock(t Record) string {
	return fmt.Sprintf("%02d:%02d", intField(t, "hours"), intField(t, "minutes"))
}

func intField(r Record, key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
