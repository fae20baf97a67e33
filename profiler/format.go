package profiler

import (
	"fmt"
	"strings"
	"time"
)

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration renders d using at most its two most significant non-zero
// units, e.g. "1 minute 30 seconds" or "12 milliseconds 5 microseconds".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	if d == 0 {
		return "0 nanoseconds"
	}

	units := []struct {
		name string
		size time.Duration
	}{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
		{"millisecond", time.Millisecond},
		{"microsecond", time.Microsecond},
		{"nanosecond", time.Nanosecond},
	}

	parts := make([]string, 0, 2)
	rest := d
	for _, u := range units {
		if len(parts) == 2 {
			break
		}
		n := rest / u.size
		rest -= n * u.size
		if n == 0 {
			continue
		}
		suffix := "s"
		if n == 1 {
			suffix = ""
		}
		parts = append(parts, fmt.Sprintf("%d %s%s", n, u.name, suffix))
	}

	return strings.Join(parts, " ")
}
