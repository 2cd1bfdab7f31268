// Package formatting parses model output and the byte sizes used for
// upload limits.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const step = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

var sizePattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes renders n in base-1024 units with precision decimals.
// Negative precision is treated as zero and zero renders as "0 B".
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	i := 0
	for math.Abs(size) >= step && i < len(units)-1 {
		size /= step
		i++
	}

	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// FormatLimit renders an upload limit for users: one decimal at most, with
// whole sizes shown without one ("50 MB", "1.5 MB").
func FormatLimit(n int64) string {
	num, unit, _ := strings.Cut(FormatBytes(n, 1), " ")
	return strings.TrimSuffix(num, ".0") + " " + unit
}

// ParseBytes reads a size such as "50MB" or "1.5 GB" as a byte count. Units
// run from B to YB in base 1024 and match case-insensitively; a bare number
// is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	if m[2] == "" {
		return int64(value), nil
	}

	exp := slices.Index(units, strings.ToUpper(m[2]))
	if exp < 0 {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	return int64(value * math.Pow(step, float64(exp))), nil
}
