package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO 8601 duration string (e.g. "PT23M44S")
// to fixed "HH:MM:SS" text. Missing components count as zero. Input that
// does not match the grammar is returned unchanged.
func ParseISODuration(iso string) string {
	m := isoDurationRE.FindStringSubmatch(iso)
	if m == nil {
		return iso
	}

	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
