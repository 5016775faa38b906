package youtube

import (
	"regexp"
	"strconv"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the upstream PT#H#M#S duration format to
// seconds. Unparseable input yields 0.
func parseISODuration(s string) int64 {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.ParseInt(zeroIfEmpty(m[1]), 10, 64)
	minutes, _ := strconv.ParseInt(zeroIfEmpty(m[2]), 10, 64)
	seconds, _ := strconv.ParseInt(zeroIfEmpty(m[3]), 10, 64)
	return hours*3600 + minutes*60 + seconds
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
