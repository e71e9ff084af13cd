// Package classtime decides whether a moment falls inside a class's check-in window.
package classtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultHalfWidth is the number of minutes allowed on either side of a class start time.
const DefaultHalfWidth = 30

var startTimeRegex = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)

// ParseMinutes converts a "H:MM AM/PM" string to minutes since midnight.
// ok is false when `s` holds no recognizable time, including out of range hours or minutes such as "13:00 PM".
func ParseMinutes(s string) (minutes int, ok bool) {
	m := startTimeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if hours > 12 || mins > 59 {
		return 0, false
	}

	hours %= 12 // 12 AM is midnight, 12 PM is noon
	if strings.EqualFold(m[3], "PM") {
		hours += 12
	}
	return hours*60 + mins, true
}

// IsWithinWindow reports whether the wall-clock time of `now` is within `halfWidth` minutes of
// `startTime` (inclusive on both ends).
// An unparseable or empty `startTime` always permits the check-in.
// The window does not wrap around midnight.
func IsWithinWindow(startTime string, now time.Time, halfWidth int) bool {
	start, ok := ParseMinutes(startTime)
	if !ok {
		return true
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return start-halfWidth <= nowMinutes && nowMinutes <= start+halfWidth
}
