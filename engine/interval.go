package engine

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME INTERVAL RESOLVER - clockIn/clockOut to worked minutes
// =============================================================================

const minutesPerDay = 24 * 60

// Interval is the resolved duration of one shift.
type Interval struct {
	Minutes int
	Hours   decimal.Decimal
}

// ResolveInterval converts an "HH:MM" clock-in/clock-out pair into total
// worked minutes. A shift crossing midnight yields a negative raw
// difference and is corrected by one day, so the duration is always in
// [0, 24h).
//
// Malformed or missing input resolves to a zero interval rather than an
// error: an open shift (empty clockOut) or a bad data entry simply
// contributes no overtime.
func ResolveInterval(clockIn, clockOut string) Interval {
	in, ok := parseClock(clockIn)
	if !ok {
		return zeroInterval()
	}
	out, ok := parseClock(clockOut)
	if !ok {
		return zeroInterval()
	}

	minutes := out - in
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return Interval{
		Minutes: minutes,
		Hours:   decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)),
	}
}

func zeroInterval() Interval {
	return Interval{Minutes: 0, Hours: decimal.Zero}
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
