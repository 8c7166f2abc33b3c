package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// INTERVAL RESOLUTION TESTS
// =============================================================================

func TestResolveInterval_StandardShift(t *testing.T) {
	// GIVEN: A plain 09:00 to 18:00 shift
	// WHEN: Resolving the interval
	// THEN: 540 minutes worked

	interval := engine.ResolveInterval("09:00", "18:00")
	assert.Equal(t, 540, interval.Minutes)
	assert.True(t, interval.Hours.Equal(decimalFromMinutes(540)), "hours should be 9.0")
}

func TestResolveInterval_CrossesMidnight(t *testing.T) {
	// GIVEN: A night shift clocking in at 22:00 and out at 07:00
	// WHEN: Resolving the interval
	// THEN: The negative raw difference is corrected by one day (9h)

	interval := engine.ResolveInterval("22:00", "07:00")
	assert.Equal(t, 540, interval.Minutes)
}

func TestResolveInterval_MinuteBoundaries(t *testing.T) {
	// 23:59 out after 00:00 in is the longest same-day shift
	interval := engine.ResolveInterval("00:00", "23:59")
	assert.Equal(t, 1439, interval.Minutes)

	// Equal in/out resolves to zero, not 24h
	interval = engine.ResolveInterval("09:00", "09:00")
	assert.Equal(t, 0, interval.Minutes)
}

func TestResolveInterval_OpenShift_ContributesNothing(t *testing.T) {
	// GIVEN: A shift with no clock-out yet
	// WHEN: Resolving the interval
	// THEN: Zero minutes, no error

	interval := engine.ResolveInterval("09:00", "")
	assert.Equal(t, 0, interval.Minutes)
	assert.True(t, interval.Hours.IsZero())
}

func TestResolveInterval_MalformedInput_ResolvesToZero(t *testing.T) {
	cases := []struct {
		name    string
		in, out string
	}{
		{"no colon", "0900", "1800"},
		{"hour out of range", "24:00", "18:00"},
		{"minute out of range", "09:60", "18:00"},
		{"garbage", "morning", "evening"},
		{"both empty", "", ""},
		{"negative hour", "-1:00", "18:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interval := engine.ResolveInterval(tc.in, tc.out)
			assert.Equal(t, 0, interval.Minutes, "malformed clock pair should resolve to zero")
		})
	}
}

func TestResolveInterval_TrimsWhitespace(t *testing.T) {
	interval := engine.ResolveInterval(" 09:00 ", " 18:00 ")
	assert.Equal(t, 540, interval.Minutes)
}
