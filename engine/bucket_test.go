package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// OVERTIME BUCKETING TESTS
// =============================================================================

func TestBucketize_AtOrBelowStandardShift_NoOvertime(t *testing.T) {
	// GIVEN: Worked time at or below the 8h standard shift
	// THEN: Zero overtime in both tiers

	for _, minutes := range []int{0, 60, 479, 480} {
		hours := engine.BucketizeOvertimeMinutes(minutes)
		assert.True(t, hours.IsZero(), "worked %d minutes should yield no overtime", minutes)
	}
}

func TestBucketize_BufferBoundary(t *testing.T) {
	// GIVEN: Overtime just around the 7-minute grace past a half-hour mark
	// THEN: 6 minutes past rounds down, 7 minutes past counts the bucket

	cases := []struct {
		name          string
		workedMinutes int
		tier1, tier2  string
	}{
		{"6 min past shift end", 486, "0", "0"},
		{"exactly 7 min past shift end", 487, "0.5", "0"},
		{"1h36m overtime (96): 6 past the 3rd mark", 576, "1.5", "0"},
		{"1h37m overtime (97): 7 past the 3rd mark", 577, "2", "0"},
		{"exact bucket boundary", 570, "1.5", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours := engine.BucketizeOvertimeMinutes(tc.workedMinutes)
			assertDecimal(t, tc.tier1, hours.Tier1, "tier1")
			assertDecimal(t, tc.tier2, hours.Tier2, "tier2")
		})
	}
}

func TestBucketize_Tier1Clamp(t *testing.T) {
	// GIVEN: Billable overtime beyond 2 hours
	// THEN: Tier1 is clamped to exactly 2.0 and the rest is tier2

	cases := []struct {
		name          string
		workedMinutes int
		tier1, tier2  string
	}{
		{"2h overtime: all tier1", 600, "2", "0"},
		{"2.5h overtime: clamp kicks in", 630, "2", "0.5"},
		{"5h overtime", 780, "2", "3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours := engine.BucketizeOvertimeMinutes(tc.workedMinutes)
			assertDecimal(t, tc.tier1, hours.Tier1, "tier1")
			assertDecimal(t, tc.tier2, hours.Tier2, "tier2")
		})
	}
}

func TestBucketize_ClockOutScenario_2007(t *testing.T) {
	// GIVEN: 09:00 to 20:07, i.e. 667 worked minutes, 187 raw overtime
	// WHEN: Bucketing (6 full buckets + 7 minutes into the 7th)
	// THEN: 3.5h billable: tier1 clamped to 2.0, tier2 1.5

	interval := engine.ResolveInterval("09:00", "20:07")
	hours := engine.BucketizeOvertimeMinutes(interval.Minutes)

	assertDecimal(t, "2", hours.Tier1, "tier1")
	assertDecimal(t, "1.5", hours.Tier2, "tier2")

	// One minute earlier the 7th bucket does not count
	interval = engine.ResolveInterval("09:00", "20:06")
	hours = engine.BucketizeOvertimeMinutes(interval.Minutes)
	assertDecimal(t, "2", hours.Tier1, "tier1 at 20:06")
	assertDecimal(t, "1", hours.Tier2, "tier2 at 20:06")
}

func TestBucketizeOvertime_HourForm_MatchesMinuteForm(t *testing.T) {
	// GIVEN: The same day expressed as decimal hours and as minutes
	// THEN: Both forms bucket identically

	fromHours := engine.BucketizeOvertime(decimal.NewFromFloat(11.116667)) // 667 min
	fromMinutes := engine.BucketizeOvertimeMinutes(667)

	assert.True(t, fromHours.Tier1.Equal(fromMinutes.Tier1))
	assert.True(t, fromHours.Tier2.Equal(fromMinutes.Tier2))
}

func TestBucketizeOvertime_NegativeInput_ClampsToZero(t *testing.T) {
	hours := engine.BucketizeOvertime(decimal.NewFromInt(-3))
	assert.True(t, hours.IsZero())
}
