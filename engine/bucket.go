/*
bucket.go - Tiered, buffer-tolerant overtime bucketing

PURPOSE:
  Maps minutes worked beyond the standard shift into two overtime tiers.
  Overtime is not billed continuously; it is billed in discrete,
  policy-defined half-hour increments, and a buffer of grace minutes
  absorbs the incidental drift of physical time clocks.

THE BUCKET RULE:
  - The first 8 hours of a day are the standard shift: no overtime.
  - Time beyond the shift is counted in 30-minute buckets.
  - A partial bucket counts once the worker is at least 7 minutes past
    the previous half-hour mark. Clocking out at 20:07 after a 09:00
    start (3h07m raw overtime) therefore buckets to 3.5 hours, while
    20:06 would bucket to 3.0.
  - The first 2 overtime hours are tier1 (lower multiplier); everything
    beyond is tier2. Tier1 is clamped to 2.0 hours per day.

  These boundaries must be reproduced bit-for-bit against the bucket
  marks, never approximated with continuous rounding.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// BUCKET CONSTANTS
// =============================================================================

const (
	// StandardShiftMinutes is the unpaid-overtime portion of a day (8h).
	StandardShiftMinutes = 8 * 60

	// Tier1MaxMinutes caps tier1 overtime per day (2h); further time is tier2.
	Tier1MaxMinutes = 2 * 60

	// BucketMinutes is the billing increment for overtime.
	BucketMinutes = 30

	// BufferMinutes is the grace given before a partial bucket counts.
	BufferMinutes = 7
)

var sixty = decimal.NewFromInt(60)

// =============================================================================
// TIERED OVERTIME BUCKETIZER
// =============================================================================

// BucketizeOvertime splits a day's worked hours into tier1/tier2
// overtime under the half-hour bucket rule. Hours at or below the
// standard shift yield zero overtime; negative or malformed input
// clamps to zero.
func BucketizeOvertime(hoursWorked decimal.Decimal) OvertimeHours {
	if !hoursWorked.IsPositive() {
		return OvertimeHours{Tier1: decimal.Zero, Tier2: decimal.Zero}
	}
	minutes := int(hoursWorked.Mul(sixty).Round(0).IntPart())
	return BucketizeOvertimeMinutes(minutes)
}

// BucketizeOvertimeMinutes is the minute-exact form of BucketizeOvertime.
// The clock pipeline uses this directly so no decimal conversion can
// drift across a bucket boundary.
func BucketizeOvertimeMinutes(workedMinutes int) OvertimeHours {
	zero := OvertimeHours{Tier1: decimal.Zero, Tier2: decimal.Zero}
	if workedMinutes <= StandardShiftMinutes {
		return zero
	}

	overtime := workedMinutes - StandardShiftMinutes

	buckets := overtime / BucketMinutes
	if overtime%BucketMinutes >= BufferMinutes {
		buckets++
	}
	if buckets == 0 {
		return zero
	}

	billable := buckets * BucketMinutes

	tier1 := billable
	if tier1 > Tier1MaxMinutes {
		tier1 = Tier1MaxMinutes
	}
	tier2 := billable - tier1

	return OvertimeHours{
		Tier1: minutesToHours(tier1),
		Tier2: minutesToHours(tier2),
	}
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty)
}
