package service

import "time"

// CutOff is the daily ordering cut-off. Orders placed at or after it are
// delivered one day later than orders placed before it.
const CutOff = 18 * time.Hour

// Replenishment windows, inclusive at both ends.
const (
	morningWindowStart = 8 * time.Hour
	morningWindowEnd   = 12 * time.Hour
	eveningWindowStart = 18 * time.Hour
	eveningWindowEnd   = 19 * time.Hour
)

// DeliveryDate computes the delivery date for an order placed at now:
// next day before the cut-off, the day after from the cut-off on. The
// result is midnight in now's location.
func DeliveryDate(now time.Time) time.Time {
	return DeliveryDateWithCutOff(now, CutOff)
}

// DeliveryDateWithCutOff is DeliveryDate with an explicit cut-off
// time-of-day, kept separate so the boundary is testable at any cut-off.
func DeliveryDateWithCutOff(now time.Time, cutoff time.Duration) time.Time {
	days := 1
	if timeOfDay(now) >= cutoff {
		days = 2
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, days)
}

// WithinStockUpdateWindow reports whether stock replenishment is allowed at
// now: 08:00-12:00 or 18:00-19:00 local time.
func WithinStockUpdateWindow(now time.Time) bool {
	t := timeOfDay(now)
	return (t >= morningWindowStart && t <= morningWindowEnd) ||
		(t >= eveningWindowStart && t <= eveningWindowEnd)
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
