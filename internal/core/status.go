package core

// DefaultHorizonDays is the look-ahead window used to classify a bill as
// upcoming.
const DefaultHorizonDays = 7

type Status string

const (
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusUpcoming  Status = "upcoming"
	StatusScheduled Status = "scheduled"
)

// Classify buckets a bill relative to now using the default 7-day horizon.
// Comparison is by calendar date only; a bill due today is upcoming, not
// overdue.
func Classify(b Bill, now Date) Status {
	return ClassifyHorizon(b, now, DefaultHorizonDays)
}

// ClassifyHorizon is Classify with an explicit horizon in days.
func ClassifyHorizon(b Bill, now Date, horizonDays int) Status {
	if b.IsPaid {
		return StatusPaid
	}
	if b.DueDate.Before(now) {
		return StatusOverdue
	}
	if now.DaysUntil(b.DueDate) <= horizonDays {
		return StatusUpcoming
	}
	return StatusScheduled
}
