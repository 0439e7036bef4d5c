package cancellation

import (
	"time"

	"boxoffice/internal/shared/config"
)

// Schedule is the deduction schedule evaluated at cancellation time. Tiers
// are kept sorted by DaysBefore descending, so the first tier whose boundary
// the cancellation clears is the most generous one it qualifies for.
type Schedule struct {
	tiers []config.RefundTier
}

func NewSchedule(tiers []config.RefundTier) Schedule {
	return Schedule{tiers: tiers}
}

// DeductionFor returns the deduction percentage for cancelling at the given
// instant. Cancelling once the concert has started is refused outright.
func (s Schedule) DeductionFor(now, eventDate time.Time) (int, error) {
	if !now.Before(eventDate) {
		return 0, ErrTooLateToCancel
	}

	daysOut := int(eventDate.Sub(now).Hours() / 24)
	for _, tier := range s.tiers {
		if daysOut >= tier.DaysBefore {
			return tier.DeductionPercent, nil
		}
	}

	// No tier matched: the schedule doesn't cover cancellations this close
	// to the event, so nothing is refunded.
	return 100, nil
}

// RefundAmount computes the refund for a subtotal under the given deduction.
// Integer math rounds down, so fractional cents always favor the house and
// refunds never sum past the amount actually paid.
func RefundAmount(subtotalCents int64, deductionPercent int) int64 {
	if deductionPercent <= 0 {
		return subtotalCents
	}
	if deductionPercent >= 100 {
		return 0
	}
	return subtotalCents * int64(100-deductionPercent) / 100
}
