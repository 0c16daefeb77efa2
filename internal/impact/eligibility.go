package impact

import (
	"time"

	"bleedforlife/pkg/types"
)

// CooldownDays is the minimum interval between whole-blood donations.
const CooldownDays = 56

// NextEligibleDate reports whether the donor may give again on now's calendar
// date. Only records admitted by the engine's policy are considered; the most
// recent one by date starts the cooldown.
func (e *Engine) NextEligibleDate(records []*types.Donation, now time.Time) (types.Eligibility, error) {
	considered, err := e.consider(records)
	if err != nil {
		return types.Eligibility{}, err
	}

	return eligibility(considered, now), nil
}

func eligibility(considered []*types.Donation, now time.Time) types.Eligibility {
	last := latest(considered)
	if last == nil {
		return types.Eligibility{Available: true}
	}

	lastDate := calendarDate(last.DonationDate)
	today := calendarDate(now)
	next := lastDate.AddDate(0, 0, CooldownDays)

	out := types.Eligibility{LastDonationDate: &lastDate}
	if !today.Before(next) {
		out.Available = true
		return out
	}

	out.NextEligibleDate = next
	out.DaysRemaining = daysBetween(today, next)
	return out
}

// latest returns the record with the greatest donation date, ties going to
// the greatest ID so the choice does not depend on input order.
func latest(records []*types.Donation) *types.Donation {
	var best *types.Donation
	for _, r := range records {
		if best == nil {
			best = r
			continue
		}

		rd, bd := calendarDate(r.DonationDate), calendarDate(best.DonationDate)
		if rd.After(bd) || (rd.Equal(bd) && r.ID > best.ID) {
			best = r
		}
	}
	return best
}

// calendarDate drops the clock portion, keeping the date as seen in t's own
// location, and pins the result to UTC midnight.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
