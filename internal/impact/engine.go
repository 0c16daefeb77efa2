// Package impact derives a donor's eligibility, cumulative impact and
// achievement tier from their donation history.
//
// Everything here is a pure function of its inputs. Callers load the history
// and pass the current time explicitly; nothing is cached between calls, so
// an Engine is safe for concurrent use.
package impact

import (
	"time"

	"bleedforlife/pkg/types"
)

// LivesPerUnit is the number of lives credited to each donated unit.
const LivesPerUnit = 3

type Engine struct {
	policy CountingPolicy
}

func NewEngine(policy CountingPolicy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() CountingPolicy {
	return e.policy
}

// ImpactSummary totals the records admitted by the engine's policy. Absent
// units count as one.
func (e *Engine) ImpactSummary(records []*types.Donation) (types.ImpactTotals, error) {
	considered, err := e.consider(records)
	if err != nil {
		return types.ImpactTotals{}, err
	}

	return totals(considered), nil
}

// Summarize builds the complete summary for one donor's history, or returns
// the first validation failure.
func (e *Engine) Summarize(records []*types.Donation, now time.Time) (*types.DonorImpactSummary, error) {
	considered, err := e.consider(records)
	if err != nil {
		return nil, err
	}

	t := totals(considered)
	return &types.DonorImpactSummary{
		ImpactTotals:    t,
		Eligibility:     eligibility(considered, now),
		AchievementTier: AchievementTier(t.TotalDonations),
	}, nil
}

func totals(considered []*types.Donation) types.ImpactTotals {
	var t types.ImpactTotals
	for _, d := range considered {
		t.TotalDonations++
		t.TotalUnits += d.EffectiveUnits()
	}
	t.LivesImpacted = t.TotalUnits * LivesPerUnit
	return t
}

// consider validates every record, then filters by policy. Validation runs
// over all records, including ones the policy would drop.
func (e *Engine) consider(records []*types.Donation) ([]*types.Donation, error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	out := make([]*types.Donation, 0, len(records))
	for _, r := range records {
		if e.policy.counts(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func validateRecords(records []*types.Donation) error {
	var donorID string
	for i, r := range records {
		if r == nil {
			return &ValidationError{Field: "record", Reason: "is nil"}
		}
		if r.DonationDate.IsZero() {
			return &ValidationError{RecordID: r.ID, Field: "donation_date", Reason: "is missing"}
		}
		if r.UnitsDonated != nil && *r.UnitsDonated < 1 {
			return &ValidationError{RecordID: r.ID, Field: "units_donated", Reason: "must be at least 1"}
		}
		if r.Status != nil && *r.Status != "" && !r.Status.Valid() {
			return &ValidationError{RecordID: r.ID, Field: "status", Reason: "is not a known status"}
		}
		if !r.BloodType.Valid() {
			return &ValidationError{RecordID: r.ID, Field: "blood_type", Reason: "is not a known blood type"}
		}

		if i == 0 {
			donorID = r.DonorID
		} else if r.DonorID != donorID {
			return &ValidationError{RecordID: r.ID, Field: "donor_id", Reason: "differs from the rest of the history"}
		}
	}
	return nil
}
