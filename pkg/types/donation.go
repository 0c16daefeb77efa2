package types

import "time"

type DonationStatus string

const (
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusScheduled DonationStatus = "scheduled"
	DonationStatusCancelled DonationStatus = "cancelled"
)

var DonationStatuses = []DonationStatus{
	DonationStatusCompleted,
	DonationStatusScheduled,
	DonationStatusCancelled,
}

func (s DonationStatus) Valid() bool {
	for _, status := range DonationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const (
	DefaultUnitsDonated = 1
	MaxUnitsDonated     = 10
)

// Donation is a single row of the donations table. Status and UnitsDonated are
// nullable in storage; see EffectiveStatus and EffectiveUnits.
type Donation struct {
	ID             string          `db:"id"`
	DonorID        string          `db:"donor_id"`
	DonationDate   time.Time       `db:"donation_date"`
	BloodType      BloodType       `db:"blood_type"`
	UnitsDonated   *int            `db:"units_donated"`
	Status         *DonationStatus `db:"status"`
	DonationCenter *string         `db:"donation_center"`
	Notes          *string         `db:"notes"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (d *Donation) EffectiveUnits() int {
	if d.UnitsDonated == nil {
		return DefaultUnitsDonated
	}
	return *d.UnitsDonated
}

func (d *Donation) EffectiveStatus() DonationStatus {
	if d.Status == nil || *d.Status == "" {
		return DonationStatusCompleted
	}
	return *d.Status
}
