package types

import "time"

type Urgency string

const (
	UrgencyCritical Urgency = "Critical"
	UrgencyHigh     Urgency = "High"
	UrgencyMedium   Urgency = "Medium"
)

var UrgencyLevels = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium}

type BloodRequestStatus string

const (
	BloodRequestStatusOpen      BloodRequestStatus = "open"
	BloodRequestStatusFulfilled BloodRequestStatus = "fulfilled"
	BloodRequestStatusClosed    BloodRequestStatus = "closed"
)

type BloodRequest struct {
	ID               string              `db:"id"`
	RequesterID      string              `db:"requester_id"`
	PatientName      string              `db:"patient_name"`
	BloodType        BloodType           `db:"blood_type"`
	UnitsNeeded      int                 `db:"units_needed"`
	UrgencyLevel     *Urgency            `db:"urgency_level"`
	HospitalName     string              `db:"hospital_name"`
	HospitalAddress  string              `db:"hospital_address"`
	ContactPhone     string              `db:"contact_phone"`
	MedicalCondition *string             `db:"medical_condition"`
	NeededBy         *time.Time          `db:"needed_by"`
	Status           *BloodRequestStatus `db:"status"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}

func (r *BloodRequest) IsCritical() bool {
	return r.UrgencyLevel != nil && *r.UrgencyLevel == UrgencyCritical
}
