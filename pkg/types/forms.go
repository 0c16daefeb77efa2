package types

// DonationForm is the raw add-donation payload. Validation tags are checked by
// internal/validate before anything reaches the store or the impact engine.
type DonationForm struct {
	DonationDate   string `form:"donation_date" validate:"required,datetime=2006-01-02"`
	BloodType      string `form:"blood_type" validate:"required,bloodtype"`
	UnitsDonated   *int   `form:"units_donated" validate:"omitnil,min=1,max=10"`
	Status         string `form:"status" validate:"omitempty,donationstatus"`
	DonationCenter string `form:"donation_center" validate:"max=200"`
	Notes          string `form:"notes" validate:"max=2000"`
}

type ProfileForm struct {
	FirstName             string `form:"first_name" validate:"required,max=100"`
	LastName              string `form:"last_name" validate:"required,max=100"`
	Phone                 string `form:"phone" validate:"omitempty,max=32"`
	DateOfBirth           string `form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	BloodType             string `form:"blood_type" validate:"omitempty,bloodtype"`
	Address               string `form:"address" validate:"max=200"`
	City                  string `form:"city" validate:"max=100"`
	State                 string `form:"state" validate:"max=100"`
	ZipCode               string `form:"zip_code" validate:"max=20"`
	EmergencyContactName  string `form:"emergency_contact_name" validate:"max=200"`
	EmergencyContactPhone string `form:"emergency_contact_phone" validate:"omitempty,max=32"`
	MedicalConditions     string `form:"medical_conditions" validate:"max=2000"`
	IsAvailableDonor      bool   `form:"is_available_donor"`
}

type BloodRequestForm struct {
	PatientName      string `form:"patient_name" validate:"required,max=200"`
	BloodType        string `form:"blood_type" validate:"required,bloodtype"`
	UrgencyLevel     string `form:"urgency_level" validate:"required,oneof=Critical High Medium"`
	UnitsNeeded      int    `form:"units_needed" validate:"required,min=1,max=50"`
	HospitalName     string `form:"hospital_name" validate:"required,max=200"`
	HospitalAddress  string `form:"hospital_address" validate:"required,max=300"`
	ContactPhone     string `form:"contact_phone" validate:"required,max=32"`
	NeededBy         string `form:"needed_by" validate:"omitempty,datetime=2006-01-02"`
	MedicalCondition string `form:"medical_condition" validate:"max=2000"`
}
