package types

import "time"

type Profile struct {
	ID                    string     `db:"id"`
	UserID                string     `db:"user_id"`
	FirstName             *string    `db:"first_name"`
	LastName              *string    `db:"last_name"`
	Phone                 *string    `db:"phone"`
	DateOfBirth           *time.Time `db:"date_of_birth"`
	BloodType             *BloodType `db:"blood_type"`
	Address               *string    `db:"address"`
	City                  *string    `db:"city"`
	State                 *string    `db:"state"`
	ZipCode               *string    `db:"zip_code"`
	EmergencyContactName  *string    `db:"emergency_contact_name"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone"`
	MedicalConditions     *string    `db:"medical_conditions"`
	IsAvailableDonor      *bool      `db:"is_available_donor"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (p *Profile) DisplayName() string {
	var first, last string
	if p.FirstName != nil {
		first = *p.FirstName
	}
	if p.LastName != nil {
		last = *p.LastName
	}

	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

func (p *Profile) Initials() string {
	var out string
	if p.FirstName != nil && *p.FirstName != "" {
		out += string([]rune(*p.FirstName)[0])
	}
	if p.LastName != nil && *p.LastName != "" {
		out += string([]rune(*p.LastName)[0])
	}
	return out
}
