// Package validate checks raw form input at the edge of the application and
// converts it into typed records. Nothing malformed gets past here into the
// store or the impact engine.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"bleedforlife/pkg/types"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// FieldErrors maps form field names to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		return types.BloodType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("donationstatus", func(fl validator.FieldLevel) bool {
		return types.DonationStatus(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

func (v *Validator) check(form any) error {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	case "bloodtype":
		return "Select a valid blood type."
	case "donationstatus":
		return "Select a valid status."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// Donation validates an add-donation form and returns the record to insert.
// Dates in the future are only accepted for scheduled donations.
func (v *Validator) Donation(form *types.DonationForm, donorID string, now time.Time) (*types.Donation, error) {
	if err := v.check(form); err != nil {
		return nil, err
	}

	donationDate, err := time.Parse(dateLayout, strings.TrimSpace(form.DonationDate))
	if err != nil {
		return nil, FieldErrors{"donation_date": "Enter a valid date (YYYY-MM-DD)."}
	}

	status := types.DonationStatusCompleted
	if form.Status != "" {
		status = types.DonationStatus(form.Status)
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if status == types.DonationStatusCompleted && donationDate.After(today) {
		return nil, FieldErrors{"donation_date": "A completed donation cannot be in the future."}
	}

	unitsDonated := types.DefaultUnitsDonated
	if form.UnitsDonated != nil {
		unitsDonated = *form.UnitsDonated
	}

	return &types.Donation{
		DonorID:        donorID,
		DonationDate:   donationDate,
		BloodType:      types.BloodType(form.BloodType),
		UnitsDonated:   &unitsDonated,
		Status:         &status,
		DonationCenter: optional(form.DonationCenter),
		Notes:          optional(form.Notes),
	}, nil
}

// Profile validates a profile form and applies it onto an existing profile.
func (v *Validator) Profile(form *types.ProfileForm, profile *types.Profile) error {
	if err := v.check(form); err != nil {
		return err
	}

	profile.FirstName = optional(form.FirstName)
	profile.LastName = optional(form.LastName)
	profile.Phone = optional(form.Phone)
	profile.Address = optional(form.Address)
	profile.City = optional(form.City)
	profile.State = optional(form.State)
	profile.ZipCode = optional(form.ZipCode)
	profile.EmergencyContactName = optional(form.EmergencyContactName)
	profile.EmergencyContactPhone = optional(form.EmergencyContactPhone)
	profile.MedicalConditions = optional(form.MedicalConditions)
	available := form.IsAvailableDonor
	profile.IsAvailableDonor = &available

	profile.BloodType = nil
	if bt := strings.TrimSpace(form.BloodType); bt != "" {
		bloodType := types.BloodType(bt)
		profile.BloodType = &bloodType
	}

	profile.DateOfBirth = nil
	if dob := strings.TrimSpace(form.DateOfBirth); dob != "" {
		parsed, err := time.Parse(dateLayout, dob)
		if err != nil {
			return FieldErrors{"date_of_birth": "Enter a valid date (YYYY-MM-DD)."}
		}
		profile.DateOfBirth = &parsed
	}

	return nil
}

func (v *Validator) BloodRequest(form *types.BloodRequestForm, requesterID string) (*types.BloodRequest, error) {
	if err := v.check(form); err != nil {
		return nil, err
	}

	urgency := types.Urgency(form.UrgencyLevel)
	status := types.BloodRequestStatusOpen

	req := &types.BloodRequest{
		RequesterID:      requesterID,
		PatientName:      strings.TrimSpace(form.PatientName),
		BloodType:        types.BloodType(form.BloodType),
		UnitsNeeded:      form.UnitsNeeded,
		UrgencyLevel:     &urgency,
		HospitalName:     strings.TrimSpace(form.HospitalName),
		HospitalAddress:  strings.TrimSpace(form.HospitalAddress),
		ContactPhone:     strings.TrimSpace(form.ContactPhone),
		MedicalCondition: optional(form.MedicalCondition),
		Status:           &status,
	}

	if nb := strings.TrimSpace(form.NeededBy); nb != "" {
		parsed, err := time.Parse(dateLayout, nb)
		if err != nil {
			return nil, FieldErrors{"needed_by": "Enter a valid date (YYYY-MM-DD)."}
		}
		req.NeededBy = &parsed
	}

	return req, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
