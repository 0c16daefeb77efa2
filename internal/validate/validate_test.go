package validate

import (
	"testing"
	"time"

	"bleedforlife/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func TestDonation_Valid(t *testing.T) {
	v := New()

	form := &types.DonationForm{
		DonationDate:   "2024-05-20",
		BloodType:      "AB-",
		UnitsDonated:   intPtr(2),
		DonationCenter: "  Downtown Center ",
	}

	d, err := v.Donation(form, "donor-1", now)
	require.NoError(t, err)

	assert.Equal(t, "donor-1", d.DonorID)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), d.DonationDate)
	assert.Equal(t, types.BloodTypeABNeg, d.BloodType)
	assert.Equal(t, 2, d.EffectiveUnits())
	assert.Equal(t, types.DonationStatusCompleted, d.EffectiveStatus())
	require.NotNil(t, d.DonationCenter)
	assert.Equal(t, "Downtown Center", *d.DonationCenter)
	assert.Nil(t, d.Notes)
}

func TestDonation_DefaultsUnitsToOne(t *testing.T) {
	d, err := New().Donation(&types.DonationForm{DonationDate: "2024-05-20", BloodType: "O-"}, "donor-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, d.EffectiveUnits())
}

func TestDonation_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		form  types.DonationForm
		field string
	}{
		{name: "missing date", form: types.DonationForm{BloodType: "O+"}, field: "donation_date"},
		{name: "unparseable date", form: types.DonationForm{DonationDate: "05/20/2024", BloodType: "O+"}, field: "donation_date"},
		{name: "missing blood type", form: types.DonationForm{DonationDate: "2024-05-20"}, field: "blood_type"},
		{name: "unknown blood type", form: types.DonationForm{DonationDate: "2024-05-20", BloodType: "C+"}, field: "blood_type"},
		{name: "zero units", form: types.DonationForm{DonationDate: "2024-05-20", BloodType: "O+", UnitsDonated: intPtr(0)}, field: "units_donated"},
		{name: "too many units", form: types.DonationForm{DonationDate: "2024-05-20", BloodType: "O+", UnitsDonated: intPtr(11)}, field: "units_donated"},
		{name: "unknown status", form: types.DonationForm{DonationDate: "2024-05-20", BloodType: "O+", Status: "pending"}, field: "status"},
		{name: "completed in the future", form: types.DonationForm{DonationDate: "2024-07-01", BloodType: "O+"}, field: "donation_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New().Donation(&tt.form, "donor-1", now)
			assert.Nil(t, d)

			var ferrs FieldErrors
			require.ErrorAs(t, err, &ferrs)
			assert.Contains(t, ferrs, tt.field)
		})
	}
}

func TestDonation_ScheduledMayBeInFuture(t *testing.T) {
	d, err := New().Donation(&types.DonationForm{DonationDate: "2024-07-01", BloodType: "B+", Status: "scheduled"}, "donor-1", now)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusScheduled, d.EffectiveStatus())
}

func TestProfile(t *testing.T) {
	profile := &types.Profile{UserID: "u1"}

	err := New().Profile(&types.ProfileForm{
		FirstName:        "Jane",
		LastName:         "Doe",
		BloodType:        "O+",
		DateOfBirth:      "1990-04-02",
		City:             "Austin",
		IsAvailableDonor: true,
	}, profile)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.DisplayName())
	require.NotNil(t, profile.BloodType)
	assert.Equal(t, types.BloodTypeOPos, *profile.BloodType)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, 1990, profile.DateOfBirth.Year())
	require.NotNil(t, profile.IsAvailableDonor)
	assert.True(t, *profile.IsAvailableDonor)
	assert.Nil(t, profile.Phone)
}

func TestProfile_Invalid(t *testing.T) {
	err := New().Profile(&types.ProfileForm{FirstName: "Jane", BloodType: "Z"}, &types.Profile{})

	var ferrs FieldErrors
	require.ErrorAs(t, err, &ferrs)
	assert.Contains(t, ferrs, "last_name")
	assert.Contains(t, ferrs, "blood_type")
	assert.Contains(t, err.Error(), "blood_type: Select a valid blood type.")
}

func TestBloodRequest(t *testing.T) {
	form := &types.BloodRequestForm{
		PatientName:     "Sarah Johnson",
		BloodType:       "O+",
		UrgencyLevel:    "Critical",
		UnitsNeeded:     3,
		HospitalName:    "General Hospital",
		HospitalAddress: "1 Main St",
		ContactPhone:    "555-0100",
		NeededBy:        "2024-06-03",
	}

	req, err := New().BloodRequest(form, "requester-1")
	require.NoError(t, err)

	assert.True(t, req.IsCritical())
	assert.Equal(t, 3, req.UnitsNeeded)
	require.NotNil(t, req.NeededBy)
	require.NotNil(t, req.Status)
	assert.Equal(t, types.BloodRequestStatusOpen, *req.Status)
}

func TestBloodRequest_Invalid(t *testing.T) {
	_, err := New().BloodRequest(&types.BloodRequestForm{UrgencyLevel: "Low"}, "requester-1")

	var ferrs FieldErrors
	require.ErrorAs(t, err, &ferrs)
	for _, field := range []string{"patient_name", "blood_type", "urgency_level", "units_needed", "hospital_name", "hospital_address", "contact_phone"} {
		assert.Contains(t, ferrs, field)
	}
}
