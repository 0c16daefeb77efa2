package seed

import (
	"context"
	"errors"
	"fmt"

	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	"github.com/google/uuid"
)

type fakeDonorSeed struct {
	Email      string
	GivenName  string
	FamilyName string
	BloodType  types.BloodType
	City       string
	State      string
	Available  bool
}

var fakeDonors = []fakeDonorSeed{
	{Email: "ava.williams+seed1@example.com", GivenName: "Ava", FamilyName: "Williams", BloodType: types.BloodTypeONeg, City: "Charlotte", State: "NC", Available: true},
	{Email: "liam.johnson+seed2@example.com", GivenName: "Liam", FamilyName: "Johnson", BloodType: types.BloodTypeOPos, City: "Raleigh", State: "NC", Available: true},
	{Email: "noah.brown+seed3@example.com", GivenName: "Noah", FamilyName: "Brown", BloodType: types.BloodTypeAPos, City: "Durham", State: "NC", Available: true},
	{Email: "mia.davis+seed4@example.com", GivenName: "Mia", FamilyName: "Davis", BloodType: types.BloodTypeANeg, City: "Charlotte", State: "NC", Available: false},
	{Email: "elijah.garcia+seed5@example.com", GivenName: "Elijah", FamilyName: "Garcia", BloodType: types.BloodTypeBPos, City: "Greensboro", State: "NC", Available: true},
	{Email: "olivia.miller+seed6@example.com", GivenName: "Olivia", FamilyName: "Miller", BloodType: types.BloodTypeBNeg, City: "Asheville", State: "NC", Available: true},
	{Email: "ethan.moore+seed7@example.com", GivenName: "Ethan", FamilyName: "Moore", BloodType: types.BloodTypeABPos, City: "Wilmington", State: "NC", Available: true},
	{Email: "sophia.taylor+seed8@example.com", GivenName: "Sophia", FamilyName: "Taylor", BloodType: types.BloodTypeABNeg, City: "Charlotte", State: "NC", Available: false},
}

// seedNamespace keeps fake donor ids stable across runs.
var seedNamespace = uuid.MustParse("3d1f6a52-5c0e-4b8e-9a51-1f2e7c4b9d60")

func fakeDonorID(email string) string {
	return uuid.NewSHA1(seedNamespace, []byte(email)).String()
}

// FakeDonorIDs lists the user ids of every seeded donor.
func FakeDonorIDs() []string {
	ids := make([]string, 0, len(fakeDonors))
	for _, donor := range fakeDonors {
		ids = append(ids, fakeDonorID(donor.Email))
	}
	return ids
}

type profileSeeder interface {
	UpsertIdentity(ctx context.Context, userID, givenName, familyName string) error
	Profile(ctx context.Context, userID string) (*types.Profile, error)
	Update(ctx context.Context, userID string, profile *types.Profile) error
}

// SeedFakeDonors upserts a profile for every fake donor and resets its blood
// type, location and availability to the values above.
func SeedFakeDonors(ctx context.Context, repo profileSeeder) error {
	seeded := 0
	for _, donor := range fakeDonors {
		userID := fakeDonorID(donor.Email)

		if err := repo.UpsertIdentity(ctx, userID, donor.GivenName, donor.FamilyName); err != nil {
			return fmt.Errorf("failed to upsert fake donor %s: %w", donor.Email, err)
		}

		profile, err := repo.Profile(ctx, userID)
		if err != nil {
			if errors.Is(err, types.ErrProfileNotFound) {
				return fmt.Errorf("fake donor %s missing after upsert", donor.Email)
			}
			return fmt.Errorf("failed to fetch fake donor %s: %w", donor.Email, err)
		}

		bloodType := donor.BloodType
		profile.BloodType = &bloodType
		profile.City = utils.StringPtr(donor.City)
		profile.State = utils.StringPtr(donor.State)
		profile.IsAvailableDonor = utils.BoolPtr(donor.Available)

		if err := repo.Update(ctx, userID, profile); err != nil {
			return fmt.Errorf("failed to update fake donor %s: %w", donor.Email, err)
		}
		seeded++
	}

	fmt.Printf("Fake donors seeded: %d upserted\n", seeded)
	return nil
}
