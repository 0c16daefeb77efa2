package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const seedNotePrefix = "[seed] "

var fakeCenters = []string{
	"Carolinas Blood Center",
	"Red Cross Donation Center",
	"Community Blood Bank",
	"University Hospital Donor Room",
	"Mobile Blood Drive",
}

type weightedDonationStatus struct {
	Status types.DonationStatus
	Weight int
}

var weightedStatuses = []weightedDonationStatus{
	{Status: types.DonationStatusCompleted, Weight: 80},
	{Status: types.DonationStatusCancelled, Weight: 15},
	{Status: types.DonationStatusScheduled, Weight: 5},
}

func pickWeightedStatus(rng *rand.Rand) types.DonationStatus {
	total := 0
	for _, item := range weightedStatuses {
		total += item.Weight
	}

	roll := rng.Intn(total)
	for _, item := range weightedStatuses {
		if roll < item.Weight {
			return item.Status
		}
		roll -= item.Weight
	}
	return types.DonationStatusCompleted
}

// fakeHistory builds count donations walking back from now, each at least one
// cooldown window after the one before it. Scheduled entries only appear as
// the newest record and are dated in the future.
func fakeHistory(rng *rand.Rand, donorID string, bloodType types.BloodType, now time.Time, count int) []*types.Donation {
	y, m, d := now.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := make([]*types.Donation, 0, count)
	for i := 0; i < count; i++ {
		status := pickWeightedStatus(rng)
		if i == 0 && status == types.DonationStatusScheduled {
			date = date.AddDate(0, 0, 7+rng.Intn(21))
		} else {
			if status == types.DonationStatusScheduled {
				status = types.DonationStatusCompleted
			}
			date = date.AddDate(0, 0, -(impact.CooldownDays + rng.Intn(60)))
		}

		units := 1
		if rng.Intn(100) < 20 {
			units = 2
		}

		out = append(out, &types.Donation{
			DonorID:        donorID,
			DonationDate:   date,
			BloodType:      bloodType,
			UnitsDonated:   utils.IntPtr(units),
			Status:         &status,
			DonationCenter: utils.StringPtr(fakeCenters[rng.Intn(len(fakeCenters))]),
			Notes:          utils.StringPtr(seedNotePrefix + "generated history"),
		})

		if i == 0 && status == types.DonationStatusScheduled {
			date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}

	return out
}

type donationCreator interface {
	CreateDonation(ctx context.Context, donation *types.Donation) error
}

// SeedFakeDonations gives every fake donor a random history of up to
// maxPerDonor donations. With reset, earlier seeded donations are removed
// first.
func SeedFakeDonations(ctx context.Context, pool *pgxpool.Pool, repo donationCreator, maxPerDonor int, reset bool) error {
	if maxPerDonor <= 0 {
		fmt.Println("Skipping fake donations seed because max <= 0")
		return nil
	}

	if reset {
		result, err := pool.Exec(ctx, `DELETE FROM donations WHERE notes LIKE '[seed] %'`)
		if err != nil {
			return fmt.Errorf("failed to reset seeded fake donations: %w", err)
		}
		fmt.Printf("Reset seeded fake donations: %d deleted\n", result.RowsAffected())
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	created := 0
	for _, donor := range fakeDonors {
		history := fakeHistory(rng, fakeDonorID(donor.Email), donor.BloodType, now, rng.Intn(maxPerDonor+1))
		for _, donation := range history {
			if err := repo.CreateDonation(ctx, donation); err != nil {
				return fmt.Errorf("failed to create fake donation for %s: %w", donor.Email, err)
			}
			created++
		}
	}

	fmt.Printf("Fake donations seeded: %d created\n", created)
	return nil
}
