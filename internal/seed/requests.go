package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const seedPatientPrefix = "[seed] "

var fakeHospitals = []struct {
	Name    string
	Address string
}{
	{Name: "Atrium Health Carolinas Medical Center", Address: "1000 Blythe Blvd, Charlotte, NC"},
	{Name: "Duke University Hospital", Address: "2301 Erwin Rd, Durham, NC"},
	{Name: "WakeMed Raleigh Campus", Address: "3000 New Bern Ave, Raleigh, NC"},
	{Name: "Mission Hospital", Address: "509 Biltmore Ave, Asheville, NC"},
}

var fakePatients = []string{"J. Carter", "M. Nguyen", "R. Patel", "S. Okafor", "T. Alvarez", "K. Smith"}

var fakeConditions = []string{"Trauma surgery", "Postpartum hemorrhage", "Chemotherapy support", "Sickle cell crisis"}

func fakeRequest(rng *rand.Rand, requesterID string, now time.Time) *types.BloodRequest {
	hospital := fakeHospitals[rng.Intn(len(fakeHospitals))]
	urgency := types.UrgencyLevels[rng.Intn(len(types.UrgencyLevels))]
	status := types.BloodRequestStatusOpen
	neededBy := now.AddDate(0, 0, 1+rng.Intn(14))

	return &types.BloodRequest{
		RequesterID:      requesterID,
		PatientName:      seedPatientPrefix + fakePatients[rng.Intn(len(fakePatients))],
		BloodType:        types.BloodTypes[rng.Intn(len(types.BloodTypes))],
		UnitsNeeded:      1 + rng.Intn(4),
		UrgencyLevel:     &urgency,
		HospitalName:     hospital.Name,
		HospitalAddress:  hospital.Address,
		ContactPhone:     fmt.Sprintf("(704) 555-%04d", rng.Intn(10000)),
		MedicalCondition: utils.StringPtr(fakeConditions[rng.Intn(len(fakeConditions))]),
		NeededBy:         &neededBy,
		Status:           &status,
	}
}

type requestCreator interface {
	Create(ctx context.Context, req *types.BloodRequest) error
}

// SeedFakeRequests opens count blood requests posted by randomly chosen fake
// donors.
func SeedFakeRequests(ctx context.Context, pool *pgxpool.Pool, repo requestCreator, count int, reset bool) error {
	if count <= 0 {
		fmt.Println("Skipping fake blood requests seed because count <= 0")
		return nil
	}

	if reset {
		result, err := pool.Exec(ctx, `DELETE FROM blood_requests WHERE patient_name LIKE '[seed] %'`)
		if err != nil {
			return fmt.Errorf("failed to reset seeded fake blood requests: %w", err)
		}
		fmt.Printf("Reset seeded fake blood requests: %d deleted\n", result.RowsAffected())
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ids := FakeDonorIDs()
	now := time.Now()

	critical := 0
	for i := 0; i < count; i++ {
		req := fakeRequest(rng, ids[rng.Intn(len(ids))], now)
		if err := repo.Create(ctx, req); err != nil {
			return fmt.Errorf("failed to create fake blood request %d: %w", i+1, err)
		}
		if req.IsCritical() {
			critical++
		}
	}

	fmt.Printf("Fake blood requests seeded: %d created (%d critical)\n", count, critical)
	return nil
}
