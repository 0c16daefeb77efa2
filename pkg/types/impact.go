package types

import "time"

type AchievementTier string

const (
	TierFutureHero   AchievementTier = "FutureHero"
	TierLifesaver    AchievementTier = "Lifesaver"
	TierRegularDonor AchievementTier = "RegularDonor"
	TierHeroDonor    AchievementTier = "HeroDonor"
)

func (t AchievementTier) Label() string {
	switch t {
	case TierLifesaver:
		return "Lifesaver"
	case TierRegularDonor:
		return "Regular Donor"
	case TierHeroDonor:
		return "Hero Donor"
	default:
		return "Future Hero"
	}
}

// Eligibility is the donor's position relative to the cooldown window.
// NextEligibleDate is the zero time when Available is true.
type Eligibility struct {
	Available        bool
	LastDonationDate *time.Time
	NextEligibleDate time.Time
	DaysRemaining    int
}

type ImpactTotals struct {
	TotalDonations int
	TotalUnits     int
	LivesImpacted  int
}

// DonorImpactSummary is derived from a donor's history on every read and is
// never stored.
type DonorImpactSummary struct {
	ImpactTotals
	Eligibility     Eligibility
	AchievementTier AchievementTier
}

type Achievement struct {
	Name      string
	Icon      string
	Threshold int
	Achieved  bool
	Current   int
}

type Milestone struct {
	Current  int
	Target   int
	Progress float64
	Percent  int
}
