package impact

import (
	"math"

	"bleedforlife/pkg/types"
)

type tierThreshold struct {
	Min  int
	Tier types.AchievementTier
}

// tierTable is ordered highest first; the first row whose Min is met wins.
var tierTable = []tierThreshold{
	{Min: 10, Tier: types.TierHeroDonor},
	{Min: 5, Tier: types.TierRegularDonor},
	{Min: 1, Tier: types.TierLifesaver},
	{Min: 0, Tier: types.TierFutureHero},
}

type achievementDef struct {
	Name      string
	Icon      string
	Threshold int
}

var achievementTable = []achievementDef{
	{Name: "First Donation", Icon: "🩸", Threshold: 1},
	{Name: "Regular Donor", Icon: "⭐", Threshold: 5},
	{Name: "Hero Donor", Icon: "🏆", Threshold: 10},
	{Name: "Legend", Icon: "👑", Threshold: 25},
}

// LivesMilestones are the lives-impacted targets shown on the dashboard, in
// ascending order.
var LivesMilestones = []int{10, 25, 50, 100, 250, 500}

// AchievementTier classifies a donation count. A negative count panics with
// an *InvariantViolation.
func AchievementTier(totalDonations int) types.AchievementTier {
	if totalDonations < 0 {
		panic(&InvariantViolation{Op: "AchievementTier", Reason: "negative donation count"})
	}

	for _, row := range tierTable {
		if totalDonations >= row.Min {
			return row.Tier
		}
	}

	return types.TierFutureHero
}

// TierRank orders tiers from 0 (FutureHero) upwards. Unknown tiers rank -1.
func TierRank(tier types.AchievementTier) int {
	for i, row := range tierTable {
		if row.Tier == tier {
			return len(tierTable) - 1 - i
		}
	}
	return -1
}

// NextTier returns the tier above the one earned by totalDonations and the
// donation count at which it is reached. ok is false at the top tier.
func NextTier(totalDonations int) (tier types.AchievementTier, threshold int, ok bool) {
	current := TierRank(AchievementTier(totalDonations))
	for i := len(tierTable) - 1; i >= 0; i-- {
		row := tierTable[i]
		if TierRank(row.Tier) > current {
			return row.Tier, row.Min, true
		}
	}
	return "", 0, false
}

// MilestoneProgress is totalDonations/milestone clamped to [0, 1]. A
// non-positive milestone or a negative total panics with an *InvariantViolation.
func MilestoneProgress(totalDonations, milestone int) float64 {
	if milestone <= 0 {
		panic(&InvariantViolation{Op: "MilestoneProgress", Reason: "milestone must be positive"})
	}
	if totalDonations < 0 {
		panic(&InvariantViolation{Op: "MilestoneProgress", Reason: "negative total"})
	}

	return math.Min(float64(totalDonations)/float64(milestone), 1)
}

func Achievements(totalDonations int) []types.Achievement {
	out := make([]types.Achievement, 0, len(achievementTable))
	for _, def := range achievementTable {
		out = append(out, types.Achievement{
			Name:      def.Name,
			Icon:      def.Icon,
			Threshold: def.Threshold,
			Achieved:  totalDonations >= def.Threshold,
			Current:   totalDonations,
		})
	}
	return out
}

// NextLivesMilestone picks the first lives milestone above livesImpacted, or
// the largest one once all are passed.
func NextLivesMilestone(livesImpacted int) types.Milestone {
	target := LivesMilestones[len(LivesMilestones)-1]
	for _, m := range LivesMilestones {
		if livesImpacted < m {
			target = m
			break
		}
	}

	progress := MilestoneProgress(livesImpacted, target)
	return types.Milestone{
		Current:  livesImpacted,
		Target:   target,
		Progress: progress,
		Percent:  int(math.Round(progress * 100)),
	}
}
