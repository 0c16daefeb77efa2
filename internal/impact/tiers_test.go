package impact

import (
	"testing"

	"bleedforlife/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementTier(t *testing.T) {
	tests := []struct {
		total int
		want  types.AchievementTier
	}{
		{total: 0, want: types.TierFutureHero},
		{total: 1, want: types.TierLifesaver},
		{total: 4, want: types.TierLifesaver},
		{total: 5, want: types.TierRegularDonor},
		{total: 9, want: types.TierRegularDonor},
		{total: 10, want: types.TierHeroDonor},
		{total: 250, want: types.TierHeroDonor},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, AchievementTier(tt.total))
		})
	}
}

func TestAchievementTier_Monotonic(t *testing.T) {
	for a := 0; a <= 40; a++ {
		for b := a; b <= 40; b++ {
			assert.LessOrEqual(t, TierRank(AchievementTier(a)), TierRank(AchievementTier(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestAchievementTier_NegativePanics(t *testing.T) {
	assert.PanicsWithError(t, "impact: AchievementTier: negative donation count", func() {
		AchievementTier(-1)
	})

	defer func() {
		var violation *InvariantViolation
		err, ok := recover().(error)
		require.True(t, ok)
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "AchievementTier", violation.Op)
	}()
	AchievementTier(-3)
}

func TestTierRank(t *testing.T) {
	assert.Equal(t, 0, TierRank(types.TierFutureHero))
	assert.Equal(t, 1, TierRank(types.TierLifesaver))
	assert.Equal(t, 2, TierRank(types.TierRegularDonor))
	assert.Equal(t, 3, TierRank(types.TierHeroDonor))
	assert.Equal(t, -1, TierRank("Legend"))
}

func TestNextTier(t *testing.T) {
	tier, threshold, ok := NextTier(0)
	assert.True(t, ok)
	assert.Equal(t, types.TierLifesaver, tier)
	assert.Equal(t, 1, threshold)

	tier, threshold, ok = NextTier(3)
	assert.True(t, ok)
	assert.Equal(t, types.TierRegularDonor, tier)
	assert.Equal(t, 5, threshold)

	tier, threshold, ok = NextTier(7)
	assert.True(t, ok)
	assert.Equal(t, types.TierHeroDonor, tier)
	assert.Equal(t, 10, threshold)

	_, _, ok = NextTier(12)
	assert.False(t, ok)
}

func TestMilestoneProgress(t *testing.T) {
	assert.Equal(t, 0.0, MilestoneProgress(0, 10))
	assert.Equal(t, 0.5, MilestoneProgress(5, 10))
	assert.Equal(t, 0.72, MilestoneProgress(36, 50))
	assert.Equal(t, 1.0, MilestoneProgress(10, 10))
	assert.Equal(t, 1.0, MilestoneProgress(99, 10))
}

func TestMilestoneProgress_InvalidInputsPanic(t *testing.T) {
	assert.Panics(t, func() { MilestoneProgress(3, 0) })
	assert.Panics(t, func() { MilestoneProgress(3, -5) })
	assert.Panics(t, func() { MilestoneProgress(-1, 10) })

	defer func() {
		r := recover()
		v, ok := r.(*InvariantViolation)
		if assert.True(t, ok) {
			assert.Equal(t, "MilestoneProgress", v.Op)
			assert.Contains(t, v.Error(), "milestone must be positive")
		}
	}()
	MilestoneProgress(1, 0)
}

func TestAchievements(t *testing.T) {
	got := Achievements(7)

	assert.Len(t, got, 4)
	assert.True(t, got[0].Achieved)
	assert.True(t, got[1].Achieved)
	assert.False(t, got[2].Achieved)
	assert.False(t, got[3].Achieved)
	assert.Equal(t, "Legend", got[3].Name)
	assert.Equal(t, 25, got[3].Threshold)
	assert.Equal(t, 7, got[3].Current)
}

func TestNextLivesMilestone(t *testing.T) {
	m := NextLivesMilestone(36)
	assert.Equal(t, 50, m.Target)
	assert.Equal(t, 72, m.Percent)

	m = NextLivesMilestone(0)
	assert.Equal(t, 10, m.Target)
	assert.Equal(t, 0, m.Percent)

	m = NextLivesMilestone(50)
	assert.Equal(t, 100, m.Target)

	m = NextLivesMilestone(900)
	assert.Equal(t, 500, m.Target)
	assert.Equal(t, 100, m.Percent)
}
