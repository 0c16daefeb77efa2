package reminder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/pkg/types"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDonations struct {
	byDonor       map[string][]*types.Donation
	from, to      time.Time
	completedOnly bool
}

func (f *fakeDonations) DonationsByDonor(_ context.Context, donorID string) ([]*types.Donation, error) {
	return f.byDonor[donorID], nil
}

func (f *fakeDonations) DonorsWithDonationsBetween(_ context.Context, from, to time.Time, completedOnly bool) ([]string, error) {
	f.from, f.to, f.completedOnly = from, to, completedOnly

	out := make([]string, 0)
	for id, records := range f.byDonor {
		for _, r := range records {
			if !r.DonationDate.Before(from) && !r.DonationDate.After(to) {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

type fakeNotifier struct {
	notified []string
	failures map[string]int
}

func (f *fakeNotifier) EligibleAgain(_ context.Context, userID string) error {
	if f.failures[userID] > 0 {
		f.failures[userID]--
		return errors.New("insert failed")
	}
	f.notified = append(f.notified, userID)
	return nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func record(donor, id, date string) *types.Donation {
	return &types.Donation{ID: id, DonorID: donor, DonationDate: day(date), BloodType: types.BloodTypeAPos}
}

func newSweeper(donations *fakeDonations, notifier *fakeNotifier, now time.Time) *Sweeper {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := NewSweeper(logger, donations, notifier, impact.NewEngine(impact.CountCompleted))
	s.now = func() time.Time { return now }
	return s
}

func TestSweep_NotifiesDonorsWhoseCooldownEnded(t *testing.T) {
	donations := &fakeDonations{byDonor: map[string][]*types.Donation{
		// 2024-01-10 + 56 days = 2024-03-06
		"ready":      {record("ready", "a", "2024-01-10")},
		"still-wait": {record("still-wait", "b", "2024-01-10"), record("still-wait", "c", "2024-02-20")},
		"long-ago":   {record("long-ago", "d", "2023-06-01")},
	}}
	notifier := &fakeNotifier{}

	s := newSweeper(donations, notifier, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))

	notified, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, notified)
	assert.Equal(t, []string{"ready"}, notifier.notified)
	assert.True(t, donations.completedOnly)
	assert.Equal(t, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), donations.from)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), donations.to)
}

func TestSweep_DoesNotRepeat(t *testing.T) {
	donations := &fakeDonations{byDonor: map[string][]*types.Donation{
		"ready": {record("ready", "a", "2024-01-10")},
	}}
	notifier := &fakeNotifier{}

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	s := newSweeper(donations, notifier, now)

	_, err := s.Sweep(context.Background())
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(24 * time.Hour) }
	notified, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Zero(t, notified)
	assert.Equal(t, []string{"ready"}, notifier.notified)
}

func TestSweep_RetriesFailedDonorsWithoutRepeating(t *testing.T) {
	donations := &fakeDonations{byDonor: map[string][]*types.Donation{
		"first":  {record("first", "a", "2024-01-10")},
		"second": {record("second", "b", "2024-01-10")},
	}}
	notifier := &fakeNotifier{failures: map[string]int{"second": 1}}

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	s := newSweeper(donations, notifier, now)

	notified, err := s.Sweep(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, []string{"first"}, notifier.notified)

	s.now = func() time.Time { return now.Add(24 * time.Hour) }
	notified, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, []string{"first", "second"}, notifier.notified)

	s.now = func() time.Time { return now.Add(48 * time.Hour) }
	notified, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, notified)
	assert.Equal(t, []string{"first", "second"}, notifier.notified)
}

func TestSweep_SkipsInvalidHistories(t *testing.T) {
	zero := 0
	bad := record("bad", "a", "2024-01-10")
	bad.UnitsDonated = &zero

	donations := &fakeDonations{byDonor: map[string][]*types.Donation{"bad": {bad}}}
	notifier := &fakeNotifier{}

	s := newSweeper(donations, notifier, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))

	notified, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, notified)
}

func TestSchedule(t *testing.T) {
	s := newSweeper(&fakeDonations{}, &fakeNotifier{}, time.Now())
	c := cron.New()

	require.NoError(t, s.Schedule(context.Background(), c, "0 9 * * *"))
	assert.Len(t, c.Entries(), 1)

	assert.Error(t, s.Schedule(context.Background(), c, "not a spec"))
}
