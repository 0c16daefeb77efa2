// Package reminder notifies donors when their cooldown window closes.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/pkg/types"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type donationSource interface {
	DonationsByDonor(ctx context.Context, donorID string) ([]*types.Donation, error)
	DonorsWithDonationsBetween(ctx context.Context, from, to time.Time, completedOnly bool) ([]string, error)
}

type eligibilityNotifier interface {
	EligibleAgain(ctx context.Context, userID string) error
}

type Sweeper struct {
	logger    *logrus.Logger
	donations donationSource
	notifier  eligibilityNotifier
	engine    *impact.Engine
	now       func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	retry   map[string]struct{}
}

func NewSweeper(logger *logrus.Logger, donations donationSource, notifier eligibilityNotifier, engine *impact.Engine) *Sweeper {
	return &Sweeper{
		logger:    logger,
		donations: donations,
		notifier:  notifier,
		engine:    engine,
		now:       time.Now,
	}
}

// Sweep notifies every donor who became eligible between the previous sweep
// and now. The first sweep looks back one day. Per-donor failures do not stop
// the sweep; those donors are retried on the next one and the failures are
// returned joined.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	since := s.lastRun
	if since.IsZero() {
		since = now.AddDate(0, 0, -1)
	}

	// Anyone whose cooldown ended in (since, now] made their last counted
	// donation within this window.
	from := since.AddDate(0, 0, -impact.CooldownDays)
	to := now.AddDate(0, 0, -impact.CooldownDays)

	donorIDs, err := s.donations.DonorsWithDonationsBetween(ctx, from, to, s.engine.Policy() == impact.CountCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminder candidates: %w", err)
	}

	retry := s.retry
	s.retry = map[string]struct{}{}

	candidates := make([]string, 0, len(donorIDs)+len(retry))
	seen := make(map[string]struct{}, len(donorIDs)+len(retry))
	for id := range retry {
		candidates = append(candidates, id)
		seen[id] = struct{}{}
	}
	for _, id := range donorIDs {
		if _, ok := seen[id]; !ok {
			candidates = append(candidates, id)
		}
	}

	var errs []error
	notified := 0
	for _, donorID := range candidates {
		_, retrying := retry[donorID]

		sent, err := s.remind(ctx, donorID, since, now, retrying)
		if err != nil {
			s.logger.WithError(err).WithField("donor_id", donorID).Error("eligibility reminder failed, retrying next sweep")
			s.retry[donorID] = struct{}{}
			errs = append(errs, err)
			continue
		}
		if sent {
			notified++
		}
	}

	s.lastRun = now

	s.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"notified":   notified,
		"failed":     len(errs),
	}).Info("eligibility reminder sweep finished")

	return notified, errors.Join(errs...)
}

// remind sends the reminder when the donor's cooldown ended after since and
// before now. A retried donor only needs to be eligible now.
func (s *Sweeper) remind(ctx context.Context, donorID string, since, now time.Time, retrying bool) (bool, error) {
	records, err := s.donations.DonationsByDonor(ctx, donorID)
	if err != nil {
		return false, fmt.Errorf("failed to load history for donor %s: %w", donorID, err)
	}

	before, err := s.engine.NextEligibleDate(records, since)
	if err != nil {
		s.logger.WithError(err).WithField("donor_id", donorID).Warn("skipping reminder for donor with invalid history")
		return false, nil
	}

	after, err := s.engine.NextEligibleDate(records, now)
	if err != nil {
		s.logger.WithError(err).WithField("donor_id", donorID).Warn("skipping reminder for donor with invalid history")
		return false, nil
	}

	if !after.Available || (before.Available && !retrying) {
		return false, nil
	}

	if err := s.notifier.EligibleAgain(ctx, donorID); err != nil {
		return false, fmt.Errorf("failed to notify donor %s: %w", donorID, err)
	}

	return true, nil
}

// Schedule registers the sweep on c under the given cron spec.
func (s *Sweeper) Schedule(ctx context.Context, c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.WithError(err).Error("eligibility reminder sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep %q: %w", spec, err)
	}

	return nil
}
