package server

import (
	"context"
	"errors"
	"net/http"

	"bleedforlife/internal/impact"
	"bleedforlife/pkg/types"
)

const (
	dashboardNotificationLimit = 5
	dashboardDonationLimit     = 5
)

// donorSummary loads the donor's history and runs it through the impact
// engine. An engine error means the stored history is unusable and no summary
// is returned.
func (s *Service) donorSummary(ctx context.Context, userID string) ([]*types.Donation, *types.DonorImpactSummary, error) {
	donations, err := s.donationRepo.DonationsByDonor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.engine.Summarize(donations, s.now())
	if err != nil {
		return donations, nil, err
	}

	return donations, summary, nil
}

func isEngineError(err error) bool {
	var verr *impact.ValidationError
	return errors.As(err, &verr)
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	profile, err := s.profileRepo.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile for dashboard")
		s.internalServerError(w)
		return
	}

	base := flashes(r)
	base.Title = "Dashboard"

	data := &types.DashboardPageData{
		BasePageData: base,
		Profile:      profile,
	}

	donations, summary, err := s.donorSummary(ctx, userID)
	switch {
	case err == nil:
		data.Summary = summary
		var threshold int
		data.NextTier, threshold, data.HasNextTier = impact.NextTier(summary.TotalDonations)
		data.ToNextTier = threshold - summary.TotalDonations
		data.LivesMilestone = impact.NextLivesMilestone(summary.LivesImpacted)
	case isEngineError(err):
		s.logger.WithError(err).WithField("user_id", userID).Warn("donation history rejected by impact engine")
		data.Error = "Some of your donation records are invalid, so your impact can't be shown. Please review your donation history."
	default:
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch donations for dashboard")
		s.internalServerError(w)
		return
	}

	if len(donations) > dashboardDonationLimit {
		donations = donations[:dashboardDonationLimit]
	}
	data.RecentDonations = donations

	data.Notifications, err = s.notificationRepo.NotificationsByUser(ctx, userID, dashboardNotificationLimit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch notifications for dashboard")
		s.internalServerError(w)
		return
	}

	data.UnreadCount, err = s.notificationRepo.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to count unread notifications")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, r, "page.dashboard", data)
}
