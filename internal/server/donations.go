package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bleedforlife/internal/impact"
	"bleedforlife/internal/validate"
	"bleedforlife/pkg/types"

	"github.com/go-playground/form/v4"
)

func (s *Service) handleGetDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	base := flashes(r)
	base.Title = "Donation History"

	data := &types.DonationsPageData{
		BasePageData: base,
		Policy:       s.engine.Policy().String(),
	}

	donations, summary, err := s.donorSummary(ctx, userID)
	switch {
	case err == nil:
		data.Summary = summary
		data.Achievements = impact.Achievements(summary.TotalDonations)
	case isEngineError(err):
		s.logger.WithError(err).WithField("user_id", userID).Warn("donation history rejected by impact engine")
		data.Error = err.Error()
	default:
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch donation history")
		s.internalServerError(w)
		return
	}
	data.Donations = donations

	s.renderPage(w, r, "page.donations", data)
}

func (s *Service) handleGetDonationNew(w http.ResponseWriter, r *http.Request) {
	base := flashes(r)
	base.Title = "Log a Donation"

	s.renderPage(w, r, "page.donation.new", s.donationFormPage(base, &types.DonationForm{}, nil))
}

func (s *Service) donationFormPage(base types.BasePageData, f *types.DonationForm, fieldErrs map[string]string) *types.DonationFormPageData {
	return &types.DonationFormPageData{
		BasePageData: base,
		Form:         f,
		FieldErrors:  fieldErrs,
		BloodTypes:   types.BloodTypes,
		Statuses:     types.DonationStatuses,
		Today:        s.now().Format("2006-01-02"),
	}
}

func (s *Service) handlePostDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	donationForm := new(types.DonationForm)
	donation, err := s.decodeDonation(donationForm, r, userID)
	if err != nil {
		var fieldErrs validate.FieldErrors
		if !errors.As(err, &fieldErrs) {
			s.logger.WithError(err).Error("failed to validate donation form")
			s.internalServerError(w)
			return
		}

		base := types.BasePageData{Title: "Log a Donation", Error: "Please fix the highlighted fields."}
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.donation.new", s.donationFormPage(base, donationForm, fieldErrs))
		return
	}

	before, beforeOK := s.currentTier(ctx, userID)

	err = s.donationRepo.CreateDonation(ctx, donation)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to create donation")
		s.internalServerError(w)
		return
	}

	if beforeOK {
		s.notifyTierChange(ctx, userID, before)
	}

	s.redirectWithNotice(w, r, "/donations", "Donation logged. Thank you for giving!")
}

func (s *Service) decodeDonation(donationForm *types.DonationForm, r *http.Request, userID string) (*types.Donation, error) {
	if err := decoder.Decode(donationForm, r.PostForm); err != nil {
		var decodeErrs form.DecodeErrors
		if !errors.As(err, &decodeErrs) {
			return nil, err
		}

		fieldErrs := validate.FieldErrors{}
		for field := range decodeErrs {
			fieldErrs[field] = "Invalid value."
		}
		return nil, fieldErrs
	}

	return s.validator.Donation(donationForm, userID, s.now())
}

// currentTier reports the donor's tier, or false when the history can't be
// summarised.
func (s *Service) currentTier(ctx context.Context, userID string) (types.AchievementTier, bool) {
	_, summary, err := s.donorSummary(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("unable to compute achievement tier")
		return "", false
	}
	return summary.AchievementTier, true
}

// notifyTierChange compares the donor's tier against before and congratulates
// them if it went up. Failures are logged only.
func (s *Service) notifyTierChange(ctx context.Context, userID string, before types.AchievementTier) {
	after, ok := s.currentTier(ctx, userID)
	if !ok {
		return
	}

	sent, err := s.notifier.TierChanged(ctx, userID, before, after)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to send tier notification")
		return
	}
	if sent {
		s.logger.WithField("user_id", userID).WithField("tier", after).Info("donor reached a new tier")
	}
}

func (s *Service) handlePostDonationStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	donationID := strings.TrimSpace(r.PathValue("id"))
	status := types.DonationStatus(strings.TrimSpace(r.FormValue("status")))
	if !status.Valid() {
		s.redirectWithError(w, r, "/donations", "Unknown donation status.")
		return
	}

	donation, err := s.donationRepo.Donation(ctx, donationID)
	if err != nil || donation.DonorID != userID {
		if err != nil && !errors.Is(err, types.ErrDonationNotFound) {
			s.logger.WithError(err).WithField("donation_id", donationID).Error("failed to load donation")
			s.internalServerError(w)
			return
		}
		s.redirectWithError(w, r, "/donations", "Donation not found.")
		return
	}

	if status == types.DonationStatusCompleted {
		today := s.now().Format("2006-01-02")
		if donation.DonationDate.Format("2006-01-02") > today {
			s.redirectWithError(w, r, "/donations", "A donation can't be completed before its date.")
			return
		}
	}

	before, beforeOK := s.currentTier(ctx, userID)

	err = s.donationRepo.UpdateStatus(ctx, donationID, userID, status)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.redirectWithError(w, r, "/donations", "Donation not found.")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).Error("failed to update donation status")
		s.internalServerError(w)
		return
	}

	if beforeOK {
		s.notifyTierChange(ctx, userID, before)
	}

	s.redirectWithNotice(w, r, "/donations", "Donation updated.")
}

func (s *Service) handlePostDonationDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	donationID := strings.TrimSpace(r.PathValue("id"))

	err = s.donationRepo.DeleteDonation(ctx, donationID, userID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.redirectWithError(w, r, "/donations", "Donation not found.")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).Error("failed to delete donation")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/donations", "Donation removed.")
}
