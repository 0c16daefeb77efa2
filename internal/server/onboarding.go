package server

import (
	"net/http"
	"strings"

	"bleedforlife/pkg/types"
)

func (s *Service) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	base := flashes(r)
	base.Title = "Welcome"

	s.renderPage(w, r, "page.onboarding", &types.OnboardingPageData{BasePageData: base})
}

// handlePostOnboarding creates the donor's profile row, then sends them on to
// fill in the rest of it.
func (s *Service) handlePostOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	givenName := strings.TrimSpace(r.FormValue("given_name"))
	familyName := strings.TrimSpace(r.FormValue("family_name"))

	if givenName == "" {
		data := &types.OnboardingPageData{
			BasePageData: types.BasePageData{Title: "Welcome", Error: "Tell us your first name."},
			GivenName:    givenName,
			FamilyName:   familyName,
		}
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.onboarding", data)
		return
	}

	err = s.profileRepo.UpsertIdentity(ctx, userID, givenName, familyName)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to create profile during onboarding")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Welcome aboard! Add your blood type so we can match you with requests.")
}
