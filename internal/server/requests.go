package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/internal/store"
	"bleedforlife/internal/validate"
	"bleedforlife/pkg/types"
)

const (
	filterAll        = "all"
	filterCritical   = "critical"
	filterCompatible = "compatible"

	openRequestsLimit = 50
)

var requestFilters = []string{filterAll, filterCritical, filterCompatible}

// requestFilter turns the filter query value into a store filter. Compatible
// needs the donor's blood type; ok is false when it is missing.
func requestFilter(name string, donorBloodType *types.BloodType) (store.BloodRequestFilter, bool) {
	filter := store.BloodRequestFilter{Limit: openRequestsLimit}

	switch name {
	case filterCritical:
		filter.Urgency = types.UrgencyCritical
	case filterCompatible:
		if donorBloodType == nil {
			return filter, false
		}
		filter.BloodTypes = donorBloodType.Recipients()
	}

	return filter, true
}

func (s *Service) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	filterName := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter")))
	switch filterName {
	case filterCritical, filterCompatible:
	default:
		filterName = filterAll
	}

	base := flashes(r)
	base.Title = "Blood Requests"

	data := &types.RequestsPageData{
		BasePageData: base,
		Filter:       filterName,
		Filters:      requestFilters,
		Requests:     []*types.BloodRequest{},
		UserID:       userID,
	}

	profile, err := s.profileRepo.Profile(ctx, userID)
	if err != nil && !errors.Is(err, types.ErrProfileNotFound) {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile for requests")
		s.internalServerError(w)
		return
	}
	if profile != nil {
		data.DonorBloodType = profile.BloodType
	}

	filter, ok := requestFilter(filterName, data.DonorBloodType)
	if !ok {
		data.Error = "Add your blood type to your profile to see compatible requests."
		s.renderPage(w, r, "page.requests", data)
		return
	}

	data.Requests, err = s.requestRepo.OpenRequests(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch open blood requests")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, r, "page.requests", data)
}

func (s *Service) requestFormPage(base types.BasePageData, f *types.BloodRequestForm, fieldErrs map[string]string) *types.RequestFormPageData {
	return &types.RequestFormPageData{
		BasePageData:  base,
		Form:          f,
		FieldErrors:   fieldErrs,
		BloodTypes:    types.BloodTypes,
		UrgencyLevels: types.UrgencyLevels,
	}
}

func (s *Service) handleGetRequestNew(w http.ResponseWriter, r *http.Request) {
	base := flashes(r)
	base.Title = "Emergency Request"

	s.renderPage(w, r, "page.request.new", s.requestFormPage(base, &types.BloodRequestForm{UrgencyLevel: string(types.UrgencyCritical), UnitsNeeded: 1}, nil))
}

func (s *Service) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	requestForm := new(types.BloodRequestForm)
	var req *types.BloodRequest
	err = decoder.Decode(requestForm, r.PostForm)
	if err == nil {
		req, err = s.validator.BloodRequest(requestForm, userID)
	} else {
		err = validate.FieldErrors{"units_needed": "Must be a whole number."}
	}
	if err != nil {
		var fieldErrs validate.FieldErrors
		if !errors.As(err, &fieldErrs) {
			s.logger.WithError(err).Error("failed to validate blood request form")
			s.internalServerError(w)
			return
		}

		base := types.BasePageData{Title: "Emergency Request", Error: "Please fix the highlighted fields."}
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.request.new", s.requestFormPage(base, requestForm, fieldErrs))
		return
	}

	err = s.requestRepo.Create(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to create blood request")
		s.internalServerError(w)
		return
	}

	donors, err := s.profileRepo.AvailableDonors(ctx, req.BloodType.Donors())
	if err != nil {
		s.logger.WithError(err).WithField("request_id", req.ID).Error("failed to find compatible donors")
		s.redirectWithNotice(w, r, "/requests", "Request posted.")
		return
	}

	sent, err := s.notifier.EmergencyRequest(ctx, req, donors)
	if err != nil {
		s.logger.WithError(err).WithField("request_id", req.ID).Error("failed to alert every compatible donor")
	}

	s.logger.WithField("request_id", req.ID).WithField("alerted", sent).Info("blood request posted")

	s.redirectWithNotice(w, r, "/requests", fmt.Sprintf("Request posted. %d compatible donor(s) alerted.", sent))
}

// handlePostRequestRespond books a scheduled donation against an open request
// for an eligible, compatible donor and tells the requester.
func (s *Service) handlePostRequestRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	requestID := strings.TrimSpace(r.PathValue("id"))

	req, err := s.requestRepo.BloodRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, types.ErrBloodRequestNotFound) {
			s.redirectWithError(w, r, "/requests", "Request not found.")
			return
		}
		s.logger.WithError(err).WithField("request_id", requestID).Error("failed to load blood request")
		s.internalServerError(w)
		return
	}

	if req.Status != nil && *req.Status != types.BloodRequestStatusOpen {
		s.redirectWithError(w, r, "/requests", "This request is no longer open.")
		return
	}
	if req.RequesterID == userID {
		s.redirectWithError(w, r, "/requests", "You can't respond to your own request.")
		return
	}

	profile, err := s.profileRepo.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile for response")
		s.internalServerError(w)
		return
	}

	if profile.BloodType == nil {
		s.redirectWithError(w, r, "/profile", "Add your blood type before responding to requests.")
		return
	}
	if !profile.BloodType.CanDonateTo(req.BloodType) {
		s.redirectWithError(w, r, "/requests", fmt.Sprintf("Your blood type %s is not compatible with %s.", *profile.BloodType, req.BloodType))
		return
	}

	history, summary, err := s.donorSummary(ctx, userID)
	if err != nil {
		if isEngineError(err) {
			s.redirectWithError(w, r, "/donations", "Fix the invalid records in your donation history first.")
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to check eligibility")
		s.internalServerError(w)
		return
	}
	if !summary.Eligibility.Available {
		s.redirectWithError(w, r, "/requests", fmt.Sprintf("You can donate again on %s.", summary.Eligibility.NextEligibleDate.Format("Jan 2, 2006")))
		return
	}

	donation := scheduledResponse(req, *profile.BloodType, userID, s.now())

	if booked := conflictingBooking(history, donation.DonationDate); booked != nil {
		s.redirectWithError(w, r, "/donations", fmt.Sprintf("You already have a donation scheduled on %s.", booked.DonationDate.Format("Jan 2, 2006")))
		return
	}

	err = s.donationRepo.CreateDonation(ctx, donation)
	if err != nil {
		s.logger.WithError(err).WithField("request_id", requestID).Error("failed to schedule donation for request")
		s.internalServerError(w)
		return
	}

	if err := s.notifier.RequestResponse(ctx, req, profile); err != nil {
		s.logger.WithError(err).WithField("request_id", requestID).Error("failed to notify requester")
	}

	s.redirectWithNotice(w, r, "/donations", "Thank you! Your donation is scheduled.")
}

// scheduledResponse is the donation booked when a donor answers a request. It
// is dated on the request's needed-by day, or today when that has passed.
func scheduledResponse(req *types.BloodRequest, bloodType types.BloodType, donorID string, now time.Time) *types.Donation {
	y, m, d := now.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if req.NeededBy != nil && req.NeededBy.After(date) {
		date = *req.NeededBy
	}

	units := types.DefaultUnitsDonated
	status := types.DonationStatusScheduled
	center := req.HospitalName
	notes := fmt.Sprintf("Response to blood request %s for %s", req.ID, req.PatientName)

	return &types.Donation{
		DonorID:        donorID,
		DonationDate:   date,
		BloodType:      bloodType,
		UnitsDonated:   &units,
		Status:         &status,
		DonationCenter: &center,
		Notes:          &notes,
	}
}

// conflictingBooking returns a scheduled donation that falls inside the
// cooldown window on either side of date, if there is one.
func conflictingBooking(history []*types.Donation, date time.Time) *types.Donation {
	for _, d := range history {
		if d.EffectiveStatus() != types.DonationStatusScheduled {
			continue
		}

		gap := d.DonationDate.Sub(date)
		if gap < 0 {
			gap = -gap
		}
		if gap < impact.CooldownDays*24*time.Hour {
			return d
		}
	}
	return nil
}

func (s *Service) handlePostRequestClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	requestID := strings.TrimSpace(r.PathValue("id"))

	status := types.BloodRequestStatusClosed
	if r.FormValue("status") == string(types.BloodRequestStatusFulfilled) {
		status = types.BloodRequestStatusFulfilled
	}

	err = s.requestRepo.UpdateStatus(ctx, requestID, userID, status)
	if err != nil {
		if errors.Is(err, types.ErrBloodRequestNotFound) {
			s.redirectWithError(w, r, "/requests", "Request not found.")
			return
		}
		s.logger.WithError(err).WithField("request_id", requestID).Error("failed to close blood request")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/requests", "Request updated.")
}
