package server

import (
	"bufio"
	"context"
	"errors"
	"net/http"

	"bleedforlife/internal/storage"
	"bleedforlife/internal/utils"
	"bleedforlife/internal/validate"
	"bleedforlife/pkg/types"
)

const maxAvatarBytes = 5 << 20

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
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
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile")
		s.internalServerError(w)
		return
	}

	base := flashes(r)
	base.Title = "My Profile"

	s.renderPage(w, r, "page.profile", s.profilePage(ctx, base, profile, profileFormFrom(profile), nil))
}

func (s *Service) profilePage(ctx context.Context, base types.BasePageData, profile *types.Profile, f *types.ProfileForm, fieldErrs map[string]string) *types.ProfilePageData {
	email, _ := ctx.Value(contextKeyEmail).(string)

	data := &types.ProfilePageData{
		BasePageData: base,
		Profile:      profile,
		Form:         f,
		FieldErrors:  fieldErrs,
		BloodTypes:   types.BloodTypes,
		Email:        email,
	}

	if s.objects == nil || profile.UserID == "" {
		return data
	}

	key := storage.AvatarKey(profile.UserID)
	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("avatar_key", key).Warn("failed to check for avatar")
		return data
	}
	if !exists {
		return data
	}

	url, err := s.objects.URL(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("avatar_key", key).Warn("failed to resolve avatar url")
		return data
	}
	data.AvatarURL = url

	return data
}

func profileFormFrom(p *types.Profile) *types.ProfileForm {
	f := &types.ProfileForm{
		FirstName:             utils.PtrString(p.FirstName),
		LastName:              utils.PtrString(p.LastName),
		Phone:                 utils.PtrString(p.Phone),
		Address:               utils.PtrString(p.Address),
		City:                  utils.PtrString(p.City),
		State:                 utils.PtrString(p.State),
		ZipCode:               utils.PtrString(p.ZipCode),
		EmergencyContactName:  utils.PtrString(p.EmergencyContactName),
		EmergencyContactPhone: utils.PtrString(p.EmergencyContactPhone),
		MedicalConditions:     utils.PtrString(p.MedicalConditions),
		IsAvailableDonor:      utils.PtrBool(p.IsAvailableDonor),
	}
	if p.BloodType != nil {
		f.BloodType = string(*p.BloodType)
	}
	if p.DateOfBirth != nil {
		f.DateOfBirth = p.DateOfBirth.Format("2006-01-02")
	}
	return f
}

func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
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
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile")
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	profileForm := new(types.ProfileForm)
	if err := decoder.Decode(profileForm, r.PostForm); err != nil {
		s.logger.WithError(err).Info("failed to decode profile form")
		base := types.BasePageData{Title: "My Profile", Error: "Some details could not be read. Please try again."}
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.profile", s.profilePage(ctx, base, profile, profileFormFrom(profile), nil))
		return
	}

	err = s.validator.Profile(profileForm, profile)
	if err != nil {
		var fieldErrs validate.FieldErrors
		if !errors.As(err, &fieldErrs) {
			s.logger.WithError(err).Error("failed to validate profile form")
			s.internalServerError(w)
			return
		}

		base := types.BasePageData{Title: "My Profile", Error: "Please fix the highlighted fields."}
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.profile", s.profilePage(ctx, base, profile, profileForm, fieldErrs))
		return
	}

	err = s.profileRepo.Update(ctx, userID, profile)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to update profile")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Profile saved.")
}

func (s *Service) handlePostAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		s.redirectWithError(w, r, "/profile", "Avatar must be an image under 5 MB.")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		s.redirectWithError(w, r, "/profile", "Choose an image to upload.")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		s.redirectWithError(w, r, "/profile", "Avatar must be an image under 5 MB.")
		return
	}

	body := bufio.NewReader(file)
	sniff, _ := body.Peek(512)
	contentType := http.DetectContentType(sniff)

	if !storage.AcceptedAvatarType(contentType) {
		s.redirectWithError(w, r, "/profile", "Avatar must be a JPEG, PNG, WebP or GIF image.")
		return
	}

	_, err = s.profileRepo.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile for avatar upload")
		s.internalServerError(w)
		return
	}

	err = s.objects.Upload(ctx, storage.AvatarKey(userID), body, contentType)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to upload avatar")
		s.redirectWithError(w, r, "/profile", "Could not upload your avatar. Please try again.")
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Avatar updated.")
}

func (s *Service) handlePostAvatarDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	err = s.objects.Delete(ctx, storage.AvatarKey(userID))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to delete avatar")
		s.redirectWithError(w, r, "/profile", "Could not remove your avatar. Please try again.")
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Avatar removed.")
}
