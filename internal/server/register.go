package server

import (
	"errors"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"bleedforlife/internal"
	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Become a Donor"},
	}

	s.renderPage(w, r, "page.register", data)
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	givenName := strings.TrimSpace(r.FormValue("given_name"))
	familyName := strings.TrimSpace(r.FormValue("family_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Become a Donor"},
		GivenName:    givenName,
		FamilyName:   familyName,
		Email:        email,
	}

	data.FieldErrors = validateRegisterInput(givenName, familyName, email, password, confirmPassword)
	if len(data.FieldErrors) > 0 {
		data.Error = "Please fix the highlighted fields."
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.register", data)
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("given_name"), Value: aws.String(givenName)},
			{Name: aws.String("family_name"), Value: aws.String(familyName)},
		},
	}

	out, err := s.cognitoClient.SignUp(ctx, input)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")

		data.Error, data.FieldErrors = s.mapCognitoSignUpError(err)
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.register", data)
		return
	}

	// onboarding creates the profile later if this fails
	if userID, ok := utils.NormalizeUserID(aws.ToString(out.UserSub)); ok {
		if err := s.profileRepo.UpsertIdentity(ctx, userID, givenName, familyName); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to create donor profile at signup")
		}
	}

	v := url.Values{}
	v.Set("email", email)

	http.Redirect(w, r, "/register/confirm?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) handleGetRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
		Message:      "We emailed you a confirmation code.",
	}

	s.renderPage(w, r, "page.register.confirm", data)
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        email,
	}

	if email == "" || code == "" {
		data.Error = "Enter your email and the confirmation code."
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.register.confirm", data)
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	}

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), input)
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var codeMismatch *ctypes.CodeMismatchException
		var expired *ctypes.ExpiredCodeException
		switch {
		case errors.As(err, &codeMismatch):
			data.Error = "Invalid confirmation code. Please check the code and try again."
		case errors.As(err, &expired):
			data.Error = "That code has expired. Request a new one and try again."
		default:
			data.Error = "Unable to confirm account. Please try again."
		}

		s.renderPageStatus(w, r, http.StatusBadRequest, "page.register.confirm", data)
		return
	}

	http.Redirect(w, r, "/login?confirmed=true", http.StatusSeeOther)
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(givenName, familyName, email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(givenName) == "" {
		errs["given_name"] = "First name is required."
	}

	if strings.TrimSpace(familyName) == "" {
		errs["family_name"] = "Last name is required."
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	strong := len(password) >= 12 &&
		hasUpperReg.MatchString(password) &&
		hasLowerReg.MatchString(password) &&
		hasDigitReg.MatchString(password) &&
		hasSymbolReg.MatchString(password)
	if !strong {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs
	}

	s.logger.WithError(err).Error("unhandled cognito signup error")

	return "Unable to create account right now. Please try again.", fieldErrs
}
