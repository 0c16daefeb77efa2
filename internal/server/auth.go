package server

import (
	"net/http"
	"strings"
	"time"

	"bleedforlife/internal"
	"bleedforlife/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
	}
	if r.URL.Query().Get("confirmed") == "true" {
		data.Message = "Your account is confirmed. Log in to get started."
	}

	s.renderPage(w, r, "page.login", data)
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
		Email:        email,
	}

	if email == "" || password == "" {
		data.Error = "Enter your email and password."
		s.renderPageStatus(w, r, http.StatusBadRequest, "page.login", data)
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), input)
	if err != nil {
		s.logger.WithError(err).Info("login rejected")
		data.Error = "Invalid email or password."
		s.renderPageStatus(w, r, http.StatusUnauthorized, "page.login", data)
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		data.Error = "Login could not be completed. Please try again."
		s.renderPageStatus(w, r, http.StatusUnauthorized, "page.login", data)
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME)
	if err == nil && strings.HasPrefix(redirectCookie.Value, "/") && !strings.HasPrefix(redirectCookie.Value, "//") {
		s.clearRedirectCookie(w)
		http.Redirect(w, r, redirectCookie.Value, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAccessTokenCookie(w)
	s.redirectWithNotice(w, r, "/", "You have been logged out.")
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	expireCookie(w, internal.COOKIE_REDIRECT_NAME)
}

func (s *Service) clearAccessTokenCookie(w http.ResponseWriter) {
	expireCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME)
}

func expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
