package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bleedforlife/internal"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRouter_PublicPages(t *testing.T) {
	env := newTestEnv(t)
	h := env.svc.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Legend")
	assert.Contains(t, rec.Body.String(), "Become a donor")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StripTrailingSlash(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/?x=1", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/donations?x=1", rec.Header().Get("Location"))
}

func TestRequireAuth_RedirectsAnonymousUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var redirect *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_REDIRECT_NAME {
			redirect = c
		}
	}
	require.NotNil(t, redirect)
	assert.Equal(t, "/dashboard", redirect.Value)
}

func TestRequireAuth_RejectsUndecodableCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: internal.COOKIE_ACCESS_TOKEN_NAME, Value: "garbage"})

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAccessTokenEmail(t *testing.T) {
	env := newTestEnv(t)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	env.svc.logger = logger

	withEmail, err := jwt.NewBuilder().Subject(donorID).Claim("email", "donor@example.com").Build()
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", env.svc.accessTokenEmail(withEmail, donorID))
	assert.Empty(t, hook.AllEntries())

	withoutEmail, err := jwt.NewBuilder().Subject(donorID).Build()
	require.NoError(t, err)
	assert.Empty(t, env.svc.accessTokenEmail(withoutEmail, donorID))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "no email claim in access token", entry.Message)
	assert.Equal(t, donorID, entry.Data["user_id"])
	assert.Contains(t, entry.Data, logrus.ErrorKey)

	badEmail, err := jwt.NewBuilder().Subject(donorID).Claim("email", 42).Build()
	require.NoError(t, err)
	assert.Empty(t, env.svc.accessTokenEmail(badEmail, donorID))
	assert.Len(t, hook.AllEntries(), 2)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	h := env.svc.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/login", url.Values{"email": {"donor@example.com"}, "password": {"Correct-Horse-9"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	var token *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_ACCESS_TOKEN_NAME {
			token = c
		}
	}
	require.NotNil(t, token)

	var decoded string
	require.NoError(t, env.svc.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, token.Value, &decoded))
	assert.Equal(t, "access-token", decoded)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/login", url.Values{"email": {"donor@example.com"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/login", url.Values{"email": {""}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_FollowsRedirectCookie(t *testing.T) {
	env := newTestEnv(t)

	req := postForm("/login", url.Values{"email": {"donor@example.com"}, "password": {"Correct-Horse-9"}})
	req.AddCookie(&http.Cookie{Name: internal.COOKIE_REDIRECT_NAME, Value: "/requests?filter=critical"})

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/requests?filter=critical", rec.Header().Get("Location"))

	req = postForm("/login", url.Values{"email": {"donor@example.com"}, "password": {"Correct-Horse-9"}})
	req.AddCookie(&http.Cookie{Name: internal.COOKIE_REDIRECT_NAME, Value: "//evil.example.com"})

	rec = httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	h := env.svc.Handler()

	valid := url.Values{
		"given_name":       {"Ada"},
		"family_name":      {"Okafor"},
		"email":            {"ada@example.com"},
		"password":         {"Str0ng!Password"},
		"confirm_password": {"Str0ng!Password"},
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/register", valid))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register/confirm?email=ada%40example.com", rec.Header().Get("Location"))
	assert.Equal(t, []string{strings.ToLower(newDonorSub)}, env.profiles.upserted)

	taken := url.Values{}
	for k, v := range valid {
		taken[k] = v
	}
	taken.Set("email", "taken@example.com")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/register", taken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "An account with this email already exists.")
	assert.Len(t, env.profiles.upserted, 1)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/register", url.Values{"email": {"nope"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterConfirm(t *testing.T) {
	env := newTestEnv(t)
	h := env.svc.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/register/confirm", url.Values{"email": {"ada@example.com"}, "code": {"000000"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid confirmation code.")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, postForm("/register/confirm", url.Values{"email": {"ada@example.com"}, "code": {"123456"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?confirmed=true", rec.Header().Get("Location"))
}

func TestValidateRegisterInput(t *testing.T) {
	errs := validateRegisterInput("Ada", "Okafor", "ada@example.com", "Str0ng!Password", "Str0ng!Password")
	assert.Empty(t, errs)

	errs = validateRegisterInput(" ", "", "not-an-email", "short", "different")
	assert.Contains(t, errs, "given_name")
	assert.Contains(t, errs, "family_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "confirm_password")

	errs = validateRegisterInput("Ada", "Okafor", "ada@example.com", "alllowercase1!", "alllowercase1!")
	assert.Contains(t, errs, "password")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_ACCESS_TOKEN_NAME && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
