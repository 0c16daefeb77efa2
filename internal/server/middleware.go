package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bleedforlife/internal"
	"bleedforlife/internal/utils"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyEmail  contextKey = "email"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the access token cookie against the Cognito JWKS and
// puts the donor's id on the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")

			s.setRedirectCookie(w, r.URL.RequestURI(), time.Minute*5)
			s.redirectToLogin(w, r)
			return
		}

		var accessToken string
		err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.clearAccessTokenCookie(w)
			s.redirectToLogin(w, r)
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.redirectToLogin(w, r)
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Info("access token rejected")
			s.clearAccessTokenCookie(w)
			s.redirectToLogin(w, r)
			return
		}

		subject, ok := token.Subject()
		if !ok || subject == "" {
			s.logger.Error("no user ID in JWT subject claim")
			s.redirectToLogin(w, r)
			return
		}

		userID, ok := utils.NormalizeUserID(subject)
		if !ok {
			s.logger.WithField("subject", subject).Error("JWT subject is not a valid user id")
			s.redirectToLogin(w, r)
			return
		}

		ctx := withUser(r.Context(), userID, s.accessTokenEmail(token, userID))

		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Cognito access tokens usually omit email
func (s *Service) accessTokenEmail(token jwt.Token, userID string) string {
	var email string
	if err := token.Get("email", &email); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Debug("no email claim in access token")
		return ""
	}
	return email
}

func withUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserID, userID)
	if email != "" {
		ctx = context.WithValue(ctx, contextKeyEmail, email)
	}
	return ctx
}

// StripTrailingSlash wraps the whole mux. flow only runs route middleware
// after a pattern has matched.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
