package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/internal/storage"
	"bleedforlife/internal/store"
	"bleedforlife/internal/validate"
	"bleedforlife/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type identityProvider interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

type profileRepository interface {
	Profile(ctx context.Context, userID string) (*types.Profile, error)
	Update(ctx context.Context, userID string, profile *types.Profile) error
	UpsertIdentity(ctx context.Context, userID, givenName, familyName string) error
	AvailableDonors(ctx context.Context, bloodTypes []types.BloodType) ([]*types.Profile, error)
}

type donationRepository interface {
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	DonationsByDonor(ctx context.Context, donorID string) ([]*types.Donation, error)
	CreateDonation(ctx context.Context, donation *types.Donation) error
	UpdateStatus(ctx context.Context, donationID, donorID string, status types.DonationStatus) error
	DeleteDonation(ctx context.Context, donationID, donorID string) error
}

type bloodRequestRepository interface {
	BloodRequest(ctx context.Context, requestID string) (*types.BloodRequest, error)
	OpenRequests(ctx context.Context, filter store.BloodRequestFilter) ([]*types.BloodRequest, error)
	Create(ctx context.Context, req *types.BloodRequest) error
	UpdateStatus(ctx context.Context, requestID, requesterID string, status types.BloodRequestStatus) error
}

type notificationRepository interface {
	NotificationsByUser(ctx context.Context, userID string, limit uint64) ([]*types.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type donorNotifier interface {
	TierChanged(ctx context.Context, userID string, before, after types.AchievementTier) (bool, error)
	EmergencyRequest(ctx context.Context, req *types.BloodRequest, donors []*types.Profile) (int, error)
	RequestResponse(ctx context.Context, req *types.BloodRequest, donor *types.Profile) error
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	cognitoClient identityProvider
	objects       storage.ObjectStore
	engine        *impact.Engine
	validator     *validate.Validator
	notifier      donorNotifier

	profileRepo      profileRepository
	donationRepo     donationRepository
	requestRepo      bloodRequestRepository
	notificationRepo notificationRepository

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	now func() time.Time

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient identityProvider,
	objects storage.ObjectStore,
	engine *impact.Engine,
	notifier donorNotifier,
	profileRepo profileRepository,
	donationRepo donationRepository,
	requestRepo bloodRequestRepository,
	notificationRepo notificationRepository,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		objects:       objects,
		engine:        engine,
		validator:     validate.New(),
		notifier:      notifier,
		cookie:        securecookie.New(hashKey, blockKey),

		profileRepo:      profileRepo,
		donationRepo:     donationRepo,
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		now:       time.Now,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           StripTrailingSlash(mux),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/onboarding", s.handleGetOnboarding, http.MethodGet)
		r.HandleFunc("/onboarding", s.handlePostOnboarding, http.MethodPost)

		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)

		r.HandleFunc("/donations", s.handleGetDonations, http.MethodGet)
		r.HandleFunc("/donations/new", s.handleGetDonationNew, http.MethodGet)
		r.HandleFunc("/donations", s.handlePostDonation, http.MethodPost)
		r.HandleFunc("/donations/:id/status", s.handlePostDonationStatus, http.MethodPost)
		r.HandleFunc("/donations/:id/delete", s.handlePostDonationDelete, http.MethodPost)

		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handlePostProfile, http.MethodPost)
		r.HandleFunc("/profile/avatar", s.handlePostAvatar, http.MethodPost)
		r.HandleFunc("/profile/avatar/delete", s.handlePostAvatarDelete, http.MethodPost)

		r.HandleFunc("/requests", s.handleGetRequests, http.MethodGet)
		r.HandleFunc("/requests/new", s.handleGetRequestNew, http.MethodGet)
		r.HandleFunc("/requests", s.handlePostRequest, http.MethodPost)
		r.HandleFunc("/requests/:id/respond", s.handlePostRequestRespond, http.MethodPost)
		r.HandleFunc("/requests/:id/close", s.handlePostRequestClose, http.MethodPost)

		r.HandleFunc("/notifications", s.handleGetNotifications, http.MethodGet)
		r.HandleFunc("/notifications/:id/read", s.handlePostNotificationRead, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil || *s == "" {
				return defaultVal
			}
			return *s
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"datePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"isoDate": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"units": func(d *types.Donation) int {
			return d.EffectiveUnits()
		},
		"status": func(d *types.Donation) string {
			return string(d.EffectiveStatus())
		},
		"bloodType": func(b *types.BloodType) string {
			if b == nil {
				return ""
			}
			return string(*b)
		},
		"urgency": func(u *types.Urgency) string {
			if u == nil {
				return ""
			}
			return string(*u)
		},
		"unread": func(n *types.Notification) bool {
			return n.IsRead == nil || !*n.IsRead
		},
		"checked": func(b *bool) bool {
			return b != nil && *b
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
