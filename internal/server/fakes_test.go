package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bleedforlife/internal/impact"
	"bleedforlife/internal/store"
	"bleedforlife/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	donorID     = "6f1c1f0e-8a4b-4c1e-9a52-3f5d2b7c9e10"
	requesterID = "0b7e2d4a-1c3f-4e5a-8b9c-7d6e5f4a3b21"
	newDonorSub = "9C2A7E51-3B4D-4F60-A1B2-C3D4E5F60718"

	// 32 random-looking bytes, base64 encoded
	testCookieKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	profiles       map[string]*types.Profile
	upserted       []string
	updated        *types.Profile
	availableQuery []types.BloodType
	available      []*types.Profile
}

func (f *fakeProfiles) Profile(_ context.Context, userID string) (*types.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, _ string, profile *types.Profile) error {
	f.updated = profile
	return nil
}

func (f *fakeProfiles) UpsertIdentity(_ context.Context, userID, _, _ string) error {
	f.upserted = append(f.upserted, userID)
	return nil
}

func (f *fakeProfiles) AvailableDonors(_ context.Context, bloodTypes []types.BloodType) ([]*types.Profile, error) {
	f.availableQuery = bloodTypes
	return f.available, nil
}

type fakeDonations struct {
	byDonor map[string][]*types.Donation
	created []*types.Donation
	updated map[string]types.DonationStatus
	deleted []string
}

func (f *fakeDonations) Donation(_ context.Context, donationID string) (*types.Donation, error) {
	for _, records := range f.byDonor {
		for _, d := range records {
			if d.ID == donationID {
				return d, nil
			}
		}
	}
	return nil, types.ErrDonationNotFound
}

func (f *fakeDonations) DonationsByDonor(_ context.Context, donorID string) ([]*types.Donation, error) {
	return f.byDonor[donorID], nil
}

func (f *fakeDonations) CreateDonation(_ context.Context, donation *types.Donation) error {
	donation.ID = "new-donation"
	f.created = append(f.created, donation)
	if f.byDonor == nil {
		f.byDonor = map[string][]*types.Donation{}
	}
	f.byDonor[donation.DonorID] = append(f.byDonor[donation.DonorID], donation)
	return nil
}

func (f *fakeDonations) UpdateStatus(_ context.Context, donationID, donorID string, status types.DonationStatus) error {
	for _, d := range f.byDonor[donorID] {
		if d.ID == donationID {
			d.Status = &status
			if f.updated == nil {
				f.updated = map[string]types.DonationStatus{}
			}
			f.updated[donationID] = status
			return nil
		}
	}
	return types.ErrDonationNotFound
}

func (f *fakeDonations) DeleteDonation(_ context.Context, donationID, donorID string) error {
	for _, d := range f.byDonor[donorID] {
		if d.ID == donationID {
			f.deleted = append(f.deleted, donationID)
			return nil
		}
	}
	return types.ErrDonationNotFound
}

type fakeRequests struct {
	requests map[string]*types.BloodRequest
	filter   *store.BloodRequestFilter
	created  []*types.BloodRequest
	closed   map[string]types.BloodRequestStatus
}

func (f *fakeRequests) BloodRequest(_ context.Context, requestID string) (*types.BloodRequest, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, types.ErrBloodRequestNotFound
	}
	return req, nil
}

func (f *fakeRequests) OpenRequests(_ context.Context, filter store.BloodRequestFilter) ([]*types.BloodRequest, error) {
	f.filter = &filter
	out := make([]*types.BloodRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, req)
	}
	return out, nil
}

func (f *fakeRequests) Create(_ context.Context, req *types.BloodRequest) error {
	req.ID = "new-request"
	f.created = append(f.created, req)
	return nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, requestID, userID string, status types.BloodRequestStatus) error {
	req, ok := f.requests[requestID]
	if !ok || req.RequesterID != userID {
		return types.ErrBloodRequestNotFound
	}
	if f.closed == nil {
		f.closed = map[string]types.BloodRequestStatus{}
	}
	f.closed[requestID] = status
	return nil
}

type fakeNotifications struct {
	notifications []*types.Notification
	read          []string
}

func (f *fakeNotifications) NotificationsByUser(_ context.Context, userID string, _ uint64) ([]*types.Notification, error) {
	out := make([]*types.Notification, 0)
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && (n.IsRead == nil || !*n.IsRead) {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, notificationID, userID string) error {
	for _, n := range f.notifications {
		if n.ID == notificationID && n.UserID == userID {
			f.read = append(f.read, notificationID)
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

type tierChange struct {
	before, after types.AchievementTier
}

type fakeNotifier struct {
	tierChanges []tierChange
	emergencies int
	responses   []string
}

func (f *fakeNotifier) TierChanged(_ context.Context, _ string, before, after types.AchievementTier) (bool, error) {
	f.tierChanges = append(f.tierChanges, tierChange{before, after})
	return impact.TierRank(after) > impact.TierRank(before), nil
}

func (f *fakeNotifier) EmergencyRequest(_ context.Context, _ *types.BloodRequest, donors []*types.Profile) (int, error) {
	f.emergencies++
	return len(donors), nil
}

func (f *fakeNotifier) RequestResponse(_ context.Context, req *types.BloodRequest, _ *types.Profile) error {
	f.responses = append(f.responses, req.ID)
	return nil
}

type fakeObjects struct {
	uploaded    map[string][]byte
	contentType string
	deleted     []string
}

func (f *fakeObjects) Upload(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[key] = data
	f.contentType = contentType
	return nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploaded, key)
	return nil
}

func (f *fakeObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.uploaded[key]
	return ok, nil
}

func (f *fakeObjects) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

type fakeCognito struct {
	password string
}

func (f *fakeCognito) InitiateAuth(_ context.Context, params *cognitoidentityprovider.InitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	if params.AuthParameters["PASSWORD"] != f.password {
		return nil, &ctypes.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{
			AccessToken: aws.String("access-token"),
			ExpiresIn:   3600,
		},
	}, nil
}

func (f *fakeCognito) SignUp(_ context.Context, params *cognitoidentityprovider.SignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	if aws.ToString(params.Username) == "taken@example.com" {
		return nil, &ctypes.UsernameExistsException{Message: aws.String("exists")}
	}
	return &cognitoidentityprovider.SignUpOutput{UserSub: aws.String(newDonorSub)}, nil
}

func (f *fakeCognito) ConfirmSignUp(_ context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	if aws.ToString(params.ConfirmationCode) != "123456" {
		return nil, &ctypes.CodeMismatchException{Message: aws.String("mismatch")}
	}
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
}

type testEnv struct {
	svc           *Service
	profiles      *fakeProfiles
	donations     *fakeDonations
	requests      *fakeRequests
	notifications *fakeNotifications
	notifier      *fakeNotifier
	objects       *fakeObjects
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		profiles:      &fakeProfiles{profiles: map[string]*types.Profile{}},
		donations:     &fakeDonations{byDonor: map[string][]*types.Donation{}},
		requests:      &fakeRequests{requests: map[string]*types.BloodRequest{}},
		notifications: &fakeNotifications{},
		notifier:      &fakeNotifier{},
		objects:       &fakeObjects{},
	}

	config := &types.Config{
		ServerPort:      8080,
		ReadTimeoutSec:  10,
		WriteTimeoutSec: 15,
		CookieHashKey:   testCookieKey,
		CookieBlockKey:  testCookieKey,
	}

	svc, err := New(
		config,
		logger,
		&fakeCognito{password: "Correct-Horse-9"},
		env.objects,
		impact.NewEngine(impact.CountCompleted),
		env.notifier,
		env.profiles,
		env.donations,
		env.requests,
		env.notifications,
		nil,
		"",
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }

	env.svc = svc
	return env
}

// serveAs routes req to h through a flow mux so path params resolve, with the
// given user already authenticated.
func serveAs(userID, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := flow.New()
	mux.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID, "donor@example.com")))
		})
	})
	mux.HandleFunc(pattern, h, method)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func ptr[T any](v T) *T {
	return &v
}

func donation(id, date string, units *int, status *types.DonationStatus) *types.Donation {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(errors.New("bad test date " + date))
	}
	return &types.Donation{
		ID:           id,
		DonorID:      donorID,
		DonationDate: d,
		BloodType:    types.BloodTypeOPos,
		UnitsDonated: units,
		Status:       status,
	}
}
