package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
	Notice string
	Error  string
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Tiers []Achievement
}

type LoginPageData struct {
	BasePageData
	Message string
	Email   string
}

type RegisterPageData struct {
	BasePageData
	GivenName   string
	FamilyName  string
	Email       string
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email   string
	Message string
}

type OnboardingPageData struct {
	BasePageData
	GivenName  string
	FamilyName string
}

type DashboardPageData struct {
	BasePageData
	Profile         *Profile
	Summary         *DonorImpactSummary
	NextTier        AchievementTier
	ToNextTier      int
	HasNextTier     bool
	LivesMilestone  Milestone
	RecentDonations []*Donation
	Notifications   []*Notification
	UnreadCount     int
}

type DonationsPageData struct {
	BasePageData
	Donations    []*Donation
	Summary      *DonorImpactSummary
	Achievements []Achievement
	Policy       string
}

type DonationFormPageData struct {
	BasePageData
	Form        *DonationForm
	FieldErrors map[string]string
	BloodTypes  []BloodType
	Statuses    []DonationStatus
	Today       string
}

type ProfilePageData struct {
	BasePageData
	Profile     *Profile
	Form        *ProfileForm
	FieldErrors map[string]string
	BloodTypes  []BloodType
	AvatarURL   string
	Email       string
}

type RequestsPageData struct {
	BasePageData
	Filter         string
	Filters        []string
	Requests       []*BloodRequest
	DonorBloodType *BloodType
	UserID         string
}

type RequestFormPageData struct {
	BasePageData
	Form          *BloodRequestForm
	FieldErrors   map[string]string
	BloodTypes    []BloodType
	UrgencyLevels []Urgency
}

type NotificationsPageData struct {
	BasePageData
	Notifications []*Notification
	UnreadCount   int
}
