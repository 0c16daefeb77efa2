package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"public"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"session_id"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Which donation statuses count toward impact and eligibility: "completed" or "all"
	CountingPolicy string `envconfig:"COUNTING_POLICY" default:"completed"`

	// Avatar storage, "s3" or "supabase"
	StorageBackend     string `envconfig:"STORAGE_BACKEND" default:"s3"`
	S3BucketName       string `envconfig:"S3_BUCKET_NAME"`
	SupabaseProjectID  string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseBucketName string `envconfig:"SUPABASE_BUCKET_NAME" default:"avatars"`

	// Cron spec for the eligibility reminder sweep. Empty disables it.
	ReminderSchedule string `envconfig:"REMINDER_SCHEDULE" default:"0 9 * * *"`
}
