package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data provider backends selectable with DATA_PROVIDER.
const (
	ProviderLocal  = "local"
	ProviderDynamo = "dynamo"
	ProviderRemote = "remote"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DataProvider string
	LocalDBPath  string

	RemoteAPIURL      string
	RemoteAPIToken    string
	RemoteAPIEmail    string
	RemoteAPIPassword string
	HTTPTimeout       time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	QRURLTTL       time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiryDays     int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string

	DigestPhone               string
	DigestEmail               string
	DigestCron                string
	NotificationRetentionDays int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Customers  string
	Jobs       string
	Users      string
	Dismissals string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataProvider: strings.ToLower(getEnv("DATA_PROVIDER", ProviderLocal)),
		LocalDBPath:  getEnv("LOCAL_DB_PATH", "./data/crm.db"),

		RemoteAPIURL:      strings.TrimRight(getEnv("REMOTE_API_URL", "http://localhost:3000/v1"), "/"),
		RemoteAPIToken:    getEnv("REMOTE_API_TOKEN", ""),
		RemoteAPIEmail:    getEnv("REMOTE_API_EMAIL", ""),
		RemoteAPIPassword: getEnv("REMOTE_API_PASSWORD", ""),
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Customers:  getEnv("DYNAMO_TABLE_CUSTOMERS", "customers"),
			Jobs:       getEnv("DYNAMO_TABLE_JOBS", "jobs"),
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			Dismissals: getEnv("DYNAMO_TABLE_DISMISSALS", "notification_dismissals"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", ""),
		QRURLTTL:     getEnvDuration("QR_URL_TTL", 24*time.Hour),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiryDays:     getEnvInt("JWT_EXPIRY_DAYS", 7),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		DigestPhone:               getEnv("DIGEST_PHONE", ""),
		DigestEmail:               getEnv("DIGEST_EMAIL", ""),
		DigestCron:                getEnv("DIGEST_CRON", "0 8 * * *"),
		NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 30),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate reports settings that make the selected provider unusable.
func (c *Config) Validate() error {
	switch c.DataProvider {
	case ProviderLocal:
		if c.LocalDBPath == "" {
			return fmt.Errorf("LOCAL_DB_PATH is required for the local provider")
		}
	case ProviderRemote:
		if c.RemoteAPIURL == "" {
			return fmt.Errorf("REMOTE_API_URL is required for the remote provider")
		}
	case ProviderDynamo:
	default:
		return fmt.Errorf("unknown DATA_PROVIDER %q (want %s, %s or %s)",
			c.DataProvider, ProviderLocal, ProviderDynamo, ProviderRemote)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
