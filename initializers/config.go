package initializers

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string
	Mode        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite".
	Driver string
	URL    string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

type PaymentConfig struct {
	APIKey        string
	BaseURL       string
	TestMode      bool
	WebhookSecret string
	Currency      string
}

type MailConfig struct {
	Provider          string
	NotificationEmail string
	FromEmail         string
	FromEmailPassword string
	FromEmailSMTP     string
	SMTPAddress       string
	ResendAPIKey      string
	ResendBaseURL     string
}

type StorageConfig struct {
	Bucket string
	Prefix string
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	AppURL   string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Mail     MailConfig
	Storage  StorageConfig
	Log      LogConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ZIINA_API_KEY", "")
	v.SetDefault("ZIINA_BASE_URL", "https://api-v2.ziina.com/api")
	v.SetDefault("ZIINA_TEST_MODE", false)
	v.SetDefault("ZIINA_WEBHOOK_SECRET", "")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("DEFAULT_CURRENCY", "AED")
	v.SetDefault("ORDER_NOTIFICATION_EMAIL", "")
	v.SetDefault("MAIL_PROVIDER", "smtp")
	v.SetDefault("FROM_EMAIL", "")
	v.SetDefault("FROM_EMAIL_PASSWORD", "")
	v.SetDefault("FROM_EMAIL_SMTP", "")
	v.SetDefault("SMTP_ADDRESS", "")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_PREFIX", "magnets-prints")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig reads the process environment (after LoadEnv) into a Config.
func LoadConfig() Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return Config{
		AppURL: strings.TrimRight(v.GetString("APP_URL"), "/"),
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Mode:        v.GetString("GIN_MODE"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			URL:    v.GetString("DB_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenTTL:      v.GetDuration("TOKEN_TTL"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Payment: PaymentConfig{
			APIKey:        v.GetString("ZIINA_API_KEY"),
			BaseURL:       v.GetString("ZIINA_BASE_URL"),
			TestMode:      v.GetBool("ZIINA_TEST_MODE"),
			WebhookSecret: v.GetString("ZIINA_WEBHOOK_SECRET"),
			Currency:      v.GetString("DEFAULT_CURRENCY"),
		},
		Mail: MailConfig{
			Provider:          strings.ToLower(v.GetString("MAIL_PROVIDER")),
			NotificationEmail: v.GetString("ORDER_NOTIFICATION_EMAIL"),
			FromEmail:         v.GetString("FROM_EMAIL"),
			FromEmailPassword: v.GetString("FROM_EMAIL_PASSWORD"),
			FromEmailSMTP:     v.GetString("FROM_EMAIL_SMTP"),
			SMTPAddress:       v.GetString("SMTP_ADDRESS"),
			ResendAPIKey:      v.GetString("RESEND_API_KEY"),
			ResendBaseURL:     v.GetString("RESEND_BASE_URL"),
		},
		Storage: StorageConfig{
			Bucket: v.GetString("S3_BUCKET"),
			Prefix: v.GetString("S3_PREFIX"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
