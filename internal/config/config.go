package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DatabaseURL string

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetCodeTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	FrontendEndpoint string

	KafkaBrokers      []string
	NotificationTopic string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3BaseEndpoint string
	StorageFolder  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	SMSProviderURL string
	SMSAccountID   string
	SMSAuthToken   string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServerPort: envIntDefault("SERVER_PORT", 8080),
		LogLevel:   envDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTL:  envDurationDefault("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTokenTTL: envDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetCodeTTL:    envDurationDefault("RESET_CODE_TTL", 10*time.Minute),

		AdminEmail:    envDefault("ADMIN_EMAIL", "admin@gmail.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		FrontendEndpoint: envDefault("FRONTEND_ENDPOINT", "http://localhost:3000"),

		KafkaBrokers:      csv(os.Getenv("KAFKA_BROKERS")),
		NotificationTopic: envDefault("NOTIFICATION_TOPIC", "notification_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    envDefault("ES_USER_INDEX", "user"),

		S3Region:       os.Getenv("S3_REGION"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		StorageFolder:  envDefault("STORAGE_FOLDER", "uploads"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("NO_REPLY_MAIL"),

		SMSProviderURL: os.Getenv("SMS_PROVIDER_URL"),
		SMSAccountID:   os.Getenv("SMS_ACCOUNT_ID"),
		SMSAuthToken:   os.Getenv("SMS_AUTH_TOKEN"),
	}
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
