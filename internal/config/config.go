package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds object storage settings for AWS S3.
// Credentials come from the standard AWS environment/shared config chain.
type S3Config struct {
	Region   string
	Bucket   string
	Endpoint string
}

// TikTokConfig controls how scraping sessions are created at startup.
type TikTokConfig struct {
	MSToken     string
	Headless    bool
	Browser     string
	NumSessions int
	TimeoutSec  int
}

// ArchiveConfig toggles persisting fetched payloads and selects the object store.
type ArchiveConfig struct {
	Enabled       bool
	StorageDriver string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port     string
	Timezone string
	LogLevel string
	TikTok   TikTokConfig
	Archive  ArchiveConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	S3       S3Config
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TikTok: TikTokConfig{
			// ms_token is the name the token has historically been exported under
			MSToken:     getEnv("MS_TOKEN", os.Getenv("ms_token")),
			Headless:    getEnvBool("TIKTOK_HEADLESS", true),
			Browser:     strings.ToLower(getEnv("TIKTOK_BROWSER", "chromium")),
			NumSessions: getEnvInt("TIKTOK_SESSIONS", 1),
			TimeoutSec:  getEnvInt("TIKTOK_TIMEOUT_SEC", 15),
		},
		Archive: ArchiveConfig{
			Enabled:       getEnvBool("ARCHIVE_ENABLED", false),
			StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Bucket:   getEnv("AWS_S3_BUCKET", ""),
			Endpoint: getEnv("AWS_S3_ENDPOINT", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
