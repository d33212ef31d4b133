package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
}

type Config struct {
	DBURL         string
	Port          string
	APIKey        string
	AuthMode      string // "static" (default) or "jwt"
	JWTSecret     string
	Environment   string
	MaxUploadSize int64
	PresignTTL    time.Duration
	SweepInterval time.Duration // 0 disables the sweeper
	CorsConfig    cors.Options
	S3            S3Config
}

const (
	defaultMaxUploadSize = 16 << 20 // 16 MiB
	defaultPresignTTL    = 300 * time.Second
)

// Load reads configuration from the environment (optionally seeded from an
// env file). Required variables missing at startup are reported together in
// one error so the process fails fast instead of surfacing a 500 on first use.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	cfg := &Config{
		DBURL:       os.Getenv("DB_URL"),
		Port:        getEnv("PORT", "8000"),
		APIKey:      os.Getenv("API_KEY"),
		AuthMode:    getEnv("AUTH_MODE", "static"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(),
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("S3_BUCKET_NAME"),
			Region:          getEnv("S3_REGION", "us-east-1"),
		},
	}

	var err error
	if cfg.MaxUploadSize, err = getEnvInt64("MAX_UPLOAD_SIZE", defaultMaxUploadSize); err != nil {
		return nil, err
	}
	if cfg.PresignTTL, err = getEnvDuration("PRESIGN_TTL", defaultPresignTTL); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getEnvDuration("SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}

	required := []struct {
		name  string
		value string
	}{
		{"DB_URL", cfg.DBURL},
		{"API_KEY", cfg.APIKey},
		{"S3_ENDPOINT", cfg.S3.Endpoint},
		{"S3_ACCESS_KEY_ID", cfg.S3.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", cfg.S3.SecretAccessKey},
		{"S3_BUCKET_NAME", cfg.S3.BucketName},
	}
	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if cfg.AuthMode == "jwt" && cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if cfg.AuthMode != "static" && cfg.AuthMode != "jwt" {
		return nil, fmt.Errorf("invalid AUTH_MODE %q (want static or jwt)", cfg.AuthMode)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}

	return cfg, nil
}

// Gets the env by key or fallbacks; set-but-empty counts as unset.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
