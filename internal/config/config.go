package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort      = "8080"
	defaultDBPath    = "vidary.db"
	defaultJWTTTL    = "24h"
	defaultJWTSecret = "change-me-jwt-secret"
)

// Config is the full runtime configuration, read from the environment once at
// startup and passed down explicitly. No package keeps its own os.Getenv calls.
type Config struct {
	Port        string
	DatabaseURL string

	// CORSOrigins extends the middleware's local-development allow-list.
	CORSOrigins []string

	JWTSecret string
	JWTTTL    time.Duration

	Detection DetectionConfig
	Storage   StorageConfig
}

// DetectionConfig points at the external AI-content-detection API.
type DetectionConfig struct {
	BaseURL string
	APIKey  string
}

// StorageConfig describes the two alternative object-storage backends.
// The proxy is preferred when both are present.
type StorageConfig struct {
	ProxyURL   string
	ProxyToken string

	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", defaultPort),
		DatabaseURL: getEnv("DATABASE_URL", defaultDBPath),
		JWTSecret:   strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		CORSOrigins: parseListEnv("CORS_ALLOWED_ORIGINS"),
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.Detection = DetectionConfig{
		BaseURL: strings.TrimRight(getEnv("DETECTION_API_URL", ""), "/"),
		APIKey:  strings.TrimSpace(os.Getenv("DETECTION_API_KEY")),
	}

	cfg.Storage = StorageConfig{
		ProxyURL:      strings.TrimRight(getEnv("STORAGE_PROXY_URL", ""), "/"),
		ProxyToken:    strings.TrimSpace(os.Getenv("STORAGE_PROXY_TOKEN")),
		Endpoint:      getEnv("S3_ENDPOINT", ""),
		AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		SecretKey:     getEnv("S3_SECRET_KEY", ""),
		Bucket:        getEnv("S3_BUCKET", ""),
		Region:        getEnv("S3_REGION", "us-east-1"),
		UseSSL:        parseBoolEnv("S3_USE_SSL", true),
		PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseListEnv splits a comma-separated variable, dropping empty entries.
// CORS_ALLOWED_ORIGINS=https://app.example.com,https://admin.example.com
func parseListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseBoolEnv(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return d, nil
}
