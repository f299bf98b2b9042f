package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads the environment variables from .env if GO_ENV is unset or "development".
// A missing .env file is not an error.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV    string
	PORT      int
	LOG_LEVEL string

	// Partnership API (collaborator backend)
	PARTNERSHIP_API_URL   string
	PARTNERSHIP_API_TOKEN string
	HTTP_TIMEOUT          time.Duration

	// Boundary data for the choropleth
	GEO_TOPOLOGY_URL    string
	GEO_TOPOLOGY_OBJECT string

	// Redis Configuration
	REDIS_URL string

	ALLOWED_ORIGINS string

	// Scheduled jobs
	CRON_ENABLED      bool
	DIGEST_RECIPIENTS []string

	// SMTP Configuration
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	SMTP_FROM     string

	// Report storage (S3 compatible, e.g. DigitalOcean Spaces)
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_BUCKET     string
	SPACES_REGION     string
	SPACES_ENDPOINT   string
}

const (
	DefaultGeoTopologyURL    = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"
	DefaultGeoTopologyObject = "countries"
)

func Get() (*EnvironmentVariable, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	timeout, err := time.ParseDuration(os.Getenv("HTTP_TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:    os.Getenv("GO_ENV"),
		PORT:      port,
		LOG_LEVEL: getEnvOrDefault("LOG_LEVEL", "info"),

		PARTNERSHIP_API_URL:   strings.TrimRight(getEnvOrDefault("PARTNERSHIP_API_URL", "http://localhost:5000/api"), "/"),
		PARTNERSHIP_API_TOKEN: os.Getenv("PARTNERSHIP_API_TOKEN"),
		HTTP_TIMEOUT:          timeout,

		GEO_TOPOLOGY_URL:    getEnvOrDefault("GEO_TOPOLOGY_URL", DefaultGeoTopologyURL),
		GEO_TOPOLOGY_OBJECT: getEnvOrDefault("GEO_TOPOLOGY_OBJECT", DefaultGeoTopologyObject),

		REDIS_URL: os.Getenv("REDIS_URL"),

		ALLOWED_ORIGINS: getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		// Default to enabled
		CRON_ENABLED:      os.Getenv("CRON_ENABLED") != "false",
		DIGEST_RECIPIENTS: splitList(os.Getenv("DIGEST_RECIPIENTS")),

		SMTP_HOST:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:     smtpPort,
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     getEnvOrDefault("SMTP_FROM", "noreply@partnerships.local"),

		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     getEnvOrDefault("SPACES_REGION", "nyc3"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
	}

	return envVariables, nil
}

// IsProduction reports whether the service runs with GO_ENV=production.
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// SpacesConfigured reports whether report uploads can be enabled.
func (e *EnvironmentVariable) SpacesConfigured() bool {
	return e.SPACES_ACCESS_KEY != "" && e.SPACES_SECRET_KEY != "" && e.SPACES_BUCKET != "" && e.SPACES_ENDPOINT != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
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
