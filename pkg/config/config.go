// Package config reads settings from the environment, loading a .env file
// first when one exists.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"saferoute/pkg/geocode"
)

// Config holds all application configuration.
type Config struct {
	APIURL        string
	Offline       bool
	ReadFallback  bool
	NominatimURL  string
	GazetteerPath string

	Port       int
	CORSOrigin string

	DatabaseURL string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string

	KafkaBroker string
	KafkaTopic  string

	HTTPTimeout  time.Duration
	PollInterval time.Duration
}

// LoadDotEnv loads the given files (default ".env") into the environment.
// A missing file is not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		APIURL:        getEnv("SAFEROUTE_API_URL", "http://localhost:8000"),
		Offline:       getBoolEnv("SAFEROUTE_OFFLINE", false),
		ReadFallback:  getBoolEnv("SAFEROUTE_READ_FALLBACK", false),
		NominatimURL:  getEnv("NOMINATIM_URL", geocode.DefaultNominatimURL),
		GazetteerPath: getEnv("GAZETTEER_PATH", ""),

		Port:       getIntEnv("PORT", 8000),
		CORSOrigin: getEnv("CORS_ORIGIN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getBoolEnv("MINIO_USE_SSL", false),
		MinIOBucket:    getEnv("MINIO_BUCKET", "accident-media"),

		KafkaBroker: getEnv("KAFKA_BROKER", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "accident-reports"),

		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT_SECONDS", 10) * time.Second,
		PollInterval: getDurationEnv("POLL_INTERVAL_SECONDS", 30) * time.Second,
	}
}

// UsePostgres reports whether reports should be stored in PostgreSQL.
func (c *Config) UsePostgres() bool { return c.DatabaseURL != "" }

// UseMinIO reports whether report media should be uploaded.
func (c *Config) UseMinIO() bool { return c.MinIOEndpoint != "" }

// UseKafka reports whether report events should be published.
func (c *Config) UseKafka() bool { return c.KafkaBroker != "" }

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds)
		}
		log.Printf("Ignoring invalid %s=%q", key, value)
	}
	return time.Duration(defaultSeconds)
}
