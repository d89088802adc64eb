package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"saferoute/pkg/geocode"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"SAFEROUTE_API_URL", "SAFEROUTE_OFFLINE", "SAFEROUTE_READ_FALLBACK", "NOMINATIM_URL",
		"PORT", "DATABASE_URL", "MINIO_ENDPOINT", "MINIO_BUCKET", "KAFKA_BROKER", "KAFKA_TOPIC",
		"HTTP_TIMEOUT_SECONDS", "POLL_INTERVAL_SECONDS",
	} {
		t.Setenv(k, "")
	}

	c := Load()
	if c.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if c.NominatimURL != geocode.DefaultNominatimURL {
		t.Errorf("NominatimURL = %q, want %q", c.NominatimURL, geocode.DefaultNominatimURL)
	}
	if c.Offline || c.ReadFallback {
		t.Errorf("Offline = %v, ReadFallback = %v; want both false", c.Offline, c.ReadFallback)
	}
	if c.Port != 8000 {
		t.Errorf("Port = %d, want 8000", c.Port)
	}
	if c.HTTPTimeout != 10*time.Second || c.PollInterval != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, PollInterval = %v", c.HTTPTimeout, c.PollInterval)
	}
	if c.KafkaTopic != "accident-reports" || c.MinIOBucket != "accident-media" {
		t.Errorf("KafkaTopic = %q, MinIOBucket = %q", c.KafkaTopic, c.MinIOBucket)
	}
	if c.UsePostgres() || c.UseMinIO() || c.UseKafka() {
		t.Error("optional integrations enabled without configuration")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SAFEROUTE_OFFLINE", "true")
	t.Setenv("SAFEROUTE_READ_FALLBACK", "1")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/saferoute")
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("POLL_INTERVAL_SECONDS", "5")

	c := Load()
	if !c.Offline || !c.ReadFallback {
		t.Errorf("Offline = %v, ReadFallback = %v; want both true", c.Offline, c.ReadFallback)
	}
	if c.Port != 9090 {
		t.Errorf("Port = %d, want 9090", c.Port)
	}
	if !c.UsePostgres() || !c.UseKafka() {
		t.Error("configured integrations not enabled")
	}
	if c.HTTPTimeout != 3*time.Second || c.PollInterval != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, PollInterval = %v", c.HTTPTimeout, c.PollInterval)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("SAFEROUTE_OFFLINE", "maybe")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-4")

	c := Load()
	if c.Port != 8000 || c.Offline || c.HTTPTimeout != 10*time.Second {
		t.Errorf("got Port %d, Offline %v, HTTPTimeout %v", c.Port, c.Offline, c.HTTPTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SAFEROUTE_API_URL=http://api.example:8000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SAFEROUTE_API_URL", "")
	os.Unsetenv("SAFEROUTE_API_URL")

	LoadDotEnv(path)
	if got := Load().APIURL; got != "http://api.example:8000" {
		t.Errorf("APIURL = %q after LoadDotEnv", got)
	}

	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
