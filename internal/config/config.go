// Package config loads the aggregator's startup configuration from
// environment variables (optionally via a .env file) and JSON-schema
// validates the assembled result against the embedded config schema.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	cclog "github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// ArchiveConfig configures optional S3 archival of retention-dropped chunks.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled"`
	Bucket  string `json:"bucket"`
	Prefix  string `json:"prefix"`
	Region  string `json:"region"`
}

// ProgramConfig is the resolved, validated configuration for one aggregator
// process.
type ProgramConfig struct {
	DatabaseURL string `json:"database_url"`
	KitsConfig  string `json:"kits_config"`
	HTTPPort    int    `json:"http_port"`

	PollIntervalFast   time.Duration `json:"-"`
	PollIntervalStatus time.Duration `json:"-"`
	RequestTimeout     time.Duration `json:"-"`
	MaxRetries         int           `json:"max_retries"`
	InitialBackoff     time.Duration `json:"-"`
	MaxBackoff         time.Duration `json:"-"`
	StaleThreshold     time.Duration `json:"-"`

	CORSOrigins []string `json:"cors_origins"`

	Archive ArchiveConfig   `json:"archive"`
	NATS    json.RawMessage `json:"nats,omitempty"`
}

// Keys is the process-wide configuration, populated by Init.
var Keys = ProgramConfig{
	KitsConfig:         "/config/kits.yaml",
	HTTPPort:           8090,
	PollIntervalFast:   5 * time.Second,
	PollIntervalStatus: 30 * time.Second,
	RequestTimeout:     10 * time.Second,
	MaxRetries:         3,
	InitialBackoff:     5 * time.Second,
	MaxBackoff:         300 * time.Second,
	StaleThreshold:     60 * time.Second,
	CORSOrigins:        []string{"*"},
}

// Init loads .env (if present, ignored if not) then populates Keys from the
// recognized environment variables, validating the assembled document
// against the embedded config schema. DATABASE_URL is required.
func Init(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			cclog.Warnf("config: failed to load %s: %v", envFile, err)
		}
	}

	Keys.DatabaseURL = os.Getenv("DATABASE_URL")
	if Keys.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}

	if v := os.Getenv("KITS_CONFIG"); v != "" {
		Keys.KitsConfig = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid HTTP_PORT %q: %w", v, err)
		}
		Keys.HTTPPort = port
	}

	if err := durationEnv("POLL_INTERVAL_FAST", &Keys.PollIntervalFast); err != nil {
		return err
	}
	if err := durationEnv("POLL_INTERVAL_STATUS", &Keys.PollIntervalStatus); err != nil {
		return err
	}
	if err := durationEnv("REQUEST_TIMEOUT", &Keys.RequestTimeout); err != nil {
		return err
	}
	if err := durationEnv("INITIAL_BACKOFF", &Keys.InitialBackoff); err != nil {
		return err
	}
	if err := durationEnv("MAX_BACKOFF", &Keys.MaxBackoff); err != nil {
		return err
	}
	if err := durationEnv("STALE_THRESHOLD", &Keys.StaleThreshold); err != nil {
		return err
	}

	if v := os.Getenv("MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid MAX_RETRIES %q: %w", v, err)
		}
		Keys.MaxRetries = n
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		Keys.CORSOrigins = strings.Split(v, ",")
	}

	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		Keys.Archive = ArchiveConfig{
			Enabled: true,
			Bucket:  v,
			Prefix:  os.Getenv("ARCHIVE_S3_PREFIX"),
			Region:  os.Getenv("ARCHIVE_S3_REGION"),
		}
	}

	if v := os.Getenv("NATS_ADDRESS"); v != "" {
		raw, err := json.Marshal(map[string]string{"address": v})
		if err != nil {
			return err
		}
		Keys.NATS = raw
	}

	return validateAssembled()
}

func durationEnv(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

// validateAssembled re-serializes Keys to JSON and schema-validates it, to
// catch shape errors (e.g. a port out of range) in one place.
func validateAssembled() error {
	raw, err := json.Marshal(Keys)
	if err != nil {
		return err
	}
	return Validate(ConfigSchema, bytes.NewReader(raw))
}
