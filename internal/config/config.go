// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable; required ones are enforced by must() so a
// misconfigured deployment fails at startup, not on first request.
type Config struct {
	Env  string // application environment ("dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	JWTSecret      string
	AccessTTLMin   int // access token time-to-live in minutes
	RefreshTTLDays int // refresh token time-to-live in days
	BcryptCost     int

	AMQPURL string // RabbitMQ broker; empty disables event publishing

	BlobDir        string // root directory for uploaded attachments
	MaxUploadBytes int64  // per-file upload cap

	// Admin bootstrap. The two admin accounts are created at startup
	// when they do not exist yet; registration only ever produces the
	// user role.
	Admin1Email    string
	Admin1Password string
	Admin2Email    string
	Admin2Password string
}

// Load reads configuration from the environment. Missing required
// variables are fatal.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AMQPURL:        firstenv("RABBITMQ_URL", "AMQP_URL"),
		BlobDir:        getenv("BLOB_DIR", "data/blobs"),
		MaxUploadBytes: int64(atoi(getenv("MAX_UPLOAD_BYTES", "5242880"))),
		Admin1Email:    must("ADMIN1_EMAIL"),
		Admin1Password: must("ADMIN1_PASSWORD"),
		Admin2Email:    must("ADMIN2_EMAIL"),
		Admin2Password: must("ADMIN2_PASSWORD"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// firstenv returns the first non-empty value among the given variables.
func firstenv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
