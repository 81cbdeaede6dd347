// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production
// deployments override via the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strutil "votegate/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// DatabaseURL selects the postgres-backed stores when set; the in-memory
	// stores are used otherwise (tests, local demos).
	DatabaseURL string

	// RedisURL enables the shared duplicate-vote reservation when set.
	RedisURL string

	// KafkaBrokers enables the audit event publisher when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// RegistryPath points at the read-only identity registry snapshot.
	RegistryPath string

	// FaceMatchThreshold is the minimum comparator confidence in [0,1]
	// accepted as a biometric match.
	FaceMatchThreshold float64

	// BallotMasterKey is the escrowed key ballots are sealed under,
	// hex-encoded, 32 bytes once decoded.
	BallotMasterKey string

	Admin AdminConfig
}

// AdminConfig holds administrator authentication settings.
type AdminConfig struct {
	Email         string
	PasswordHash  string // bcrypt hash of the admin password
	JWTSigningKey string
	SessionTTL    time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:               getenv("VOTEGATE_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AuditTopic:         getenv("AUDIT_TOPIC", "votegate.audit"),
		RegistryPath:       getenv("REGISTRY_PATH", "registry.json"),
		FaceMatchThreshold: getfloat("FACE_MATCH_THRESHOLD", 0.80),
		BallotMasterKey:    os.Getenv("BALLOT_MASTER_KEY"),
		Admin: AdminConfig{
			Email:         getenv("ADMIN_EMAIL", "admin@votegate.local"),
			PasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			SessionTTL:    getduration("ADMIN_SESSION_TTL", time.Hour),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strutil.DedupeAndTrim(strings.Split(brokers, ","))
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
