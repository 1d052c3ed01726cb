package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN selects the durable stores; empty means in-memory stores.
	PostgresDSN string
	// RedisURL selects the Redis-backed pending-request and result stores;
	// empty means in-memory.
	RedisURL string

	// KafkaBrokers enables the Kafka notification sink when non-empty.
	KafkaBrokers []string
	EventsTopic  string

	// GatewayURL is the external FHE computation gateway base URL.
	GatewayURL string
	// CallbackBaseURL is this process's externally reachable base URL; the
	// gateway posts computation and decryption results back against it.
	CallbackBaseURL string
	// VerifierPublicKey is the hex-encoded ed25519 key the gateway signs
	// result attestations with.
	VerifierPublicKey string

	// RequireApproval gates computation requests on an executed governance
	// proposal naming the requester.
	RequireApproval bool

	LogLevel string
}

// DecryptedResultTTL bounds how long a delivered cleartext stays retrievable.
var DecryptedResultTTL = 24 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("MEDCOMMONS_ADDR", ":8080"),
		JWTSigningKey:     envOr("MEDCOMMONS_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:       os.Getenv("MEDCOMMONS_POSTGRES_DSN"),
		RedisURL:          os.Getenv("MEDCOMMONS_REDIS_URL"),
		EventsTopic:       envOr("MEDCOMMONS_EVENTS_TOPIC", "medcommons.notifications"),
		GatewayURL:        envOr("MEDCOMMONS_FHE_GATEWAY_URL", "http://localhost:9090"),
		CallbackBaseURL:   envOr("MEDCOMMONS_CALLBACK_BASE_URL", "http://localhost:8080"),
		VerifierPublicKey: os.Getenv("MEDCOMMONS_VERIFIER_PUBLIC_KEY"),
		RequireApproval:   os.Getenv("MEDCOMMONS_REQUIRE_APPROVAL") != "false",
		LogLevel:          envOr("MEDCOMMONS_LOG_LEVEL", "info"),
	}
	if brokers := os.Getenv("MEDCOMMONS_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
