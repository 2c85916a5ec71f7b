package app

import (
	"strings"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/envutil"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	Version     string

	DBDriver   string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	NATSURL           string
	NATSSubjectPrefix string
	NATSQueue         string

	ModelStore       string
	ModelDir         string
	ModelKey         string
	ModelTTL         time.Duration
	ModelNegativeTTL time.Duration

	JWTSecretKey     string
	AllowedOrigins   []string
	EngineConfigPath string
	MetricsEnabled   bool
	ShutdownTimeout  time.Duration
}

func LoadConfig() Config {
	return Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),

		DBDriver:   envutil.String("DB_DRIVER", "postgres"),
		SQLitePath: envutil.String("SQLITE_PATH", "intelligence.db"),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		LockTTL:       envutil.Duration("LOCK_TTL", 10*time.Second),

		NATSURL:           envutil.String("NATS_URL", ""),
		NATSSubjectPrefix: envutil.String("NATS_SUBJECT_PREFIX", "intelligence"),
		NATSQueue:         envutil.String("NATS_QUEUE", "intelligence-engine"),

		ModelStore:       strings.ToLower(envutil.String("MODEL_STORE", "db")),
		ModelDir:         envutil.String("MODEL_DIR", "./models"),
		ModelKey:         envutil.String("READINESS_MODEL_KEY", ""),
		ModelTTL:         envutil.Duration("MODEL_CACHE_TTL", registry.DefaultTTL),
		ModelNegativeTTL: envutil.Duration("MODEL_NEGATIVE_TTL", registry.DefaultNegativeTTL),

		JWTSecretKey:     envutil.String("JWT_SECRET_KEY", ""),
		AllowedOrigins:   splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		EngineConfigPath: envutil.String("ENGINE_CONFIG_PATH", ""),
		MetricsEnabled:   envutil.Bool("METRICS_ENABLED", true),
		ShutdownTimeout:  envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
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
