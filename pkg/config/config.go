package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FoundCooldown FoundCooldownConfig
	Uploads       UploadsConfig
	Inference     InferenceConfig
	Matching      MatchingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAWFINDERZ_APP_ENV" required:"true"`
	Port         string `envconfig:"PAWFINDERZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAWFINDERZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAWFINDERZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PAWFINDERZ_DB_DSN"`
	Driver string `envconfig:"PAWFINDERZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAWFINDERZ_DB_HOST"`
	LegacyPort     int    `envconfig:"PAWFINDERZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAWFINDERZ_DB_USER"`
	LegacyPassword string `envconfig:"PAWFINDERZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAWFINDERZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAWFINDERZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAWFINDERZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAWFINDERZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAWFINDERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAWFINDERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAWFINDERZ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAWFINDERZ_REDIS_ADDR"`
	Password     string        `envconfig:"PAWFINDERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAWFINDERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAWFINDERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAWFINDERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAWFINDERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAWFINDERZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAWFINDERZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PAWFINDERZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PAWFINDERZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PAWFINDERZ_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PAWFINDERZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PAWFINDERZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PAWFINDERZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PAWFINDERZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PAWFINDERZ_ARGON_KEY_LEN" default:"32"`
}

// FoundCooldownConfig throttles repeat Found submissions per user.
type FoundCooldownConfig struct {
	Window time.Duration `envconfig:"PAWFINDERZ_FOUND_COOLDOWN_WINDOW" default:"5m"`
	Limit  int           `envconfig:"PAWFINDERZ_FOUND_COOLDOWN_LIMIT" default:"1"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"PAWFINDERZ_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"PAWFINDERZ_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the configured ceiling in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 10 * 1024 * 1024
	}
	return int64(u.MaxUploadMB) * 1024 * 1024
}

type InferenceConfig struct {
	BaseURL   string        `envconfig:"PAWFINDERZ_INFERENCE_URL" required:"true"`
	ModelName string        `envconfig:"PAWFINDERZ_INFERENCE_MODEL" default:"dog-embedder"`
	Timeout   time.Duration `envconfig:"PAWFINDERZ_INFERENCE_TIMEOUT" default:"30s"`
}

type MatchingConfig struct {
	ExtractionWorkers   int     `envconfig:"PAWFINDERZ_MATCHING_EXTRACTION_WORKERS" default:"8"`
	SimilarityThreshold float64 `envconfig:"PAWFINDERZ_MATCHING_SIMILARITY_THRESHOLD" default:"80"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PAWFINDERZ_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DogEventsTopic string `envconfig:"PAWFINDERZ_PUBSUB_DOG_EVENTS_TOPIC" default:"pwf-dog-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PAWFINDERZ_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
