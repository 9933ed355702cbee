package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreBackendPostgres  = "postgres"
	StoreBackendFirestore = "firestore"
)

// PIN hash schemes.
const (
	PINHashSHA256 = "sha256"
	PINHashBcrypt = "bcrypt"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Firebase     FirebaseConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and tunes the credential/request store.
type StoreConfig struct {
	Backend            string
	CallTimeoutSeconds int
	UsersCollection    string
	RequestsCollection string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FirebaseConfig points at the service account used for Auth and Firestore.
type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PINHashScheme           string
	BcryptCost              int
	PseudoEmailDomain       string
	PlaceholderSecret       string
	RegistrationLockSeconds int
	SignUpDraftTTLMinutes   int
}

// NotificationConfig holds SMS and event fan-out endpoints.
type NotificationConfig struct {
	SMSWebhookURL     string
	SMSSenderID       string
	NATSURL           string
	NATSSubjectPrefix string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "service-marketplace"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Backend:            getEnv("STORE_BACKEND", StoreBackendPostgres),
			CallTimeoutSeconds: getEnvAsInt("STORE_CALL_TIMEOUT_SECONDS", 10),
			UsersCollection:    getEnv("STORE_USERS_COLLECTION", "users"),
			RequestsCollection: getEnv("STORE_REQUESTS_COLLECTION", "serviceRequests"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Firebase: FirebaseConfig{
			CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PINHashScheme:           getEnv("AUTH_PIN_HASH_SCHEME", PINHashSHA256),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			PseudoEmailDomain:       getEnv("AUTH_PSEUDO_EMAIL_DOMAIN", "example.com"),
			PlaceholderSecret:       getEnv("AUTH_PLACEHOLDER_SECRET", "dummyPassword"),
			RegistrationLockSeconds: getEnvAsInt("AUTH_REGISTRATION_LOCK_SECONDS", 30),
			SignUpDraftTTLMinutes:   getEnvAsInt("AUTH_SIGNUP_DRAFT_TTL_MINUTES", 15),
		},
		Notification: NotificationConfig{
			SMSWebhookURL:     os.Getenv("NOTIFY_SMS_WEBHOOK_URL"),
			SMSSenderID:       getEnv("NOTIFY_SMS_SENDER_ID", "SERVICEAPP"),
			NATSURL:           os.Getenv("NATS_URL"),
			NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "marketplace"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendPostgres, StoreBackendFirestore:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Auth.PINHashScheme {
	case PINHashSHA256, PINHashBcrypt:
	default:
		return fmt.Errorf("invalid AUTH_PIN_HASH_SCHEME %q", c.Auth.PINHashScheme)
	}
	if c.Store.Backend == StoreBackendFirestore && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore backend")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CallTimeout bounds every individual store call.
func (s StoreConfig) CallTimeout() time.Duration {
	if s.CallTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.CallTimeoutSeconds) * time.Second
}

// RegistrationLockTTL is how long a telephone stays reserved during sign-up.
func (a AuthConfig) RegistrationLockTTL() time.Duration {
	return time.Duration(a.RegistrationLockSeconds) * time.Second
}

// SignUpDraftTTL is how long an unfinished sign-up draft is kept.
func (a AuthConfig) SignUpDraftTTL() time.Duration {
	return time.Duration(a.SignUpDraftTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
