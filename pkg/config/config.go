package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Grid         GridConfig
	Exports      ExportsConfig
	ProgramBooks ProgramBooksConfig
	Maintenance  MaintenanceConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GridConfig tunes caching of the public day-schedule views.
type GridConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig governs synchronous day-schedule exports.
type ExportsConfig struct {
	Enabled bool
}

// ProgramBooksConfig controls asynchronous programme book generation.
type ProgramBooksConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// MaintenanceConfig drives the cron maintenance schedule.
type MaintenanceConfig struct {
	Enabled            bool
	TokenPurgeSpec     string
	ArtifactCleanSpec  string
	CacheWarmSpec      string
	ArtifactTTL        time.Duration
	WarmActiveSchedule bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Grid = GridConfig{
		CacheEnabled: v.GetBool("GRID_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("GRID_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.ProgramBooks = ProgramBooksConfig{
		Enabled:           v.GetBool("ENABLE_PROGRAM_BOOKS"),
		StorageDir:        v.GetString("PROGRAM_BOOKS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("PROGRAM_BOOKS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("PROGRAM_BOOKS_SIGNED_URL_TTL"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("PROGRAM_BOOKS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("PROGRAM_BOOKS_WORKER_RETRIES"),
	}

	cfg.Maintenance = MaintenanceConfig{
		Enabled:            v.GetBool("ENABLE_MAINTENANCE"),
		TokenPurgeSpec:     v.GetString("MAINTENANCE_TOKEN_PURGE_SPEC"),
		ArtifactCleanSpec:  v.GetString("MAINTENANCE_ARTIFACT_CLEAN_SPEC"),
		CacheWarmSpec:      v.GetString("MAINTENANCE_CACHE_WARM_SPEC"),
		ArtifactTTL:        parseDuration(v.GetString("MAINTENANCE_ARTIFACT_TTL"), 72*time.Hour),
		WarmActiveSchedule: v.GetBool("MAINTENANCE_WARM_ACTIVE_SCHEDULE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "conference_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "conference-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRID_CACHE_ENABLED", false)
	v.SetDefault("GRID_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("ENABLE_PROGRAM_BOOKS", false)
	v.SetDefault("PROGRAM_BOOKS_STORAGE_DIR", "./program-books")
	v.SetDefault("PROGRAM_BOOKS_SIGNED_URL_SECRET", "dev_program_books_secret")
	v.SetDefault("PROGRAM_BOOKS_SIGNED_URL_TTL", "24h")
	v.SetDefault("PROGRAM_BOOKS_WORKER_CONCURRENCY", 1)
	v.SetDefault("PROGRAM_BOOKS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_MAINTENANCE", false)
	v.SetDefault("MAINTENANCE_TOKEN_PURGE_SPEC", "@every 1h")
	v.SetDefault("MAINTENANCE_ARTIFACT_CLEAN_SPEC", "@every 6h")
	v.SetDefault("MAINTENANCE_CACHE_WARM_SPEC", "@every 10m")
	v.SetDefault("MAINTENANCE_ARTIFACT_TTL", "72h")
	v.SetDefault("MAINTENANCE_WARM_ACTIVE_SCHEDULE", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
