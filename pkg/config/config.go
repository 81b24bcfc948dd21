package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends understood by the collection store factory.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Lang      string

	Database     DatabaseConfig
	Redis        RedisConfig
	Store        StoreConfig
	Cache        CacheConfig
	JWT          JWTConfig
	Teacher      TeacherConfig
	CORS         CORSConfig
	Log          LogConfig
	Polling      PollingConfig
	Points       PointsConfig
	Mission      MissionConfig
	Confirmation ConfirmationConfig
	Metrics      MetricsConfig
	Seed         SeedConfig
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

// StoreConfig selects where the classroom collections live.
type StoreConfig struct {
	Backend    string
	KeyPrefix  string
	MaxRetries int
	SQLitePath string
}

// CacheConfig toggles the redis-backed read cache.
type CacheConfig struct {
	Enabled      bool
	BoardFeedTTL time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// TeacherConfig describes the single teacher account.
type TeacherConfig struct {
	ID       string
	Name     string
	Passcode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PollingConfig is advertised to clients refreshing session state.
type PollingConfig struct {
	Interval time.Duration
}

// PointsConfig holds the reward for each qualifying event.
type PointsConfig struct {
	QuestionCreate int
	AnswerCreate   int
	BestAnswer     int
	QuizFirstTry   int
	QuizSecondTry  int
}

// MissionConfig governs HOLD to CONFIRMED conversion on mission success.
type MissionConfig struct {
	ConversionMode string
	Workers        int
	Retries        int
	RetryDelay     time.Duration
}

// ConfirmationConfig bounds how long a destructive request waits for confirmation.
type ConfirmationConfig struct {
	TTL time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

type SeedConfig struct {
	DemoData bool
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Lang = v.GetString("DEFAULT_LANG")

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

	cfg.Store = StoreConfig{
		Backend:    strings.ToLower(v.GetString("STORE_BACKEND")),
		KeyPrefix:  v.GetString("STORE_KEY_PREFIX"),
		MaxRetries: v.GetInt("STORE_MAX_RETRIES"),
		SQLitePath: v.GetString("SQLITE_PATH"),
	}

	cfg.Polling = PollingConfig{
		Interval: parseDuration(v.GetString("POLL_INTERVAL"), 5*time.Second),
	}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("CACHE_ENABLED"),
		BoardFeedTTL: parseDuration(v.GetString("BOARD_CACHE_TTL"), cfg.Polling.Interval),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 8*time.Hour),
	}

	cfg.Teacher = TeacherConfig{
		ID:       v.GetString("TEACHER_ID"),
		Name:     v.GetString("TEACHER_NAME"),
		Passcode: v.GetString("TEACHER_PASSCODE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Points = PointsConfig{
		QuestionCreate: v.GetInt("POINTS_QUESTION_CREATE"),
		AnswerCreate:   v.GetInt("POINTS_ANSWER_CREATE"),
		BestAnswer:     v.GetInt("POINTS_BEST_ANSWER"),
		QuizFirstTry:   v.GetInt("POINTS_QUIZ_FIRST_TRY"),
		QuizSecondTry:  v.GetInt("POINTS_QUIZ_SECOND_TRY"),
	}

	cfg.Mission = MissionConfig{
		ConversionMode: strings.ToLower(v.GetString("MISSION_CONVERSION_MODE")),
		Workers:        v.GetInt("MISSION_WORKERS"),
		Retries:        v.GetInt("MISSION_RETRIES"),
		RetryDelay:     parseDuration(v.GetString("MISSION_RETRY_DELAY"), time.Second),
	}

	cfg.Confirmation = ConfirmationConfig{
		TTL: parseDuration(v.GetString("CONFIRMATION_TTL"), 2*time.Minute),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Seed = SeedConfig{DemoData: v.GetBool("SEED_DEMO_DATA")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("DEFAULT_LANG", "ko")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sciclass")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("STORE_KEY_PREFIX", "sciclass")
	v.SetDefault("STORE_MAX_RETRIES", 5)
	v.SetDefault("SQLITE_PATH", "sciclass.db")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("POLL_INTERVAL", "5s")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "8h")

	v.SetDefault("TEACHER_ID", "T1")
	v.SetDefault("TEACHER_NAME", "과학선생님")
	v.SetDefault("TEACHER_PASSCODE", "1234")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("POINTS_QUESTION_CREATE", 1)
	v.SetDefault("POINTS_ANSWER_CREATE", 1)
	v.SetDefault("POINTS_BEST_ANSWER", 3)
	v.SetDefault("POINTS_QUIZ_FIRST_TRY", 2)
	v.SetDefault("POINTS_QUIZ_SECOND_TRY", 1)

	v.SetDefault("MISSION_CONVERSION_MODE", "session")
	v.SetDefault("MISSION_WORKERS", 1)
	v.SetDefault("MISSION_RETRIES", 3)
	v.SetDefault("MISSION_RETRY_DELAY", "1s")

	v.SetDefault("CONFIRMATION_TTL", "2m")
	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("SEED_DEMO_DATA", true)
}

// isMissingFile reports the plain file-system error viper returns when .env is absent.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
