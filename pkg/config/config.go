package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistence backend identifiers.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// DefaultDays is the ordered list of weekday labels, Monday first.
var DefaultDays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Board       BoardConfig
	Persistence PersistenceConfig
	Metrics     MetricsConfig
	Exports     ExportsConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BoardConfig holds the calendar constants shared by the booking engine and the drag reducer.
type BoardConfig struct {
	HoursStart          string
	HoursEnd            string
	MaxStudentsPerClass int
	SnapMinutes         int
	Days                []string
	PixelsPerHour       int
	DayColumnWidth      int
	DragThreshold       int
	RequireMonitor      bool
}

// PersistenceConfig selects the primary and fallback stores.
type PersistenceConfig struct {
	Primary    string
	Fallback   string
	Async      bool
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	KeyPrefix  string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// ExportsConfig toggles week exports.
type ExportsConfig struct {
	Enabled bool
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

	cfg := fromViper(v)
	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	days := splitAndTrim(v.GetString("BOARD_DAYS"))
	if len(days) == 0 {
		days = append([]string(nil), DefaultDays...)
	}
	cfg.Board = BoardConfig{
		HoursStart:          v.GetString("BOARD_HOURS_START"),
		HoursEnd:            v.GetString("BOARD_HOURS_END"),
		MaxStudentsPerClass: v.GetInt("BOARD_MAX_STUDENTS"),
		SnapMinutes:         v.GetInt("BOARD_SNAP_MINUTES"),
		Days:                days,
		PixelsPerHour:       v.GetInt("BOARD_PIXELS_PER_HOUR"),
		DayColumnWidth:      v.GetInt("BOARD_DAY_COLUMN_WIDTH"),
		DragThreshold:       v.GetInt("BOARD_DRAG_THRESHOLD"),
		RequireMonitor:      v.GetBool("BOARD_REQUIRE_MONITOR"),
	}

	cfg.Persistence = PersistenceConfig{
		Primary:    strings.ToLower(v.GetString("PERSISTENCE_PRIMARY")),
		Fallback:   strings.ToLower(v.GetString("PERSISTENCE_FALLBACK")),
		Async:      v.GetBool("PERSISTENCE_ASYNC"),
		Retries:    v.GetInt("PERSISTENCE_RETRIES"),
		RetryDelay: parseDuration(v.GetString("PERSISTENCE_RETRY_DELAY"), 2*time.Second),
		Timeout:    parseDuration(v.GetString("PERSISTENCE_TIMEOUT"), 5*time.Second),
		KeyPrefix:  v.GetString("CACHE_KEY_PREFIX"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg
}

// DefaultBoard returns the board constants used when nothing is configured.
func DefaultBoard() BoardConfig {
	return BoardConfig{
		HoursStart:          "08:00",
		HoursEnd:            "23:00",
		MaxStudentsPerClass: 4,
		SnapMinutes:         15,
		Days:                append([]string(nil), DefaultDays...),
		PixelsPerHour:       60,
		DayColumnWidth:      120,
		DragThreshold:       5,
		RequireMonitor:      true,
	}
}

// Validate rejects board settings the engine cannot operate with.
func (b BoardConfig) Validate() error {
	start, err := parseClock(b.HoursStart)
	if err != nil {
		return fmt.Errorf("BOARD_HOURS_START: %w", err)
	}
	end, err := parseClock(b.HoursEnd)
	if err != nil {
		return fmt.Errorf("BOARD_HOURS_END: %w", err)
	}
	if end <= start {
		return fmt.Errorf("board hours end %s must be after start %s", b.HoursEnd, b.HoursStart)
	}
	if b.MaxStudentsPerClass < 1 {
		return fmt.Errorf("BOARD_MAX_STUDENTS must be positive, got %d", b.MaxStudentsPerClass)
	}
	if b.SnapMinutes != 15 && b.SnapMinutes != 30 {
		return fmt.Errorf("BOARD_SNAP_MINUTES must be 15 or 30, got %d", b.SnapMinutes)
	}
	if len(b.Days) != 7 {
		return fmt.Errorf("BOARD_DAYS must list seven labels, got %d", len(b.Days))
	}
	if b.PixelsPerHour <= 0 || b.DayColumnWidth <= 0 {
		return fmt.Errorf("board geometry must be positive")
	}
	if b.DragThreshold < 0 {
		return fmt.Errorf("BOARD_DRAG_THRESHOLD must not be negative")
	}
	return nil
}

// parseClock is a local copy of the HH:MM parser so config stays free of internal imports.
func parseClock(raw string) (int, error) {
	if len(raw) != 5 || raw[2] != ':' {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	h, errH := strconv.Atoi(raw[:2])
	m, errM := strconv.Atoi(raw[3:])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	return h*60 + m, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "padel_board")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	board := DefaultBoard()
	v.SetDefault("BOARD_HOURS_START", board.HoursStart)
	v.SetDefault("BOARD_HOURS_END", board.HoursEnd)
	v.SetDefault("BOARD_MAX_STUDENTS", board.MaxStudentsPerClass)
	v.SetDefault("BOARD_SNAP_MINUTES", board.SnapMinutes)
	v.SetDefault("BOARD_DAYS", strings.Join(board.Days, ","))
	v.SetDefault("BOARD_PIXELS_PER_HOUR", board.PixelsPerHour)
	v.SetDefault("BOARD_DAY_COLUMN_WIDTH", board.DayColumnWidth)
	v.SetDefault("BOARD_DRAG_THRESHOLD", board.DragThreshold)
	v.SetDefault("BOARD_REQUIRE_MONITOR", board.RequireMonitor)

	v.SetDefault("PERSISTENCE_PRIMARY", BackendPostgres)
	v.SetDefault("PERSISTENCE_FALLBACK", BackendRedis)
	v.SetDefault("PERSISTENCE_ASYNC", false)
	v.SetDefault("PERSISTENCE_RETRIES", 3)
	v.SetDefault("PERSISTENCE_RETRY_DELAY", "2s")
	v.SetDefault("PERSISTENCE_TIMEOUT", "5s")
	v.SetDefault("CACHE_KEY_PREFIX", "padelApp_")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_EXPORTS", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
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
