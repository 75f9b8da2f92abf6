package config

import (
	"errors"
	"sort"
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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Leagues      LeaguesConfig
	Reputation   ReputationConfig
	Certificates CertificatesConfig
	Rankings     RankingsConfig
	Notify       NotificationsConfig
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
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LeagueTier is one rung of the organizer progression ladder.
type LeagueTier struct {
	Name  string
	MinXP int
}

// LeaguesConfig holds the XP thresholds for organizer leagues, ordered by MinXP.
type LeaguesConfig struct {
	Tiers []LeagueTier
}

// ReputationConfig defines how reviews translate into organizer XP.
// Award per review = XPAwardBase + XPAwardPerRating * rating.
type ReputationConfig struct {
	XPAwardBase      int
	XPAwardPerRating int
}

// CertificatesConfig controls certificate PDF storage and download links.
type CertificatesConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	ValidationURL   string
}

// RankingsConfig tunes the organizer leaderboard cache.
type RankingsConfig struct {
	CacheTTL time.Duration
	PageSize int
}

// NotificationsConfig tunes the async notification dispatcher.
type NotificationsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	tiers, err := parseLeagueTiers(v.GetString("LEAGUE_TIERS"))
	if err != nil {
		return nil, err
	}
	cfg.Leagues = LeaguesConfig{Tiers: tiers}

	cfg.Reputation = ReputationConfig{
		XPAwardBase:      v.GetInt("XP_AWARD_BASE"),
		XPAwardPerRating: v.GetInt("XP_AWARD_PER_RATING"),
	}

	cfg.Certificates = CertificatesConfig{
		StorageDir:      v.GetString("CERTIFICATES_STORAGE_DIR"),
		SignedURLSecret: v.GetString("CERTIFICATES_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("CERTIFICATES_SIGNED_URL_TTL"), 24*time.Hour),
		ValidationURL:   v.GetString("CERTIFICATES_VALIDATION_URL"),
	}

	cfg.Rankings = RankingsConfig{
		CacheTTL: parseDuration(v.GetString("RANKINGS_CACHE_TTL"), 5*time.Minute),
		PageSize: v.GetInt("RANKINGS_PAGE_SIZE"),
	}

	cfg.Notify = NotificationsConfig{
		Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
		BufferSize: v.GetInt("NOTIFICATIONS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

// DefaultLeagueTiers is the shipped progression ladder. Retunable via LEAGUE_TIERS
// without touching the progression algorithm.
func DefaultLeagueTiers() []LeagueTier {
	return []LeagueTier{
		{Name: "Novato", MinXP: 0},
		{Name: "Bronze", MinXP: 200},
		{Name: "Prata", MinXP: 500},
		{Name: "Ouro", MinXP: 1000},
		{Name: "Platina", MinXP: 2000},
		{Name: "Diamante", MinXP: 3500},
		{Name: "Mestre dos Eventos", MinXP: 6000},
		{Name: "CEO dos Eventos", MinXP: 10000},
	}
}

// parseLeagueTiers reads a "Name:minXp,Name:minXp" list. Empty input yields the
// default ladder. Tiers are sorted ascending by MinXP and the lowest tier must
// start at 0 so every XP value maps to a league.
func parseLeagueTiers(raw string) ([]LeagueTier, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultLeagueTiers(), nil
	}
	var tiers []LeagueTier
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, errors.New("invalid LEAGUE_TIERS entry: " + part)
		}
		minXP, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
		if err != nil || minXP < 0 {
			return nil, errors.New("invalid LEAGUE_TIERS threshold: " + part)
		}
		tiers = append(tiers, LeagueTier{Name: strings.TrimSpace(part[:idx]), MinXP: minXP})
	}
	if len(tiers) == 0 {
		return DefaultLeagueTiers(), nil
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinXP < tiers[j].MinXP })
	if tiers[0].MinXP != 0 {
		return nil, errors.New("LEAGUE_TIERS must start at 0 XP")
	}
	return tiers, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "eventsync")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("XP_AWARD_BASE", 10)
	v.SetDefault("XP_AWARD_PER_RATING", 10)

	v.SetDefault("CERTIFICATES_STORAGE_DIR", "./certificates")
	v.SetDefault("CERTIFICATES_SIGNED_URL_TTL", "24h")
	v.SetDefault("CERTIFICATES_VALIDATION_URL", "http://localhost:5173/validate")

	v.SetDefault("RANKINGS_CACHE_TTL", "5m")
	v.SetDefault("RANKINGS_PAGE_SIZE", 50)

	v.SetDefault("NOTIFICATIONS_WORKERS", 2)
	v.SetDefault("NOTIFICATIONS_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "1s")
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
