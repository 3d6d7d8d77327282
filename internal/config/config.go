package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Forecast ForecastConfig
	Cache    CacheConfig
	Digest   DigestConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

// ForecastConfig — внешние параметры движка прогноза. Горизонт
// ограничен тарифом, политика платежа по картам и поправка на
// «поздних» клиентов — продуктовые настройки, а не константы кода.
type ForecastConfig struct {
	FreeHorizonDays    int
	PremiumHorizonDays int
	MaxOccurrences     int
	DefaultBufferCents int64
	CreditPolicy       forecast.PaymentPolicy
	MinimumRateBps     int
	MinimumFloorCents  int64
	LateOffsetDays     int
	RateLimitPerMinute int
	RateLimitBurst     int
}

// CreditConfig собирает конфигурацию модели кредитных карт для движка.
func (c ForecastConfig) CreditConfig() forecast.CreditConfig {
	return forecast.CreditConfig{
		Policy:            c.CreditPolicy,
		MinimumRateBps:    c.MinimumRateBps,
		MinimumFloorCents: c.MinimumFloorCents,
	}
}

type CacheConfig struct {
	Enabled bool
	Addr    string
	TTL     time.Duration
}

type DigestConfig struct {
	Enabled  bool
	CronSpec string
}

type AdminConfig struct {
	Emails []string
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "forecaster"),
		Password:        getEnv("DB_PASSWORD", "forecaster"),
		Name:            getEnv("DB_NAME", "cashflow_forecaster"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return cfg, err
	}

	authRateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	authRateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "cashflow-forecaster"),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		RateLimitPerMinute: authRateLimitPerMinute,
		RateLimitBurst:     authRateLimitBurst,
	}

	freeHorizon, err := parseIntEnv("FORECAST_FREE_HORIZON_DAYS", 90)
	if err != nil {
		return cfg, err
	}

	premiumHorizon, err := parseIntEnv("FORECAST_PREMIUM_HORIZON_DAYS", 365)
	if err != nil {
		return cfg, err
	}

	maxOccurrences, err := parseIntEnv("FORECAST_MAX_OCCURRENCES", forecast.DefaultMaxOccurrences)
	if err != nil {
		return cfg, err
	}

	defaultBuffer, err := parseIntEnv("FORECAST_DEFAULT_BUFFER_CENTS", 20000)
	if err != nil {
		return cfg, err
	}

	minimumRateBps, err := parseIntEnv("FORECAST_CREDIT_MINIMUM_RATE_BPS", 200)
	if err != nil {
		return cfg, err
	}

	minimumFloor, err := parseIntEnv("FORECAST_CREDIT_MINIMUM_FLOOR_CENTS", 2500)
	if err != nil {
		return cfg, err
	}

	lateOffset, err := parseIntEnv("FORECAST_LATE_CLIENT_OFFSET_DAYS", 3)
	if err != nil {
		return cfg, err
	}

	forecastRateLimitPerMinute, err := parseIntEnv("FORECAST_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	forecastRateLimitBurst, err := parseIntEnv("FORECAST_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Forecast = ForecastConfig{
		FreeHorizonDays:    freeHorizon,
		PremiumHorizonDays: premiumHorizon,
		MaxOccurrences:     maxOccurrences,
		DefaultBufferCents: int64(defaultBuffer),
		CreditPolicy:       forecast.PaymentPolicy(strings.ToLower(getEnv("FORECAST_CREDIT_POLICY", string(forecast.PaymentPolicyFull)))),
		MinimumRateBps:     minimumRateBps,
		MinimumFloorCents:  int64(minimumFloor),
		LateOffsetDays:     lateOffset,
		RateLimitPerMinute: forecastRateLimitPerMinute,
		RateLimitBurst:     forecastRateLimitBurst,
	}

	cacheTTL, err := parseDurationEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Cache = CacheConfig{
		Enabled: parseBoolEnv("CACHE_ENABLED", false),
		Addr:    getEnv("CACHE_REDIS_ADDR", "localhost:6379"),
		TTL:     cacheTTL,
	}

	cfg.Digest = DigestConfig{
		Enabled: parseBoolEnv("DIGEST_ENABLED", true),
		// Понедельник, 07:00 по часам сервера.
		CronSpec: getEnv("DIGEST_CRON", "0 7 * * MON"),
	}

	cfg.Admin = AdminConfig{
		Emails: parseCSVEnv("ADMIN_EMAILS"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("JWT_REFRESH_TTL must be greater than 0")
	}

	if c.Auth.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Auth.RateLimitBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Forecast.FreeHorizonDays <= 0 || c.Forecast.PremiumHorizonDays <= 0 {
		return fmt.Errorf("forecast horizons must be greater than 0")
	}

	if c.Forecast.FreeHorizonDays > c.Forecast.PremiumHorizonDays {
		return fmt.Errorf("FORECAST_FREE_HORIZON_DAYS cannot exceed FORECAST_PREMIUM_HORIZON_DAYS")
	}

	if !c.Forecast.CreditPolicy.Valid() {
		return fmt.Errorf("FORECAST_CREDIT_POLICY must be full or minimum")
	}

	if c.Forecast.RateLimitPerMinute <= 0 {
		return fmt.Errorf("FORECAST_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Forecast.RateLimitBurst <= 0 {
		return fmt.Errorf("FORECAST_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("CACHE_REDIS_ADDR is required when cache is enabled")
	}

	if c.Digest.Enabled && c.Digest.CronSpec == "" {
		return fmt.Errorf("DIGEST_CRON is required when digest is enabled")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return parsed
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
