package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is read when no explicit path is given.
const ConfigPath = "config.yaml"

const (
	defaultPort                = "8080"
	defaultLogLevel            = "info"
	defaultDatabaseDriver      = "postgres"
	defaultTokenTTL            = "168h"
	defaultGenerationModel     = "gpt-4o-mini"
	defaultGenerationMaxTokens = 2000
	defaultRequestTimeout      = "60s"
	writeTimeoutMargin         = 15 * time.Second
	defaultMaxUploadBytes      = 10 << 20
	defaultRegisterPerMinute   = 5
	defaultLoginPerMinute      = 10
	defaultGuidancePerMinute   = 20
	defaultObjectStoreBucket   = "legalgpt-documents"
	minJWTSecretBytes          = 32
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseDriver string `yaml:"databaseDriver"`
	DatabaseURL    string `yaml:"databaseURL"`

	JWTSecret   string `yaml:"jwtSecret"`
	TokenTTL    string `yaml:"tokenTTL"`
	JWTIssuer   string `yaml:"jwtIssuer"`
	JWTAudience string `yaml:"jwtAudience"`
	JWTLeeway   string `yaml:"jwtLeeway"`

	RedisAddr         string   `yaml:"redisAddr"`
	RedisPassword     string   `yaml:"redisPassword"`
	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`
	CORSOrigins       []string `yaml:"corsOrigins"`

	RegisterRateLimitPerMinute int `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute    int `yaml:"loginRateLimitPerMinute"`
	GuidanceRateLimitPerMinute int `yaml:"guidanceRateLimitPerMinute"`

	MaxUploadBytes    int64 `yaml:"maxUploadBytes"`
	QueryHistoryLimit int   `yaml:"queryHistoryLimit"`

	GenerationProvider  string `yaml:"generationProvider"`
	GenerationBaseURL   string `yaml:"generationBaseURL"`
	GenerationAPIKey    string `yaml:"generationApiKey"`
	GenerationModel     string `yaml:"generationModel"`
	GenerationMaxTokens int    `yaml:"generationMaxTokens"`
	RequestTimeout      string `yaml:"requestTimeout"`

	GoogleClientID     string `yaml:"googleClientId"`
	GoogleClientSecret string `yaml:"googleClientSecret"`
	GoogleRedirectURL  string `yaml:"googleRedirectURL"`

	ObjectStoreEndpoint  string `yaml:"objectStoreEndpoint"`
	ObjectStoreAccessKey string `yaml:"objectStoreAccessKey"`
	ObjectStoreSecretKey string `yaml:"objectStoreSecretKey"`
	ObjectStoreBucket    string `yaml:"objectStoreBucket"`
	ObjectStoreUseSSL    bool   `yaml:"objectStoreUseSSL"`

	// DebugRoutes exposes GET /debug/db-status to signed-in users.
	DebugRoutes bool `yaml:"debugRoutes"`
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c FileConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ObjectStoreEnabled reports whether uploaded originals are archived.
func (c FileConfig) ObjectStoreEnabled() bool {
	return c.ObjectStoreEndpoint != ""
}

// Load reads config from path (defaults to config.yaml), applies environment
// overrides and defaults, then validates the result. A missing file is not an
// error; everything can come from the environment.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.TokenTTL, "TOKEN_TTL")
	setString(&cfg.JWTIssuer, "JWT_ISSUER")
	setString(&cfg.JWTAudience, "JWT_AUDIENCE")
	setString(&cfg.JWTLeeway, "JWT_LEEWAY")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	setInt(&cfg.RegisterRateLimitPerMinute, "REGISTER_RATE_LIMIT_PER_MINUTE")
	setInt(&cfg.LoginRateLimitPerMinute, "LOGIN_RATE_LIMIT_PER_MINUTE")
	setInt(&cfg.GuidanceRateLimitPerMinute, "GUIDANCE_RATE_LIMIT_PER_MINUTE")
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	setInt(&cfg.QueryHistoryLimit, "QUERY_HISTORY_LIMIT")
	setString(&cfg.GenerationProvider, "GENERATION_PROVIDER")
	setString(&cfg.GenerationBaseURL, "GENERATION_BASE_URL")
	setString(&cfg.GenerationAPIKey, "OPENAI_API_KEY")
	setString(&cfg.GenerationAPIKey, "GENERATION_API_KEY")
	setString(&cfg.GenerationModel, "GENERATION_MODEL")
	setInt(&cfg.GenerationMaxTokens, "GENERATION_MAX_TOKENS")
	setString(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&cfg.ObjectStoreEndpoint, "OBJECT_STORE_ENDPOINT")
	setString(&cfg.ObjectStoreAccessKey, "OBJECT_STORE_ACCESS_KEY")
	setString(&cfg.ObjectStoreSecretKey, "OBJECT_STORE_SECRET_KEY")
	setString(&cfg.ObjectStoreBucket, "OBJECT_STORE_BUCKET")
	setBool(&cfg.ObjectStoreUseSSL, "OBJECT_STORE_USE_SSL")
	setBool(&cfg.DebugRoutes, "DEBUG_ROUTES")
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = defaultDatabaseDriver
	}
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)
	if cfg.TokenTTL == "" {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = defaultGenerationModel
	}
	if cfg.GenerationMaxTokens == 0 {
		cfg.GenerationMaxTokens = defaultGenerationMaxTokens
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.RegisterRateLimitPerMinute == 0 {
		cfg.RegisterRateLimitPerMinute = defaultRegisterPerMinute
	}
	if cfg.LoginRateLimitPerMinute == 0 {
		cfg.LoginRateLimitPerMinute = defaultLoginPerMinute
	}
	if cfg.GuidanceRateLimitPerMinute == 0 {
		cfg.GuidanceRateLimitPerMinute = defaultGuidancePerMinute
	}
	if cfg.ObjectStoreEndpoint != "" && cfg.ObjectStoreBucket == "" {
		cfg.ObjectStoreBucket = defaultObjectStoreBucket
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return fmt.Errorf("config: databaseDriver must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if len(cfg.JWTSecret) < minJWTSecretBytes {
		return fmt.Errorf("config: jwtSecret must be at least %d bytes (set JWT_SECRET)", minJWTSecretBytes)
	}
	if _, err := ParseTokenTTL(cfg.TokenTTL); err != nil {
		return err
	}
	if _, err := ParseJWTLeeway(cfg.JWTLeeway); err != nil {
		return err
	}
	if _, err := ParseRequestTimeout(cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.RegisterRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 || cfg.GuidanceRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.GenerationMaxTokens < 0 {
		return errors.New("config: generationMaxTokens must be >= 0")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	if (cfg.GoogleClientID == "") != (cfg.GoogleClientSecret == "") {
		return errors.New("config: googleClientId and googleClientSecret must be set together")
	}
	if cfg.GoogleEnabled() && strings.TrimSpace(cfg.GoogleRedirectURL) == "" {
		return errors.New("config: googleRedirectURL is required when Google sign-in is enabled")
	}
	if cfg.ObjectStoreEnabled() && (cfg.ObjectStoreAccessKey == "" || cfg.ObjectStoreSecretKey == "") {
		return errors.New("config: objectStoreAccessKey and objectStoreSecretKey are required with objectStoreEndpoint")
	}
	return nil
}

// ParseTokenTTL parses the bearer token lifetime.
func ParseTokenTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid tokenTTL duration: %w", err)
	}
	if dur <= 0 {
		return 0, errors.New("invalid tokenTTL duration: must be positive")
	}
	return dur, nil
}

// ParseJWTLeeway parses optional JWT leeway duration string.
func ParseJWTLeeway(leewayStr string) (time.Duration, error) {
	if leewayStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(leewayStr)
	if err != nil {
		return 0, fmt.Errorf("invalid jwtLeeway duration: %w", err)
	}
	return dur, nil
}

// ParseRequestTimeout parses the completion provider timeout.
func ParseRequestTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout duration: %w", err)
	}
	return dur, nil
}

// WriteTimeout is the HTTP write deadline for a given completion timeout.
// Handlers persist only after the completion returns, so the deadline leaves
// writeTimeoutMargin for storage and encoding on top of it.
func WriteTimeout(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		requestTimeout, _ = time.ParseDuration(defaultRequestTimeout)
	}
	return requestTimeout + writeTimeoutMargin
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
