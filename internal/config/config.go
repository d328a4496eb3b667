package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// Values come from the environment (optionally seeded from a .env file by the
// process entrypoint). Business code receives typed sections, never raw env.
type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Vonage      VonageConfig
	Storage     StorageConfig
	Deepgram    DeepgramConfig
	Translation TranslationConfig
	Ingest      IngestConfig
}

type AppConfig struct {
	Env  string
	Port int

	// PublicBaseURL is the externally reachable origin used to build webhook
	// callback URLs. Empty means derive it from the inbound request.
	PublicBaseURL string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional. An empty Host disables the cross-process
// completion claim.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// AdminUsernames get the admin role at signup.
	AdminUsernames []string
}

type VonageConfig struct {
	APIKey    string
	APISecret string
	Number    string

	// SignatureSecret enables signed webhook verification when set.
	SignatureSecret string

	// ApplicationID and PrivateKeyPath enable authenticated recording downloads.
	ApplicationID  string
	PrivateKeyPath string

	DisclosureMessage string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool

	// PublicBaseURL overrides how archived object URLs are rendered.
	PublicBaseURL string
}

type DeepgramConfig struct {
	APIKey     string
	APIBaseURL string
	Model      string
	Language   string
}

type TranslationConfig struct {
	BaseURL    string
	APIKey     string
	TargetLang string
	Timeout    time.Duration
}

type IngestConfig struct {
	TempDir      string
	ClaimTTL     time.Duration
	FetchTimeout time.Duration
	MaxBytes     int64
}

const defaultDisclosure = "This call will be recorded for quality assurance purposes."

func Load() (Config, error) {
	c := Config{}
	p := &envParser{}

	c.App.Env = env("APP_ENV")
	c.App.Port = p.requiredInt("APP_PORT")
	c.App.PublicBaseURL = strings.TrimRight(env("PUBLIC_BASE_URL"), "/")

	c.DB.Host = env("DB_HOST")
	c.DB.Port = p.requiredInt("DB_PORT")
	c.DB.User = env("DB_USER")
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = env("DB_NAME")
	c.DB.SSLMode = env("DB_SSLMODE")

	c.Redis.Host = env("REDIS_HOST")
	c.Redis.Port = p.optionalInt("REDIS_PORT", 6379)
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = env("JWT_ISSUER")
	c.Auth.JWTAudience = env("JWT_AUDIENCE")
	// Durations are optional; Validate applies defaults.
	c.Auth.AccessTokenTTL = p.duration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = p.duration("JWT_REFRESH_TTL")
	c.Auth.AdminUsernames = splitList(env("AUTH_ADMIN_USERNAMES"))

	c.Vonage.APIKey = env("VONAGE_API_KEY")
	c.Vonage.APISecret = os.Getenv("VONAGE_API_SECRET")
	c.Vonage.Number = env("VONAGE_NUMBER")
	c.Vonage.SignatureSecret = os.Getenv("VONAGE_SIGNATURE_SECRET")
	c.Vonage.ApplicationID = env("VONAGE_APPLICATION_ID")
	c.Vonage.PrivateKeyPath = env("VONAGE_PRIVATE_KEY_PATH")
	c.Vonage.DisclosureMessage = env("CALL_DISCLOSURE_MESSAGE")

	c.Storage.Endpoint = env("S3_ENDPOINT")
	c.Storage.AccessKey = env("AWS_ACCESS_KEY_ID")
	c.Storage.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	c.Storage.Bucket = env("S3_BUCKET_NAME")
	c.Storage.Region = env("AWS_REGION")
	c.Storage.UseSSL = p.optionalBool("S3_USE_SSL", true)
	c.Storage.PublicBaseURL = strings.TrimRight(env("S3_PUBLIC_BASE_URL"), "/")

	c.Deepgram.APIKey = os.Getenv("DEEPGRAM_API_KEY")
	c.Deepgram.APIBaseURL = env("DEEPGRAM_API_URL")
	c.Deepgram.Model = env("DEEPGRAM_MODEL")
	c.Deepgram.Language = env("DEEPGRAM_LANGUAGE")

	c.Translation.BaseURL = env("TRANSLATE_API_URL")
	c.Translation.APIKey = os.Getenv("TRANSLATE_API_KEY")
	c.Translation.TargetLang = env("TRANSLATE_TARGET_LANG")
	c.Translation.Timeout = p.duration("TRANSLATE_TIMEOUT")

	c.Ingest.TempDir = env("INGEST_TEMP_DIR")
	c.Ingest.ClaimTTL = p.duration("INGEST_CLAIM_TTL")
	c.Ingest.FetchTimeout = p.duration("INGEST_FETCH_TIMEOUT")
	c.Ingest.MaxBytes = int64(p.optionalInt("INGEST_MAX_BYTES", 0))

	if err := joinErrors(p.errs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required values and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PublicBaseURL != "" && !isAbsoluteURL(c.App.PublicBaseURL) {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", c.App.PublicBaseURL))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Vonage.Number == "" {
		errs = append(errs, errors.New("VONAGE_NUMBER is required"))
	}
	if (c.Vonage.ApplicationID == "") != (c.Vonage.PrivateKeyPath == "") {
		errs = append(errs, errors.New("VONAGE_APPLICATION_ID and VONAGE_PRIVATE_KEY_PATH must be set together"))
	}
	if c.Vonage.DisclosureMessage == "" {
		c.Vonage.DisclosureMessage = defaultDisclosure
	}

	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET_NAME is required"))
	}
	if c.Storage.Endpoint == "" {
		c.Storage.Endpoint = "s3.amazonaws.com"
	}
	if c.Storage.PublicBaseURL != "" && !isAbsoluteURL(c.Storage.PublicBaseURL) {
		errs = append(errs, fmt.Errorf("S3_PUBLIC_BASE_URL must be an absolute URL, got %q", c.Storage.PublicBaseURL))
	}

	if c.Deepgram.APIKey == "" {
		errs = append(errs, errors.New("DEEPGRAM_API_KEY is required"))
	}

	if c.Translation.BaseURL == "" {
		errs = append(errs, errors.New("TRANSLATE_API_URL is required"))
	} else if !isAbsoluteURL(c.Translation.BaseURL) {
		errs = append(errs, fmt.Errorf("TRANSLATE_API_URL must be an absolute URL, got %q", c.Translation.BaseURL))
	}
	if c.Translation.TargetLang == "" {
		c.Translation.TargetLang = "es"
	}
	if c.Translation.Timeout <= 0 {
		c.Translation.Timeout = 30 * time.Second
	}

	if c.Ingest.ClaimTTL <= 0 {
		c.Ingest.ClaimTTL = 10 * time.Minute
	}
	if c.Ingest.FetchTimeout <= 0 {
		c.Ingest.FetchTimeout = 60 * time.Second
	}
	if c.Ingest.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("INGEST_MAX_BYTES must be >= 0, got %d", c.Ingest.MaxBytes))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Contains secrets; never log.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// envParser accumulates parse errors so Load can report all of them at once.
type envParser struct {
	errs []error
}

func (p *envParser) requiredInt(key string) int {
	v := env(key)
	if v == "" {
		p.errs = append(p.errs, fmt.Errorf("%s is required", key))
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s must be an integer, got %q", key, v))
		return 0
	}
	return n
}

func (p *envParser) optionalInt(key string, def int) int {
	if env(key) == "" {
		return def
	}
	return p.requiredInt(key)
}

func (p *envParser) duration(key string) time.Duration {
	v := env(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s must be a duration, got %q", key, v))
		return 0
	}
	return d
}

func (p *envParser) optionalBool(key string, def bool) bool {
	v := env(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s must be a boolean, got %q", key, v))
		return def
	}
	return b
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isAbsoluteURL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
