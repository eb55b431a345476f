package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/vekst-crm/crm-api/internal/secrets"
	"go.uber.org/zap"
)

// ScopeMode controls how workspace scoping is applied to queries
const (
	ScopeModeWorkspace = "workspace"
	ScopeModeGlobal    = "global"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Sms       SmsConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig holds session and API key authentication settings
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 session tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	// SessionCookie is the cookie name the session token may arrive in
	SessionCookie string
	// SessionTTL is the session lifetime in seconds
	SessionTTL int
	// APIKey authenticates service-to-service requests
	APIKey string
	// ScopeMode is "workspace" (default) or "global". In workspace mode
	// every query is scoped to the session's workspace; global mode is
	// for single-tenant deployments.
	ScopeMode string
}

// OAuthConfig holds the endpoints used to verify provider tokens
type OAuthConfig struct {
	GoogleUserInfoURL    string
	MicrosoftGraphMeURL  string
	RequestTimeoutSecond int
}

// SmsConfig holds the outbound SMS gateway settings
type SmsConfig struct {
	Enabled              bool
	BaseURL              string
	APIKey               string
	Sender               string
	RequestTimeoutSecond int
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// JobsConfig holds background job schedules (cron expressions)
type JobsConfig struct {
	Enabled             bool
	OfferExpirySchedule string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// SessionTTLDuration returns the session lifetime as duration
func (a *AuthConfig) SessionTTLDuration() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// RequestTimeoutDuration returns the provider request timeout as duration
func (o *OAuthConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(o.RequestTimeoutSecond) * time.Second
}

// RequestTimeoutDuration returns the gateway request timeout as duration
func (s *SmsConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeoutSecond) * time.Second
}

// Load loads configuration from file and environment variables.
// This is a basic load that doesn't fetch secrets from vault.
// Use LoadWithSecrets for full secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets that commonly arrive as plain environment variables
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("SESSION_JWT_SECRET")
	}
	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Sms.APIKey == "" {
		cfg.Sms.APIKey = v.GetString("SMS_GATEWAY_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if cfg.Auth.ScopeMode != ScopeModeWorkspace && cfg.Auth.ScopeMode != ScopeModeGlobal {
		return nil, fmt.Errorf("invalid auth.scopeMode %q: must be %q or %q",
			cfg.Auth.ScopeMode, ScopeModeWorkspace, ScopeModeGlobal)
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the
// configured source. In development secrets come from env vars; in
// staging/production with USE_AZURE_KEY_VAULT=true they come from
// Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault")

	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	if jwtSecret, err := provider.GetSecretOrEnv(ctx, "session-jwt-secret", "SESSION_JWT_SECRET"); err == nil && jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}
	if apiKey, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "ADMIN_API_KEY"); err == nil && apiKey != "" {
		cfg.Auth.APIKey = apiKey
	}
	if smsKey, err := provider.GetSecretOrEnv(ctx, "sms-gateway-api-key", "SMS_GATEWAY_API_KEY"); err == nil && smsKey != "" {
		cfg.Sms.APIKey = smsKey
	}
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Vekst CRM API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vekst_crm")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 300)

	// Auth defaults
	v.SetDefault("auth.jwtissuer", "vekst-crm")
	v.SetDefault("auth.jwtaudience", "vekst-crm-api")
	v.SetDefault("auth.sessioncookie", "vekst_session")
	v.SetDefault("auth.sessionttl", 86400)
	v.SetDefault("auth.scopemode", ScopeModeWorkspace)

	// OAuth provider defaults
	v.SetDefault("oauth.googleuserinfourl", "https://www.googleapis.com/oauth2/v1/userinfo")
	v.SetDefault("oauth.microsoftgraphmeurl", "https://graph.microsoft.com/v1.0/me")
	v.SetDefault("oauth.requesttimeoutsecond", 10)

	// SMS gateway defaults
	v.SetDefault("sms.enabled", false)
	v.SetDefault("sms.sender", "VekstCRM")
	v.SetDefault("sms.requesttimeoutsecond", 10)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localbasepath", "./uploads")
	v.SetDefault("storage.cloudcontainer", "attachments")
	v.SetDefault("storage.maxuploadsizemb", 25)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheenabled", true)
	v.SetDefault("secrets.cachettl", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Server defaults
	v.SetDefault("server.readtimeout", 15)
	v.SetDefault("server.writetimeout", 15)
	v.SetDefault("server.requesttimeout", 30)
	v.SetDefault("server.enableswagger", true)

	// CORS defaults
	v.SetDefault("cors.allowedorigins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowedmethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedheaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-Id", "x-api-key"})
	v.SetDefault("cors.exposedheaders", []string{"X-Request-Id"})
	v.SetDefault("cors.allowcredentials", true)
	v.SetDefault("cors.maxage", 300)

	// Security defaults
	v.SetDefault("security.enablehsts", false)
	v.SetDefault("security.hstsmaxage", 31536000)
	v.SetDefault("security.hstsincludesubdomains", true)
	v.SetDefault("security.contentsecuritypolicy", "default-src 'none'; frame-ancestors 'none'")

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requestsperminute", 120)
	v.SetDefault("ratelimit.requestsperminuteauth", 600)
	v.SetDefault("ratelimit.whitelistpaths", []string{"/health", "/ready"})

	// Jobs defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.offerexpiryschedule", "0 2 * * *")
}
