// Package config loads and validates the trust service configuration from
// a TOML file, with runtime-generated secrets kept in a separate runtime
// config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// VerificationConfig holds signature issuance and verification settings
type VerificationConfig struct {
	DefaultSignatureValidity string `toml:"default_signature_validity"` // Default validity for issued signatures
	MaxSignatureValidity     string `toml:"max_signature_validity"`     // Upper bound on caller-requested validity
	MaxContextBytes          int64  `toml:"max_context_bytes"`          // Maximum size of a context payload
	ReplayScopeStrict        bool   `toml:"replay_scope_strict"`        // Warn when a prior success came from a different client
}

// GetDefaultSignatureValidity returns the default signature validity as time.Duration
func (v *VerificationConfig) GetDefaultSignatureValidity() (time.Duration, error) {
	return ParseDuration(v.DefaultSignatureValidity)
}

// GetDefaultSignatureValidityOrDefault returns the default signature validity
// or panics if the value is invalid
func (v *VerificationConfig) GetDefaultSignatureValidityOrDefault() time.Duration {
	duration, err := v.GetDefaultSignatureValidity()
	if err != nil {
		panic(fmt.Sprintf("invalid default signature validity: %v", err))
	}
	return duration
}

// GetMaxSignatureValidity returns the maximum signature validity as time.Duration
func (v *VerificationConfig) GetMaxSignatureValidity() (time.Duration, error) {
	return ParseDuration(v.MaxSignatureValidity)
}

// GetMaxSignatureValidityOrDefault returns the maximum signature validity
// or panics if the value is invalid
func (v *VerificationConfig) GetMaxSignatureValidityOrDefault() time.Duration {
	duration, err := v.GetMaxSignatureValidity()
	if err != nil {
		panic(fmt.Sprintf("invalid max signature validity: %v", err))
	}
	return duration
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	MaxTokenAge          string `toml:"max_token_age"`          // Maximum age for access tokens
	ClockSkew            string `toml:"clock_skew"`             // Allowed clock skew for time-based claims
	KeyEncryptionPasswd  string `toml:"key_encryption_passwd"`  // Password for signing key encryption
	DefaultTokenValidity string `toml:"default_token_validity"` // Default access token validity
	OperatorName         string `toml:"operator_name"`          // Login name of the single operator
	TestOperatorToken    string `toml:"-"`                      // Token for internal unit test mode
}

// GetMaxTokenAge returns the maximum token age as time.Duration
func (a *AuthConfig) GetMaxTokenAge() (time.Duration, error) {
	return ParseDuration(a.MaxTokenAge)
}

// GetClockSkew returns the allowed clock skew as time.Duration
func (a *AuthConfig) GetClockSkew() (time.Duration, error) {
	return ParseDuration(a.ClockSkew)
}

// GetDefaultTokenValidity returns the default token validity as time.Duration
func (a *AuthConfig) GetDefaultTokenValidity() (time.Duration, error) {
	return ParseDuration(a.DefaultTokenValidity)
}

// GetMaxTokenAgeOrDefault returns the maximum token age as time.Duration
// or panics if the value is invalid
func (a *AuthConfig) GetMaxTokenAgeOrDefault() time.Duration {
	duration, err := a.GetMaxTokenAge()
	if err != nil {
		panic(fmt.Sprintf("invalid max token age: %v", err))
	}
	return duration
}

// GetClockSkewOrDefault returns the allowed clock skew as time.Duration
// or panics if the value is invalid
func (a *AuthConfig) GetClockSkewOrDefault() time.Duration {
	duration, err := a.GetClockSkew()
	if err != nil {
		panic(fmt.Sprintf("invalid clock skew: %v", err))
	}
	return duration
}

// GetDefaultTokenValidityOrDefault returns the default token validity
// or panics if the value is invalid
func (a *AuthConfig) GetDefaultTokenValidityOrDefault() time.Duration {
	duration, err := a.GetDefaultTokenValidity()
	if err != nil {
		panic(fmt.Sprintf("invalid default token validity: %v", err))
	}
	return duration
}

// RateLimitConfig holds verification rate limiter configuration
type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`        // Whether to rate limit public verification
	WindowSeconds int    `toml:"window_seconds"` // Fixed window length in seconds
	MaxRequests   int    `toml:"max_requests"`   // Requests allowed per window per client
	Backend       string `toml:"backend"`        // "memory" or "redis"

	Redis struct {
		Addr     string `toml:"addr"`     // Redis address host:port
		Password string `toml:"password"` // Redis password
		DB       int    `toml:"db"`       // Redis database number
	} `toml:"redis"`
}

// Window returns the fixed window length as time.Duration
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// ConfigParam holds all configuration parameters for the trust service
type ConfigParam struct {
	// Configuration version
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	// Server configuration
	ServerHostName     string `toml:"server_hostname"`       // Hostname for the server
	ServerPort         string `toml:"server_port"`           // Port for the API server
	BaseURL            string `toml:"base_url"`              // Public base URL used in verify links
	HandleCORS         bool   `toml:"handle_cors"`           // Whether to handle CORS
	MaxRequestBodySize int64  `toml:"max_request_body_size"` // Maximum size of request body in bytes
	HandlerTimeoutStr  string `toml:"handler_timeout"`       // Per-request handler timeout
	RuntimeConfigDir   string `toml:"runtime_config_dir"`    // Path for runtime config. This must be a location with access restrictions such as home directory.
	SupportTLS         bool   `toml:"support_tls"`           // Whether to serve TLS
	TLSCertFile        string `toml:"tls_cert_file"`         // Path to TLS certificate file
	TLSKeyFile         string `toml:"tls_key_file"`          // Path to TLS key file

	// Verification configuration
	Verification VerificationConfig `toml:"verification"`

	// Auth configuration
	Auth AuthConfig `toml:"auth"`

	// Rate limit configuration
	RateLimit RateLimitConfig `toml:"rate_limit"`

	// Single operator mode configuration
	SingleOperatorMode   bool   `toml:"single_operator_mode"` // Whether to run with a single operator credential
	OperatorPasswordHash string `toml:"-"`                    // bcrypt hash of the operator password
	DefaultTenantID      string `toml:"default_tenant_id"`    // Default tenant ID for single operator mode
	IPHashSalt           string `toml:"-"`                    // Salt for hashing client IPs in event records

	// Database configuration
	DB struct {
		Host     string `toml:"host"`     // Database host
		Port     int    `toml:"port"`     // Database port
		DBName   string `toml:"dbname"`   // Database name
		User     string `toml:"user"`     // Database user
		Password string `toml:"password"` // Database password
		SSLMode  string `toml:"sslmode"`  // SSL mode for database connection
	} `toml:"db"`
}

var cfg *ConfigParam

// Config returns the current configuration
func Config() *ConfigParam {
	return cfg
}

// DSN returns the database connection string
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// TrustStoreDSN returns the DSN for the trust store database
func TrustStoreDSN() string {
	return cfg.DSN()
}

// HandlerTimeout returns the per-request handler timeout.
func (c *ConfigParam) HandlerTimeout() time.Duration {
	d, err := time.ParseDuration(c.HandlerTimeoutStr)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ParseDuration parses a duration string in the format "<number><unit>" where unit can be:
// - y: years
// - d: days
// - h: hours
// - m: minutes
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "h":
		duration = time.Duration(value) * time.Hour
	case "m":
		duration = time.Duration(value) * time.Minute
	case "y":
		// Assuming 1 year = 365 days for simplicity
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// ValidateConfig checks if all required configuration values are present and valid
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateVerificationConfig(cfg); err != nil {
		return err
	}
	if err := validateAuthConfig(cfg); err != nil {
		return err
	}
	if err := validateRateLimitConfig(cfg); err != nil {
		return err
	}
	if err := validateSingleOperatorConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	if err := validateTLSConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	fileVersion, err := semver.NewVersion(cfg.FormatVersion)
	if err != nil {
		return fmt.Errorf("invalid config file format version %q: %v", cfg.FormatVersion, err)
	}
	supported, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid supported format version %q: %v", Version, err)
	}
	if fileVersion.Major() != supported.Major() || fileVersion.GreaterThan(supported) {
		return fmt.Errorf("unsupported config file format version: %s (supported: %s)", cfg.FormatVersion, Version)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	return nil
}

func validateVerificationConfig(cfg *ConfigParam) error {
	if cfg.Verification.DefaultSignatureValidity == "" {
		return fmt.Errorf("verification.default_signature_validity is required")
	}
	if _, err := ParseDuration(cfg.Verification.DefaultSignatureValidity); err != nil {
		return fmt.Errorf("invalid verification.default_signature_validity: %v", err)
	}
	if cfg.Verification.MaxSignatureValidity == "" {
		return fmt.Errorf("verification.max_signature_validity is required")
	}
	if _, err := ParseDuration(cfg.Verification.MaxSignatureValidity); err != nil {
		return fmt.Errorf("invalid verification.max_signature_validity: %v", err)
	}
	if cfg.Verification.MaxContextBytes <= 0 {
		cfg.Verification.MaxContextBytes = 256 * 1024
	}
	return nil
}

func validateAuthConfig(cfg *ConfigParam) error {
	if cfg.Auth.MaxTokenAge == "" {
		return fmt.Errorf("auth.max_token_age is required")
	}
	if _, err := ParseDuration(cfg.Auth.MaxTokenAge); err != nil {
		return fmt.Errorf("invalid auth.max_token_age: %v", err)
	}
	if cfg.Auth.ClockSkew == "" {
		return fmt.Errorf("auth.clock_skew is required")
	}
	if _, err := ParseDuration(cfg.Auth.ClockSkew); err != nil {
		return fmt.Errorf("invalid auth.clock_skew: %v", err)
	}
	if cfg.Auth.DefaultTokenValidity == "" {
		return fmt.Errorf("auth.default_token_validity is required")
	}
	if _, err := ParseDuration(cfg.Auth.DefaultTokenValidity); err != nil {
		return fmt.Errorf("invalid auth.default_token_validity: %v", err)
	}
	if cfg.Auth.OperatorName == "" {
		cfg.Auth.OperatorName = "operator"
	}
	cfg.Auth.TestOperatorToken = "test-operator-token"
	return nil
}

func validateRateLimitConfig(cfg *ConfigParam) error {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive")
	}
	switch cfg.RateLimit.Backend {
	case "", "memory":
		cfg.RateLimit.Backend = "memory"
	case "redis":
		if cfg.RateLimit.Redis.Addr == "" {
			return fmt.Errorf("rate_limit.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown rate_limit.backend: %s", cfg.RateLimit.Backend)
	}
	return nil
}

func validateSingleOperatorConfig(cfg *ConfigParam) error {
	if cfg.SingleOperatorMode {
		if cfg.DefaultTenantID == "" {
			return fmt.Errorf("default_tenant_id is required in single operator mode")
		}
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	if cfg.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.Password == "" {
		return fmt.Errorf("db.password is required")
	}
	if cfg.DB.SSLMode == "" {
		return fmt.Errorf("db.sslmode is required")
	}
	return nil
}

func validateTLSConfig(cfg *ConfigParam) error {
	if cfg.SupportTLS {
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			return fmt.Errorf("tls_cert_file and tls_key_file are required when support_tls is set")
		}
		if _, err := os.Stat(cfg.TLSCertFile); err != nil {
			return fmt.Errorf("error reading tls cert file: %v", err)
		}
		if _, err := os.Stat(cfg.TLSKeyFile); err != nil {
			return fmt.Errorf("error reading tls key file: %v", err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	cfg = &ConfigParam{}
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	// Generate key encryption password if not set. This is intended for preview
	// Any non-eval use should use a secure key store, or at least set a password in the
	// config file.
	if cfg.Auth.KeyEncryptionPasswd == "" {
		id := "trustsrv.blocktrust.io"
		cfg.Auth.KeyEncryptionPasswd = id
	}

	return nil
}

var isTest = false

func IsTest() bool {
	return isTest
}

func SetTestMode(test bool) {
	isTest = test
}

func TestInit() {
	isTest = true
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	// Walk up to the project root by looking for go.mod
	projectRoot := wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}
	if err := LoadConfig(filepath.Join(projectRoot, "trustsrv.conf")); err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}
	Init()
}
