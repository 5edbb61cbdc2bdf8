package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// Config holds all configurable parameters for the application.
type Config struct {
	Port      int
	LogLevel  string
	LogFormat string // "text" or "json"

	TokenEnable  bool
	TokenRoute   string
	TokenMethod  string
	TokenField   string
	TokenStatus  int
	JWTSecret    string
	JWTAlgorithm string
	JWTTTL       int // seconds

	TokenType           string
	IncludeTokenType    bool
	IncludeExpiresIn    bool
	IncludeRefreshToken bool

	MocksDir  string
	MocksFile string
	// Mocks are the definitions declared through MOCK_<n>_* keys.
	Mocks []mock.Definition

	LogBodyPreviewMax int
	LogCapacity       int
	FallbackMethods   []string
	CORSOrigins       []string
	WatchMocks        bool

	RateLimiterTTL  time.Duration
	WatcherDebounce time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Port:      3000,
		LogLevel:  "info",
		LogFormat: "text",

		TokenEnable:  true,
		TokenRoute:   "/login",
		TokenMethod:  "POST",
		TokenField:   "access_token",
		TokenStatus:  200,
		JWTSecret:    "dev-secret-change-me",
		JWTAlgorithm: "HS256",
		JWTTTL:       3600,

		TokenType:           "Bearer",
		IncludeTokenType:    true,
		IncludeExpiresIn:    true,
		IncludeRefreshToken: false,

		MocksDir: "./mocks",

		LogBodyPreviewMax: 2048,
		LogCapacity:       1000,
		FallbackMethods:   []string{mock.AnyMethod},
		CORSOrigins:       []string{"*"},
		WatchMocks:        true,

		RateLimiterTTL:  10 * time.Minute,
		WatcherDebounce: 500 * time.Millisecond,

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

var tokenMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true, "OPTIONS": true, "HEAD": true,
}

// Normalize canonicalizes case-insensitive settings the same way for every
// configuration source.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.TokenMethod = strings.ToUpper(strings.TrimSpace(c.TokenMethod))
}

// Validate reports configuration errors that must stop start-up.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.TokenEnable {
		if !tokenMethods[strings.ToUpper(c.TokenMethod)] {
			errs = append(errs, fmt.Errorf("unsupported token method %q", c.TokenMethod))
		}
		if strings.TrimSpace(c.TokenRoute) == "" {
			errs = append(errs, errors.New("token route must not be empty"))
		}
		if strings.TrimSpace(c.TokenField) == "" {
			errs = append(errs, errors.New("token field must not be empty"))
		}
		if !mock.ValidStatus(c.TokenStatus) {
			errs = append(errs, fmt.Errorf("invalid token status %d", c.TokenStatus))
		}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
