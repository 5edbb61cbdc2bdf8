package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// Environment variable names.
const (
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvTokenEnable  = "TOKEN_ENABLE"
	EnvTokenRoute   = "TOKEN_ROUTE"
	EnvTokenMethod  = "TOKEN_METHOD"
	EnvTokenField   = "TOKEN_FIELD"
	EnvTokenStatus  = "TOKEN_STATUS"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTAlgorithm = "JWT_ALG"
	EnvJWTTTL       = "JWT_TTL"

	EnvTokenType           = "TOKEN_TYPE"
	EnvIncludeTokenType    = "INCLUDE_TOKEN_TYPE"
	EnvIncludeExpiresIn    = "INCLUDE_EXPIRES_IN"
	EnvIncludeRefreshToken = "INCLUDE_REFRESH_TOKEN"

	EnvMocksDir  = "MOCKS_DIR"
	EnvMocksFile = "MOCKS_FILE"
	EnvMockCount = "MOCK_COUNT"

	EnvLogBodyPreviewMax = "LOG_BODY_PREVIEW_MAX"
	EnvLogCapacity       = "LOG_CAPACITY"
	EnvFallbackMethods   = "FALLBACK_METHODS"
	EnvCORSOrigins       = "CORS_ORIGINS"
	EnvWatchMocks        = "WATCH_MOCKS"
)

// LoadEnv builds a Config from DefaultConfig overridden by the variables getenv
// returns. Unset or unparsable values keep their defaults.
func LoadEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()

	setInt(getenv, EnvPort, &cfg.Port)
	setString(getenv, EnvLogLevel, &cfg.LogLevel)
	setString(getenv, EnvLogFormat, &cfg.LogFormat)

	setBool(getenv, EnvTokenEnable, &cfg.TokenEnable)
	setString(getenv, EnvTokenRoute, &cfg.TokenRoute)
	setString(getenv, EnvTokenMethod, &cfg.TokenMethod)
	setString(getenv, EnvTokenField, &cfg.TokenField)
	setPositiveInt(getenv, EnvTokenStatus, &cfg.TokenStatus)
	setString(getenv, EnvJWTSecret, &cfg.JWTSecret)
	setString(getenv, EnvJWTAlgorithm, &cfg.JWTAlgorithm)
	setPositiveInt(getenv, EnvJWTTTL, &cfg.JWTTTL)

	setString(getenv, EnvTokenType, &cfg.TokenType)
	setBool(getenv, EnvIncludeTokenType, &cfg.IncludeTokenType)
	setBool(getenv, EnvIncludeExpiresIn, &cfg.IncludeExpiresIn)
	setBool(getenv, EnvIncludeRefreshToken, &cfg.IncludeRefreshToken)

	setString(getenv, EnvMocksDir, &cfg.MocksDir)
	setString(getenv, EnvMocksFile, &cfg.MocksFile)
	cfg.Mocks = LoadEnvMocks(getenv)

	setPositiveInt(getenv, EnvLogBodyPreviewMax, &cfg.LogBodyPreviewMax)
	setPositiveInt(getenv, EnvLogCapacity, &cfg.LogCapacity)
	if v := getenv(EnvFallbackMethods); v != "" {
		cfg.FallbackMethods = splitList(v)
	}
	if v := getenv(EnvCORSOrigins); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	setBool(getenv, EnvWatchMocks, &cfg.WatchMocks)

	cfg.Normalize()
	return cfg
}

// LoadEnvMocks reads MOCK_COUNT definitions from MOCK_<n>_* keys. Ordinals
// match n. Incomplete definitions are returned as-is and rejected at registration.
func LoadEnvMocks(getenv func(string) string) []mock.Definition {
	count, err := strconv.Atoi(strings.TrimSpace(getenv(EnvMockCount)))
	if err != nil || count <= 0 {
		return nil
	}

	defs := make([]mock.Definition, 0, count)
	for n := 1; n <= count; n++ {
		key := func(field string) string { return fmt.Sprintf("MOCK_%d_%s", n, field) }

		def := mock.Definition{
			Ordinal:      n,
			Route:        strings.TrimSpace(getenv(key("ROUTE"))),
			Method:       getenv(key("METHOD")),
			ResponseFile: strings.TrimSpace(getenv(key("FILE"))),
			RawHeaders:   getenv(key("HEADERS")),
			ContentType:  getenv(key("CONTENT_TYPE")),
			Engine:       getenv(key("ENGINE")),
		}
		setPositiveInt(getenv, key("STATUS"), &def.Status)
		setPositiveInt(getenv, key("DELAY_MS"), &def.DelayMs)

		if v := getenv(key("RATE_LIMIT")); v != "" {
			if rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && rate > 0 {
				burst := 1
				setPositiveInt(getenv, key("BURST"), &burst)
				def.RateLimit = &mock.RateLimit{Rate: rate, Burst: burst}
			}
		}

		defs = append(defs, def.WithDefaults())
	}
	return defs
}

func setString(getenv func(string) string, name string, dst *string) {
	if v := strings.TrimSpace(getenv(name)); v != "" {
		*dst = v
	}
}

func setInt(getenv func(string) string, name string, dst *int) {
	if v := strings.TrimSpace(getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setPositiveInt(getenv func(string) string, name string, dst *int) {
	if v := strings.TrimSpace(getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// setBool treats "true", "1" and "yes" as true and any other non-empty value as false.
func setBool(getenv func(string) string, name string, dst *bool) {
	v := strings.ToLower(strings.TrimSpace(getenv(name)))
	if v == "" {
		return
	}
	*dst = v == "true" || v == "1" || v == "yes"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
