package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("LIBHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("LIBHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "libhub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("LIBHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

// SourceConfig holds the endpoints and credentials for the two external
// library data sources.
type SourceConfig struct {
	NLSSBaseURL     string
	Data4LibBaseURL string
	Data4LibAuthKey string
	PageSize        int
}

func LoadSourceConfig() SourceConfig {
	cfg := SourceConfig{
		NLSSBaseURL:     "https://libsta.go.kr/nlstatapi/api/v1",
		Data4LibBaseURL: "http://data4library.kr/api",
		Data4LibAuthKey: os.Getenv("LIBHUB_DATA4LIB_KEY"),
		PageSize:        100,
	}

	if v := os.Getenv("LIBHUB_NLSS_BASE_URL"); v != "" {
		cfg.NLSSBaseURL = v
	}
	if v := os.Getenv("LIBHUB_DATA4LIB_BASE_URL"); v != "" {
		cfg.Data4LibBaseURL = v
	}
	if v := os.Getenv("LIBHUB_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	return cfg
}
