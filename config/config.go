package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DBUrl       string
	AutoMigrate bool
	FrontendURL string
	// Extra CORS origins besides FrontendURL
	AllowedOrigins []string
	// Logging
	LogLevel  string
	LogFormat string
	// Auth
	JWTSecret     string
	JWKSURL       string // optional RS256 identity provider
	AdminTokenTTL time.Duration
	CookieSecure  bool
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitPublicThreshold int
	RateLimitGlobalThreshold int
	// Failed-login lockout
	LoginMaxAttempts   int
	LoginBlockDuration time.Duration
	// Object storage (S3-compatible)
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PublicBaseURL   string
	// Geocoding
	GoogleMapsAPIKey string
	GeocodeEndpoint  string
	GeocodeCacheTTL  time.Duration
	// Applicant self-edit window
	EditWindowDays     int
	EditWindowLocation *time.Location
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		DBUrl:          getEnv("DATABASE_URL", ""),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", false),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:4200"), "/"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		// Auth
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWKSURL:       getEnv("JWKS_URL", ""),
		AdminTokenTTL: getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		CookieSecure:  getEnvBool("COOKIE_SECURE", true),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@iisa.org.il"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 5),
		RateLimitPublicThreshold: getEnvInt("RATE_LIMIT_PUBLIC_THRESHOLD", 20),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
		LoginMaxAttempts:         getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginBlockDuration:       getEnvDuration("LOGIN_BLOCK_DURATION", 15*time.Minute),
		// Object storage
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "eu-central-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		// Geocoding
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeEndpoint:  getEnv("GEOCODE_ENDPOINT", ""),
		GeocodeCacheTTL:  getEnvDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		// Edit window
		EditWindowDays:     getEnvInt("EDIT_WINDOW_DAYS", 3),
		EditWindowLocation: getEnvLocation("EDIT_WINDOW_TZ", "Asia/Jerusalem"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Admin login and applicant self-edit will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting and geocode cache will use in-memory fallback.")
	}
	if cfg.S3Bucket == "" {
		log.Println("WARNING: S3_BUCKET not configured. Profile image uploads will fail.")
	}
	if cfg.GoogleMapsAPIKey == "" {
		log.Println("WARNING: GOOGLE_MAPS_API_KEY not configured. Map markers will be empty.")
	}

	return cfg, nil
}

// Origins lists every origin allowed by CORS.
func (c *Config) Origins() []string {
	origins := []string{c.FrontendURL}
	for _, o := range c.AllowedOrigins {
		if o != c.FrontendURL {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration parses Go duration syntax ("90s", "12h")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvLocation loads an IANA zone, falling back to UTC when tzdata is missing
func getEnvLocation(key, fallback string) *time.Location {
	name := getEnv(key, fallback)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a known time zone, using UTC", key, name)
		return time.UTC
	}
	return loc
}
