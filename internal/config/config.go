package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DefaultService string        // service used when a request names none (ex: "otf")
	AliasFile      string        // optional YAML file with extra service aliases
	QueryTimeout   time.Duration // timeout for the one-off catalog query per service

	// Redis (optional warm-start snapshot store; empty addr disables it)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateBurst  int // rate-limit bucket size per client IP
	RatePerMin int // rate-limit refill per client IP per minute
}

func Load() *Config {
	return &Config{
		// Server settings
		ListenPort:      getenv("TILEFINDER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TILEFINDER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("TILEFINDER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TILEFINDER_PRETTY_LOG", false),

		// Catalog access
		DefaultService: getenv("TILEFINDER_DEFAULT_SERVICE", "otf"),
		AliasFile:      getenv("TILEFINDER_ALIAS_FILE", ""),
		QueryTimeout:   mustDuration("TILEFINDER_QUERY_TIMEOUT", 5*time.Minute),

		// Redis settings
		RedisAddr:           getenv("TILEFINDER_REDIS_ADDR", ""),
		RedisUser:           getenv("TILEFINDER_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("TILEFINDER_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("TILEFINDER_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions (all optional, empty = passthrough)
		AllowedHosts: splitAndTrim(getenv("TILEFINDER_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("TILEFINDER_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TILEFINDER_TRUST_PROXY", false),

		// Rate limiting on lookup routes
		RateBurst:  getenvInt("TILEFINDER_RATE_BURST", 20),
		RatePerMin: getenvInt("TILEFINDER_RATE_PER_MIN", 120),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
