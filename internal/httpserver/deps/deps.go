package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/registry"
	"github.com/skymaps/tilefinder/internal/resolver"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Resolver *resolver.Resolver // lookup operations over the tile catalogs
	Registry *registry.Registry // service identities, for diagnostics

	DefaultService string // service used when a request names none

	RedisClient *redis.Client // nil when the snapshot store is disabled

	AllowedHosts []string // Host headers allowed to access the server
	AllowedCIDRS []string // IPs/CIDRs allowed to access the server
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	RateBurst  int // rate-limit bucket size for lookup routes
	RatePerMin int // rate-limit refill per client IP per minute
}
