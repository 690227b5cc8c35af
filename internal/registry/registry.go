// Package registry resolves service names to TAP catalog endpoints and
// owns one lazily-built tile index per distinct service name.
package registry

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/skymaps/tilefinder/internal/domain"
	"github.com/skymaps/tilefinder/internal/index"
	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/sources/tap"
	redisstore "github.com/skymaps/tilefinder/internal/store/redis"
)

// Well-known service nicknames.
const (
	NicknameOTF = "otf"
	NicknameIDR = "idr"
)

// UnknownNickname marks services addressed by a literal URL rather than
// a nickname. Cutout URLs built for such services are not expected to
// resolve.
const UnknownNickname = "???"

const archiveDomain = "esac.esa.int"

// A name made only of letters, digits, underscore and hyphen is treated
// as a nickname; anything else is taken as a literal endpoint URL.
var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NicknameTapURL expands a service nickname into its conventional TAP
// endpoint URL.
func NicknameTapURL(nickname string) string {
	return "https://eas" + nickname + "." + archiveDomain + "/tap-server/tap"
}

// Querier executes one ADQL query against a fixed TAP endpoint.
type Querier interface {
	Query(ctx context.Context, adql string, sink tap.RowSink) error
}

// QuerierFactory builds a Querier for a TAP endpoint URL.
type QuerierFactory func(tapURL string) Querier

// Service is one catalog instance: its endpoint identity plus the tile
// index built at most once for the life of the process.
type Service struct {
	TapURL   string
	Nickname string

	buildOnce sync.Once
	tiles     *index.TileIndex
}

// Options configures a Registry.
type Options struct {
	Logger       logger.Logger
	QueryTimeout time.Duration

	// Aliases pre-registers service names with explicit endpoints,
	// bypassing the nickname expansion. Optional.
	Aliases map[string]Alias

	// Store warm-starts tile indexes from Redis snapshots and persists
	// fresh builds. Optional; nil disables it.
	Store *redisstore.Store

	// QuerierFactory overrides how TAP clients are built. Tests use
	// this; nil means real HTTP clients with QueryTimeout.
	QuerierFactory QuerierFactory
}

// Registry maps service names to Services. Entries are created on first
// reference and never evicted; a tile index, once built, is never
// refreshed within the process.
type Registry struct {
	mu       sync.Mutex
	services map[string]*Service

	aliases map[string]Alias
	log     logger.Logger
	store   *redisstore.Store
	querier QuerierFactory
}

// New creates a registry.
func New(opts Options) *Registry {
	factory := opts.QuerierFactory
	if factory == nil {
		timeout := opts.QueryTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		factory = func(tapURL string) Querier {
			return tap.NewClient(tapURL, timeout)
		}
	}
	return &Registry{
		services: make(map[string]*Service),
		aliases:  opts.Aliases,
		log:      opts.Logger,
		store:    opts.Store,
		querier:  factory,
	}
}

// Service returns the identity for a service name, creating it on first
// use. The same name always yields the same *Service.
func (r *Registry) Service(name string) *Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[name]; ok {
		return svc
	}
	svc := r.newService(name)
	r.services[name] = svc
	return svc
}

func (r *Registry) newService(name string) *Service {
	if alias, ok := r.aliases[name]; ok {
		return &Service{TapURL: alias.URL, Nickname: alias.Nickname}
	}
	if nicknamePattern.MatchString(name) {
		return &Service{TapURL: NicknameTapURL(name), Nickname: name}
	}
	return &Service{TapURL: name, Nickname: UnknownNickname}
}

// Tiles returns the tile index for a service name, building it on first
// access. Concurrent first callers share a single build; every caller
// observes the fully-populated index. A failed build yields an empty
// index for the rest of the process, never an error.
func (r *Registry) Tiles(ctx context.Context, name string) *index.TileIndex {
	svc := r.Service(name)
	svc.buildOnce.Do(func() {
		// The index outlives the triggering caller; its cancellation
		// must not abort the one-shot build for everyone else.
		svc.tiles = r.buildTiles(context.WithoutCancel(ctx), name, svc)
	})
	return svc.tiles
}

// ServiceNames returns the names referenced so far, for diagnostics.
func (r *Registry) ServiceNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

func (r *Registry) buildTiles(ctx context.Context, name string, svc *Service) *index.TileIndex {
	// A Redis snapshot substitutes for the catalog query on warm starts.
	if r.store != nil {
		if tiles, err := r.store.GetTiles(ctx, name); err != nil {
			r.log.Warn("failed to read tile snapshot from redis",
				logger.String("service", name),
				logger.Error(err))
		} else if tiles != nil {
			r.log.Info("tile index restored from redis snapshot",
				logger.String("service", name),
				logger.Int("tiles", len(tiles)))
			byID := make(map[int64]*domain.Tile, len(tiles))
			for _, t := range tiles {
				byID[t.ID] = t
			}
			return index.FromTiles(byID)
		}
	}

	builder := index.NewBuilder(r.log)
	if err := r.querier(svc.TapURL).Query(ctx, tap.MosaicProductQuery, builder); err != nil {
		r.log.Warn("failed to read tile IDs, treating service as empty",
			logger.String("service", name),
			logger.String("tap_url", svc.TapURL),
			logger.Error(err))
		return index.Empty()
	}

	built := builder.Index()
	r.log.Info("tile index built",
		logger.String("service", name),
		logger.Int("tiles", built.Count()))

	if r.store != nil {
		if err := r.store.SaveTiles(ctx, name, built.All()); err != nil {
			r.log.Warn("failed to save tile snapshot to redis",
				logger.String("service", name),
				logger.Error(err))
		}
	}

	return built
}
