package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skymaps/tilefinder/internal/httpserver/deps"
	"github.com/skymaps/tilefinder/internal/httpserver/handlers"
	"github.com/skymaps/tilefinder/internal/httpserver/mw"
)

func init() { Register(registerTiles) }

func registerTiles(r chi.Router, d deps.Deps) {
	limited := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RatePerMin,
			MaxEntries:        10000,
			SweepInterval:     time.Minute,
			IdleTTL:           15 * time.Minute,
			TrustProxy:        d.TrustProxy,
		}),
	)

	limited.Route("/api", func(api chi.Router) {
		api.Get("/tile", handlers.Tile(d))
		api.Get("/tiles", handlers.Tiles(d))
		api.Get("/tiles/count", handlers.TileCount(d))
		api.Get("/tiles/{tileID}/filters", handlers.TileFilters(d))
		api.Get("/tiles/{tileID}/product", handlers.TileProduct(d))
	})
}
