// Package resolver exposes the public lookup operations: position to
// tile IDs, tile/filter to product identity, and cutout URL assembly.
//
// All operations are total: a service that failed to load, an unknown
// tile ID or an unknown filter yield absent/empty results, never errors.
package resolver

import (
	"context"
	"sort"

	"github.com/skymaps/tilefinder/internal/domain"
	"github.com/skymaps/tilefinder/internal/registry"
)

// Resolver answers lookups against the catalogs held by a Registry.
type Resolver struct {
	registry *registry.Registry
}

// New creates a resolver backed by reg.
func New(reg *registry.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// TileIDForPosition returns the ID of the tile containing (ra, dec). If
// several tiles contain the position, the numerically lowest ID wins.
// The second result is false when no tile contains the position.
func (r *Resolver) TileIDForPosition(ctx context.Context, service string, ra, dec float64) (int64, bool) {
	ids := r.TileIDsForPosition(ctx, service, ra, dec)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// TileIDsForPosition returns the IDs of all tiles containing (ra, dec),
// sorted ascending. Positions outside the survey footprint return an
// empty slice.
func (r *Resolver) TileIDsForPosition(ctx context.Context, service string, ra, dec float64) []int64 {
	var ids []int64
	for _, tile := range r.registry.Tiles(ctx, service).All() {
		if tile.ContainsPosition(ra, dec) {
			ids = append(ids, tile.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TileIDCount returns how many tiles contain (ra, dec).
func (r *Resolver) TileIDCount(ctx context.Context, service string, ra, dec float64) int {
	return len(r.TileIDsForPosition(ctx, service, ra, dec))
}

// FiltersForTile returns the filter names with a product for the given
// tile, sorted alphabetically. Unknown tile IDs yield an empty slice.
func (r *Resolver) FiltersForTile(ctx context.Context, service string, tileID int64) []string {
	tile, ok := r.registry.Tiles(ctx, service).Get(tileID)
	if !ok {
		return []string{}
	}
	filters := make([]string, 0, len(tile.Products))
	for filter := range tile.Products {
		filters = append(filters, filter)
	}
	sort.Strings(filters)
	return filters
}

// ProductFileName returns the file_name for a tile/filter pair.
func (r *Resolver) ProductFileName(ctx context.Context, service string, tileID int64, filter string) (string, bool) {
	p, ok := r.product(ctx, service, tileID, filter)
	if !ok {
		return "", false
	}
	return p.FileName, true
}

// ProductFilePath returns the file_path for a tile/filter pair.
func (r *Resolver) ProductFilePath(ctx context.Context, service string, tileID int64, filter string) (string, bool) {
	p, ok := r.product(ctx, service, tileID, filter)
	if !ok {
		return "", false
	}
	return p.FilePath, true
}

// CutoutURL assembles the cutout download URL for a tile/filter pair.
// The URL is derived, not validated, and usually requires
// authentication to download.
func (r *Resolver) CutoutURL(ctx context.Context, service string, tileID int64, filter string) (string, bool) {
	p, ok := r.product(ctx, service, tileID, filter)
	if !ok {
		return "", false
	}
	return r.registry.Service(service).CutoutURL(tileID, p), true
}

func (r *Resolver) product(ctx context.Context, service string, tileID int64, filter string) (domain.Product, bool) {
	tile, ok := r.registry.Tiles(ctx, service).Get(tileID)
	if !ok {
		return domain.Product{}, false
	}
	return tile.Product(filter)
}
