// Package index holds the per-service tile index: every tile footprint
// and product record a catalog knows about, loaded once and then
// read-only for the rest of the process.
package index

import (
	"sort"

	"github.com/skymaps/tilefinder/internal/domain"
	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/sources/tap"
)

// TileIndex maps tile_index -> Tile. It is fully populated before it is
// published and never mutated afterwards, so reads need no locking.
type TileIndex struct {
	tiles map[int64]*domain.Tile
}

// Empty returns an index with no tiles. Used when the catalog query
// fails: lookups against it behave as "position not covered".
func Empty() *TileIndex {
	return &TileIndex{tiles: map[int64]*domain.Tile{}}
}

// FromTiles wraps an already-built tile map. The caller must not mutate
// the map after handing it over.
func FromTiles(tiles map[int64]*domain.Tile) *TileIndex {
	if tiles == nil {
		tiles = map[int64]*domain.Tile{}
	}
	return &TileIndex{tiles: tiles}
}

// Get returns the tile with the given ID, if known.
func (x *TileIndex) Get(id int64) (*domain.Tile, bool) {
	t, ok := x.tiles[id]
	return t, ok
}

// All returns the tiles in no particular order.
func (x *TileIndex) All() []*domain.Tile {
	tiles := make([]*domain.Tile, 0, len(x.tiles))
	for _, t := range x.tiles {
		tiles = append(tiles, t)
	}
	return tiles
}

// Count returns the number of distinct tiles.
func (x *TileIndex) Count() int {
	return len(x.tiles)
}

// IDs returns all tile IDs in ascending order.
func (x *TileIndex) IDs() []int64 {
	ids := make([]int64, 0, len(x.tiles))
	for id := range x.tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Builder accumulates query rows into a TileIndex. It implements
// tap.RowSink: one builder consumes exactly one query result.
//
// The first row seen for a tile ID fixes its footprint. A later row for
// the same ID with different geometry is logged and its geometry
// discarded; its product entry still attaches to the tile of record.
type Builder struct {
	tiles map[int64]*domain.Tile
	log   logger.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		tiles: make(map[int64]*domain.Tile),
		log:   log,
	}
}

// AcceptRow folds one query row into the index under construction.
func (b *Builder) AcceptRow(row tap.Row) {
	candidate := domain.NewTile(row.TileID, row.FOV)

	tile, ok := b.tiles[row.TileID]
	if !ok {
		b.tiles[row.TileID] = candidate
		tile = candidate
	} else if !tile.SameFootprint(candidate) {
		b.log.Warnf("tile %d has differing fovs", row.TileID)
	}

	if row.HasProduct {
		tile.SetProduct(row.Filter, domain.Product{
			Instrument: row.Instrument,
			FileName:   row.FileName,
			FilePath:   row.FilePath,
		})
	}
}

// EndRows marks the end of the query result.
func (b *Builder) EndRows() {
	b.log.Infof("distinct tile IDs read: %d", len(b.tiles))
}

// Index publishes the accumulated tiles. The builder must not be used
// afterwards.
func (b *Builder) Index() *TileIndex {
	return &TileIndex{tiles: b.tiles}
}
