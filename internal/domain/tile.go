package domain

import (
	"github.com/skymaps/tilefinder/internal/geom"
)

// Product identifies the data-product file behind one tile/filter pair,
// as read from the sedm.mosaic_product table.
//
// Immutable once constructed.
type Product struct {
	// Instrument is the instrument_name column (ex: VIS).
	Instrument string `json:"instrument"`

	// FileName is the file_name column.
	FileName string `json:"file_name"`

	// FilePath is the file_path column.
	FilePath string `json:"file_path"`
}

// Tile is one survey tile: a numeric tile_index, the polygon footprint
// bounding it on the sky, and the data products keyed by filter name.
//
// The footprint is fixed at construction. Products accumulates entries
// while a tile index is being built and is read-only afterwards.
type Tile struct {
	// ID is the tile_index value. Unique within a tile index.
	ID int64 `json:"id"`

	// Vertices is the footprint polygon as alternating ra/dec degree
	// values. Never mutated after construction.
	Vertices []float64 `json:"vertices"`

	// Products maps filter_name -> Product. A later row for the same
	// filter overwrites the earlier one.
	Products map[string]Product `json:"products"`
}

// NewTile creates a tile with an empty product map.
func NewTile(id int64, vertices []float64) *Tile {
	return &Tile{
		ID:       id,
		Vertices: vertices,
		Products: make(map[string]Product),
	}
}

// ContainsPosition reports whether the sky position (ra, dec), in degrees,
// falls inside this tile's footprint.
func (t *Tile) ContainsPosition(ra, dec float64) bool {
	return geom.ContainsPoint(ra, dec, t.Vertices)
}

// SetProduct inserts or overwrites the product for a filter. Only called
// while the owning tile index is under construction.
func (t *Tile) SetProduct(filter string, p Product) {
	t.Products[filter] = p
}

// Product returns the product for a filter, if present.
func (t *Tile) Product(filter string) (Product, bool) {
	p, ok := t.Products[filter]
	return p, ok
}

// SameFootprint reports whether two tiles have the same ID and an
// identical vertex sequence. Used only to detect inconsistent duplicate
// rows during index construction, never for lookup correctness.
func (t *Tile) SameFootprint(other *Tile) bool {
	if t.ID != other.ID || len(t.Vertices) != len(other.Vertices) {
		return false
	}
	for i := range t.Vertices {
		if t.Vertices[i] != other.Vertices[i] {
			return false
		}
	}
	return true
}
