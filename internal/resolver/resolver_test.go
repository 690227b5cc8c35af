package resolver

import (
	"context"
	"sort"
	"testing"

	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/registry"
	"github.com/skymaps/tilefinder/internal/sources/tap"
)

const (
	visFileName = "EUC_MER_BGSUB-MOSAIC-VIS_TILE102020553-1969C4_20240301T185204.814169Z_00.00.fits"
	visFilePath = "/data_staging_otf/repository_otf/F-006/MER/102020553/VIS"
)

// fixtureQuerier serves a small synthetic catalog:
//   - tile 102020553 covers (75, -49) and has a VIS product
//   - tiles 102024002 and 102024003 overlap at (76, -45.4)
type fixtureQuerier struct{}

func (fixtureQuerier) Query(ctx context.Context, adql string, sink tap.RowSink) error {
	rows := []tap.Row{
		{
			TileID:     102020553,
			FOV:        []float64{74.5, -49.5, 75.5, -49.5, 75.5, -48.5, 74.5, -48.5},
			Filter:     "VIS",
			Instrument: "VIS",
			FileName:   visFileName,
			FilePath:   visFilePath,
			HasProduct: true,
		},
		{
			TileID:     102020553,
			FOV:        []float64{74.5, -49.5, 75.5, -49.5, 75.5, -48.5, 74.5, -48.5},
			Filter:     "NIR_J",
			Instrument: "NISP",
			FileName:   "nir_j.fits",
			FilePath:   "/data/102020553/NIR",
			HasProduct: true,
		},
		// deliberately out of ID order so ascending output is the
		// resolver's doing, not the fixture's
		{TileID: 102024003, FOV: []float64{75.8, -45.6, 76.8, -45.6, 76.8, -44.6, 75.8, -44.6}},
		{TileID: 102024002, FOV: []float64{75.2, -46.2, 76.2, -46.2, 76.2, -45.2, 75.2, -45.2}},
	}
	for _, row := range rows {
		sink.AcceptRow(row)
	}
	sink.EndRows()
	return nil
}

func newFixtureResolver() *Resolver {
	reg := registry.New(registry.Options{
		Logger:         logger.NewNop(),
		QuerierFactory: func(string) registry.Querier { return fixtureQuerier{} },
	})
	return New(reg)
}

func TestTileIDForPosition(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	id, ok := r.TileIDForPosition(ctx, "otf", 75, -49)
	if !ok || id != 102020553 {
		t.Errorf("TileIDForPosition(75, -49) = (%d, %v), want (102020553, true)", id, ok)
	}
}

func TestTileIDForPositionLowestIDWins(t *testing.T) {
	r := newFixtureResolver()

	id, ok := r.TileIDForPosition(context.Background(), "otf", 76, -45.4)
	if !ok || id != 102024002 {
		t.Errorf("overlap should resolve to lowest ID, got (%d, %v)", id, ok)
	}
}

func TestTileIDsForPosition(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	ids := r.TileIDsForPosition(ctx, "otf", 76, -45.4)
	if len(ids) != 2 || ids[0] != 102024002 || ids[1] != 102024003 {
		t.Errorf("TileIDsForPosition(76, -45.4) = %v, want [102024002 102024003]", ids)
	}
	if !sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }) {
		t.Error("IDs should be sorted ascending")
	}

	if n := r.TileIDCount(ctx, "otf", 76, -45.4); n != len(ids) {
		t.Errorf("TileIDCount = %d, want %d", n, len(ids))
	}
}

func TestPositionOutsideFootprint(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	if _, ok := r.TileIDForPosition(ctx, "otf", 180, 45); ok {
		t.Error("TileIDForPosition outside footprint should report absent")
	}
	if ids := r.TileIDsForPosition(ctx, "otf", 180, 45); len(ids) != 0 {
		t.Errorf("TileIDsForPosition outside footprint = %v, want empty", ids)
	}
	if n := r.TileIDCount(ctx, "otf", 180, 45); n != 0 {
		t.Errorf("TileIDCount outside footprint = %d, want 0", n)
	}
}

func TestFiltersForTile(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	filters := r.FiltersForTile(ctx, "otf", 102020553)
	if len(filters) != 2 || filters[0] != "NIR_J" || filters[1] != "VIS" {
		t.Errorf("FiltersForTile = %v, want [NIR_J VIS] (alphabetical)", filters)
	}

	if filters := r.FiltersForTile(ctx, "otf", 999); len(filters) != 0 {
		t.Errorf("FiltersForTile on unknown tile = %v, want empty", filters)
	}
}

func TestProductLookups(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	name, ok := r.ProductFileName(ctx, "otf", 102020553, "VIS")
	if !ok || name != visFileName {
		t.Errorf("ProductFileName = (%q, %v)", name, ok)
	}

	path, ok := r.ProductFilePath(ctx, "otf", 102020553, "VIS")
	if !ok || path != visFilePath {
		t.Errorf("ProductFilePath = (%q, %v)", path, ok)
	}

	if _, ok := r.ProductFileName(ctx, "otf", 102020553, "HSC_g"); ok {
		t.Error("unknown filter should report absent")
	}
	if _, ok := r.ProductFilePath(ctx, "otf", 12345, "VIS"); ok {
		t.Error("unknown tile should report absent")
	}
}

func TestCutoutURL(t *testing.T) {
	r := newFixtureResolver()

	got, ok := r.CutoutURL(context.Background(), "otf", 102020553, "VIS")
	if !ok {
		t.Fatal("CutoutURL should be present for the VIS product")
	}
	want := "https://easotf.esac.esa.int/sas-cutout/cutout?filepath=" +
		visFilePath + "/" + visFileName +
		"&collection=VIS&tileindex=102020553"
	if got != want {
		t.Errorf("CutoutURL =\n  %s\nwant\n  %s", got, want)
	}

	if _, ok := r.CutoutURL(context.Background(), "otf", 102020553, "DECAM_g"); ok {
		t.Error("CutoutURL for missing product should report absent")
	}
}

func TestLookupsIdempotent(t *testing.T) {
	r := newFixtureResolver()
	ctx := context.Background()

	first := r.TileIDsForPosition(ctx, "otf", 76, -45.4)
	for i := 0; i < 5; i++ {
		again := r.TileIDsForPosition(ctx, "otf", 76, -45.4)
		if len(again) != len(first) {
			t.Fatalf("lookup %d returned %v, first returned %v", i, again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("lookup %d returned %v, first returned %v", i, again, first)
			}
		}
	}
}
