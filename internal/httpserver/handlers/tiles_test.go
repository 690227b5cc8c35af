package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skymaps/tilefinder/internal/httpserver/deps"
	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/registry"
	"github.com/skymaps/tilefinder/internal/resolver"
	"github.com/skymaps/tilefinder/internal/sources/tap"
)

type fixtureQuerier struct{}

func (fixtureQuerier) Query(ctx context.Context, adql string, sink tap.RowSink) error {
	sink.AcceptRow(tap.Row{
		TileID:     102020553,
		FOV:        []float64{74.5, -49.5, 75.5, -49.5, 75.5, -48.5, 74.5, -48.5},
		Filter:     "VIS",
		Instrument: "VIS",
		FileName:   "mosaic_vis.fits",
		FilePath:   "/data/102020553/VIS",
		HasProduct: true,
	})
	sink.EndRows()
	return nil
}

func testDeps() deps.Deps {
	reg := registry.New(registry.Options{
		Logger:         logger.NewNop(),
		QuerierFactory: func(string) registry.Querier { return fixtureQuerier{} },
	})
	return deps.Deps{
		Logger:         logger.NewNop(),
		Resolver:       resolver.New(reg),
		Registry:       reg,
		DefaultService: "otf",
	}
}

func newRouter(d deps.Deps) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/tile", Tile(d))
	r.Get("/api/tiles", Tiles(d))
	r.Get("/api/tiles/count", TileCount(d))
	r.Get("/api/tiles/{tileID}/filters", TileFilters(d))
	r.Get("/api/tiles/{tileID}/product", TileProduct(d))
	return r
}

func doGet(t *testing.T, r chi.Router, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTileHandler(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tile?ra=75&dec=-49")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp tileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TileID != 102020553 {
		t.Errorf("tile_id = %d, want 102020553", resp.TileID)
	}
	if resp.Service != "otf" {
		t.Errorf("service = %q, want default otf", resp.Service)
	}
}

func TestTileHandlerNotCovered(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tile?ra=10&dec=10")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTileHandlerBadParams(t *testing.T) {
	r := newRouter(testDeps())

	tests := []string{
		"/api/tile",
		"/api/tile?ra=abc&dec=-49",
		"/api/tile?ra=75",
	}
	for _, url := range tests {
		if rec := doGet(t, r, url); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", url, rec.Code)
		}
	}
}

func TestTilesHandler(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tiles?service=otf&ra=75&dec=-49")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp tilesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.TileIDs) != 1 {
		t.Errorf("response = %+v, want one tile", resp)
	}

	// uncovered position still returns 200 with an empty list
	rec = doGet(t, r, "/api/tiles?ra=10&dec=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp = tilesResponse{TileIDs: []int64{1}}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 0 || len(resp.TileIDs) != 0 {
		t.Errorf("uncovered position response = %+v, want empty list", resp)
	}
}

func TestTileCountHandler(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tiles/count?ra=75&dec=-49")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp countResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestTileFiltersHandler(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tiles/102020553/filters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp filtersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Filters) != 1 || resp.Filters[0] != "VIS" {
		t.Errorf("filters = %v, want [VIS]", resp.Filters)
	}

	// unknown tile: still 200, empty filter list
	rec = doGet(t, r, "/api/tiles/999/filters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if rec := doGet(t, r, "/api/tiles/notanumber/filters"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad tile ID status = %d, want 400", rec.Code)
	}
}

func TestTileProductHandler(t *testing.T) {
	r := newRouter(testDeps())

	rec := doGet(t, r, "/api/tiles/102020553/product?filter=VIS")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FileName != "mosaic_vis.fits" {
		t.Errorf("file_name = %q", resp.FileName)
	}
	if resp.CutoutURL == "" {
		t.Error("cutout_url should be set")
	}

	if rec := doGet(t, r, "/api/tiles/102020553/product?filter=NIR_H"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown filter status = %d, want 404", rec.Code)
	}
	if rec := doGet(t, r, "/api/tiles/102020553/product"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing filter status = %d, want 400", rec.Code)
	}
}
