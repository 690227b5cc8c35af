package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skymaps/tilefinder/internal/httpserver/deps"
	"github.com/skymaps/tilefinder/internal/logger"
)

type tileResponse struct {
	Service string `json:"service"`
	TileID  int64  `json:"tile_id"`
}

type tilesResponse struct {
	Service string  `json:"service"`
	TileIDs []int64 `json:"tile_ids"`
	Count   int     `json:"count"`
}

type countResponse struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

type filtersResponse struct {
	Service string   `json:"service"`
	TileID  int64    `json:"tile_id"`
	Filters []string `json:"filters"`
}

type productResponse struct {
	Service   string `json:"service"`
	TileID    int64  `json:"tile_id"`
	Filter    string `json:"filter"`
	FileName  string `json:"file_name"`
	FilePath  string `json:"file_path"`
	CutoutURL string `json:"cutout_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Tile resolves a single sky position to the lowest-numbered tile
// containing it.
func Tile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := serviceParam(r, d)
		ra, dec, ok := positionParams(w, r)
		if !ok {
			return
		}

		id, found := d.Resolver.TileIDForPosition(r.Context(), service, ra, dec)
		if !found {
			d.Logger.Debug("position not covered",
				logger.String("service", service),
				logger.Float64("ra", ra),
				logger.Float64("dec", dec))
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "position not covered by any tile"})
			return
		}

		writeJSON(w, http.StatusOK, tileResponse{Service: service, TileID: id})
	}
}

// Tiles lists every tile containing a sky position, lowest ID first.
func Tiles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := serviceParam(r, d)
		ra, dec, ok := positionParams(w, r)
		if !ok {
			return
		}

		ids := d.Resolver.TileIDsForPosition(r.Context(), service, ra, dec)
		if ids == nil {
			ids = []int64{}
		}
		writeJSON(w, http.StatusOK, tilesResponse{Service: service, TileIDs: ids, Count: len(ids)})
	}
}

// TileCount reports how many tiles contain a sky position.
func TileCount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := serviceParam(r, d)
		ra, dec, ok := positionParams(w, r)
		if !ok {
			return
		}

		n := d.Resolver.TileIDCount(r.Context(), service, ra, dec)
		writeJSON(w, http.StatusOK, countResponse{Service: service, Count: n})
	}
}

// TileFilters lists the filters with a product for one tile.
func TileFilters(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := serviceParam(r, d)
		tileID, ok := tileIDParam(w, r)
		if !ok {
			return
		}

		filters := d.Resolver.FiltersForTile(r.Context(), service, tileID)
		writeJSON(w, http.StatusOK, filtersResponse{Service: service, TileID: tileID, Filters: filters})
	}
}

// TileProduct returns the product identity and cutout URL for one
// tile/filter pair.
func TileProduct(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := serviceParam(r, d)
		tileID, ok := tileIDParam(w, r)
		if !ok {
			return
		}
		filter := strings.TrimSpace(r.URL.Query().Get("filter"))
		if filter == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing filter parameter"})
			return
		}

		ctx := r.Context()
		fileName, found := d.Resolver.ProductFileName(ctx, service, tileID, filter)
		if !found {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no product for tile/filter"})
			return
		}
		filePath, _ := d.Resolver.ProductFilePath(ctx, service, tileID, filter)
		cutoutURL, _ := d.Resolver.CutoutURL(ctx, service, tileID, filter)

		writeJSON(w, http.StatusOK, productResponse{
			Service:   service,
			TileID:    tileID,
			Filter:    filter,
			FileName:  fileName,
			FilePath:  filePath,
			CutoutURL: cutoutURL,
		})
	}
}

func serviceParam(r *http.Request, d deps.Deps) string {
	if s := strings.TrimSpace(r.URL.Query().Get("service")); s != "" {
		return s
	}
	return d.DefaultService
}

func positionParams(w http.ResponseWriter, r *http.Request) (ra, dec float64, ok bool) {
	var err error
	if ra, err = strconv.ParseFloat(r.URL.Query().Get("ra"), 64); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid or missing ra parameter"})
		return 0, 0, false
	}
	if dec, err = strconv.ParseFloat(r.URL.Query().Get("dec"), 64); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid or missing dec parameter"})
		return 0, 0, false
	}
	return ra, dec, true
}

func tileIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tileID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tile ID"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
