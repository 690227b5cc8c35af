package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/skymaps/tilefinder/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool     `json:"ok"`
	ServicesKnown []string `json:"services_known,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	Impact        string   `json:"impact,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type infraResponse struct {
	Components map[string]componentStatus `json:"components"`
}

// Infra reports which catalogs have been referenced and whether the
// optional snapshot store is reachable. It never forces a tile build.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		names := d.Registry.ServiceNames()
		sort.Strings(names)

		components := map[string]componentStatus{
			"catalogs": {
				OK:            true,
				ServicesKnown: names,
			},
			"redis": checkRedis(d),
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(infraResponse{Components: components})
	}
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "cold-start-queries-only",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshots-unavailable",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "snapshots-enabled",
	}
}
