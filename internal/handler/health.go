package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quiniela/platform/internal/infra"
)

// HealthHandler pings every named dependency and reports 503 if any of them fails.
func HealthHandler(checks map[string]infra.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := make(map[string]string, len(checks))
		healthy := true
		for name, p := range checks {
			if err := infra.HealthCheck(r.Context(), p); err != nil {
				results[name] = err.Error()
				healthy = false
				continue
			}
			results[name] = "ok"
		}

		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": results,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
			"checks": results,
		})
	}
}
