package handlers

import (
	"context"
	"net/http"
	"time"

	"brewlog/internal/httpkit"
)

// Health reports service liveness. With ?deep=true it also probes the
// database, Redis and the media gateway.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": "brewlog-api",
		"version": "0.1.0",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	return map[string]any{
		"postgres": h.checkPostgres(ctx),
		"redis":    h.checkRedis(ctx),
		"gateway":  h.checkGateway(ctx),
	}
}

func (h *Handler) checkPostgres(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{
		"status": "ok",
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	} else {
		// A reachable database without the media table is still broken.
		var n int
		if err := h.pool.QueryRow(checkCtx, `SELECT COUNT(*) FROM media`).Scan(&n); err != nil {
			if httpkit.IsUndefinedTable(err) {
				result["status"] = "error"
				result["error"] = "schema not loaded"
			} else {
				result["status"] = "error"
				result["error"] = err.Error()
			}
		} else {
			stats := h.pool.Stat()
			result["media_records"] = n
			result["total_conns"] = stats.TotalConns()
			result["idle_conns"] = stats.IdleConns()
		}
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkRedis(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{
		"status": "ok",
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.rdb.Ping(checkCtx).Err(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkGateway(_ context.Context) map[string]any {
	// Provider connectivity is only exercised by real uploads; the probe
	// reports which adapter is wired and the source mode feeding it.
	return map[string]any{
		"status":   "ok",
		"provider": h.gw.Provider(),
		"source":   h.src.Mode(),
	}
}
