package api

import (
	"net/http"
)

// TestConfigResponse reports what the diagnostics endpoint could verify.
type TestConfigResponse struct {
	Status      string         `json:"status"`
	Environment string         `json:"environment"`
	Calendar    map[string]any `json:"calendar"`
	Telegram    map[string]any `json:"telegram"`
}

// handleTestConfig verifies calendar access and the notifier configuration.
// GET /api/test-config
func (s *HTTPServer) handleTestConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	resp := TestConfigResponse{
		Status:      "ok",
		Environment: s.cfg.Environment,
		Calendar:    map[string]any{"ok": false},
		Telegram: map[string]any{
			"enabled":    s.cfg.Telegram.Enabled,
			"configured": s.cfg.Telegram.BotToken != "" && s.cfg.Telegram.ChatID != 0,
		},
	}

	cal, err := s.provider.TestAccess(r.Context())
	if err != nil {
		resp.Status = "error"
		resp.Calendar["error"] = "No se pudo acceder al calendario. Verifica credenciales y ID."
		if !s.cfg.IsProduction() {
			resp.Calendar["debug"] = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Calendar["ok"] = true
	resp.Calendar["summary"] = cal.Summary
	resp.Calendar["timezone"] = cal.TimeZone
	writeJSON(w, http.StatusOK, resp)
}
