package api

import (
	"net/http"
	"regexp"

	"github.com/BerakaStudio/spinbook-two/internal/metrics"
	"github.com/BerakaStudio/spinbook-two/internal/schedule"
)

var queryDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// handleGetEvents returns the busy hours for one date as a bare sorted JSON
// array. The widget consumes the array directly; wrapping it breaks deployed
// clients.
// GET /api/get-events?date=YYYY-MM-DD
func (s *HTTPServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_events")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	date := r.URL.Query().Get("date")
	if !queryDate.MatchString(date) {
		writeError(w, http.StatusBadRequest, "Parámetro date inválido. Formato esperado: YYYY-MM-DD.")
		return
	}

	events, err := s.provider.DayEvents(r.Context(), date)
	if err != nil {
		s.mapProviderError(w, err)
		return
	}

	busy := schedule.BusyHours(events, s.cfg.Studio.Timezone, s.logger)
	if busy == nil {
		busy = []int{}
	}
	writeJSON(w, http.StatusOK, busy)
}
