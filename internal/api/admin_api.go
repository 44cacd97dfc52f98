package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/BerakaStudio/spinbook-two/internal/audit"
	"github.com/BerakaStudio/spinbook-two/internal/metrics"
	"github.com/BerakaStudio/spinbook-two/internal/models"
)

// AdminBookingsResponse lists the bookings found in a date range.
type AdminBookingsResponse struct {
	Bookings []*models.Booking `json:"bookings"`
	Total    int               `json:"total"`
	Period   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// adminRange reads the start/end query parameters, defaulting to the
// 30 days around today.
func (s *HTTPServer) adminRange(r *http.Request) (start, end string, err error) {
	start = r.URL.Query().Get("start")
	end = r.URL.Query().Get("end")
	if start == "" && end == "" {
		now := time.Now()
		start = now.AddDate(0, 0, -7).Format("2006-01-02")
		end = now.AddDate(0, 0, 30).Format("2006-01-02")
		return start, end, nil
	}
	if !queryDate.MatchString(start) || !queryDate.MatchString(end) {
		return "", "", fmt.Errorf("invalid range")
	}
	return start, end, nil
}

// handleAdminGetBookings lists bookings in a date range.
// GET /api/admin/get-bookings?start=YYYY-MM-DD&end=YYYY-MM-DD
func (s *HTTPServer) handleAdminGetBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_get_bookings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	start, end, err := s.adminRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Parámetros start/end inválidos. Formato esperado: YYYY-MM-DD.")
		return
	}

	events, err := s.provider.RangeEvents(r.Context(), start, end)
	if err != nil {
		s.mapProviderError(w, err)
		return
	}

	resp := AdminBookingsResponse{Bookings: s.bookingsFromEvents(events)}
	resp.Total = len(resp.Bookings)
	resp.Period.Start = start
	resp.Period.End = end
	writeJSON(w, http.StatusOK, resp)
}

// handleAdminCancelBooking deletes the event behind a booking id.
// DELETE /api/admin/cancel-booking?bookingId=SB-XXXXXXXX
func (s *HTTPServer) handleAdminCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_cancel_booking")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use DELETE")
		return
	}

	bookingID := r.URL.Query().Get("bookingId")
	if bookingID == "" {
		writeError(w, http.StatusBadRequest, "Parámetro bookingId requerido.")
		return
	}

	ev, err := s.provider.FindByBookingID(r.Context(), bookingID)
	if err != nil {
		s.mapProviderError(w, err)
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "Reserva no encontrada.")
		return
	}

	if err := s.provider.Delete(r.Context(), ev.Id); err != nil {
		s.mapProviderError(w, err)
		return
	}

	s.logger.Info().Str("booking_id", bookingID).Str("event_id", ev.Id).Msg("booking cancelled")
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Reserva cancelada con éxito.",
		"bookingId": bookingID,
	})
}

// handleAdminTestTelegram fires the notifier diagnostics message.
// POST /api/admin/test-telegram
func (s *HTTPServer) handleAdminTestTelegram(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_test_telegram")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	if err := s.notifier.SendTest(r.Context()); err != nil {
		s.writeErrorDebug(w, http.StatusBadGateway, "No se pudo enviar el mensaje de prueba a Telegram.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mensaje de prueba enviado con éxito."})
}

// handleAdminExportBookings streams the bookings of a date range as xlsx.
// GET /api/admin/export-bookings?start=YYYY-MM-DD&end=YYYY-MM-DD
func (s *HTTPServer) handleAdminExportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_export_bookings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	start, end, err := s.adminRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Parámetros start/end inválidos. Formato esperado: YYYY-MM-DD.")
		return
	}

	events, err := s.provider.RangeEvents(r.Context(), start, end)
	if err != nil {
		s.mapProviderError(w, err)
		return
	}
	bookings := s.bookingsFromEvents(events)

	filename := fmt.Sprintf("reservas_%s_%s.xlsx", start, end)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := audit.WriteBookingsExcel(w, bookings); err != nil {
		s.logger.Error().Err(err).Msg("excel export failed")
	}
}
