package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/BerakaStudio/spinbook-two/internal/booking"
	"github.com/BerakaStudio/spinbook-two/internal/metrics"
	"github.com/BerakaStudio/spinbook-two/internal/models"
)

// CreatedEvent is the event block of a successful booking response.
type CreatedEvent struct {
	ID                   string `json:"id"`
	HTMLLink             string `json:"htmlLink"`
	Summary              string `json:"summary"`
	BookingID            string `json:"bookingId"`
	Services             string `json:"services"`
	Observations         string `json:"observations,omitempty"`
	StudioAddress        string `json:"studioAddress"`
	Description          string `json:"description"`
	TelegramNotification string `json:"telegramNotification"`
}

// CreateEventResponse is the 201 body of POST /api/create-event.
type CreateEventResponse struct {
	Message string       `json:"message"`
	Event   CreatedEvent `json:"event"`
}

// handleCreateEvent commits a booking.
// POST /api/create-event
func (s *HTTPServer) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_event")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req models.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo JSON inválido.")
		return
	}

	res, err := s.svc.Create(r.Context(), &req)
	if err != nil {
		s.writeCreateError(w, err)
		return
	}

	b := res.Booking
	telegramStatus := "Enviada"
	if !res.NotifierSent {
		telegramStatus = "Falló (reserva confirmada igualmente)"
	}

	writeJSON(w, http.StatusCreated, CreateEventResponse{
		Message: "Reserva confirmada con éxito! Revisa los detalles en tu calendario.",
		Event: CreatedEvent{
			// The id the client sees is the booking id, not the provider's
			// internal event id.
			ID:                   b.ID,
			HTMLLink:             b.HTMLLink,
			Summary:              res.EventSummary,
			BookingID:            b.ID,
			Services:             models.ServiceDisplayNames(b.Services),
			Observations:         b.UserData.Observations,
			StudioAddress:        s.cfg.Studio.Address,
			Description:          "Reserva confirmada en Google Calendar con todos los detalles.",
			TelegramNotification: telegramStatus,
		},
	})
}

func (s *HTTPServer) writeCreateError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	var cerr *booking.ConflictError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Reason)
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, fmt.Sprintf(
			"Los siguientes horarios ya no están disponibles: %s. Por favor, refresca la página y selecciona otros horarios.",
			models.FormatSlotRanges(cerr.Hours)))
	case errors.Is(err, booking.ErrDateLocked):
		writeError(w, http.StatusConflict,
			"Otra reserva para esta fecha se está procesando. Intenta de nuevo en unos segundos.")
	default:
		s.mapProviderError(w, err)
	}
}
