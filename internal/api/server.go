// Package api exposes the booking system over HTTP: the public calendar
// endpoints the widget calls, and the admin endpoints behind them.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"

	"github.com/BerakaStudio/spinbook-two/internal/booking"
	"github.com/BerakaStudio/spinbook-two/internal/config"
	"github.com/BerakaStudio/spinbook-two/internal/google"
	"github.com/BerakaStudio/spinbook-two/internal/models"
)

// CalendarProvider is the calendar access the HTTP layer needs beyond the
// booking committer: reads for availability and the admin surface.
type CalendarProvider interface {
	DayEvents(ctx context.Context, date string) ([]*calendar.Event, error)
	RangeEvents(ctx context.Context, startDate, endDate string) ([]*calendar.Event, error)
	FindByBookingID(ctx context.Context, bookingID string) (*calendar.Event, error)
	Delete(ctx context.Context, eventID string) error
	TestAccess(ctx context.Context) (*calendar.Calendar, error)
}

// Notifier is the admin-facing notifier surface.
type Notifier interface {
	SendTest(ctx context.Context) error
}

// HTTPServer serves the booking API.
type HTTPServer struct {
	cfg      *config.Config
	svc      *booking.Service
	provider CalendarProvider
	notifier Notifier
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg *config.Config, svc *booking.Service, provider CalendarProvider, notifier Notifier, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		cfg:      cfg,
		svc:      svc,
		provider: provider,
		notifier: notifier,
		logger:   logger,
	}
}

// Handler builds the route table with the CORS and request-id middleware
// applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-events", s.handleGetEvents)
	mux.HandleFunc("/api/create-event", s.handleCreateEvent)
	mux.HandleFunc("/api/test-config", s.handleTestConfig)
	mux.HandleFunc("/api/admin/get-bookings", s.handleAdminGetBookings)
	mux.HandleFunc("/api/admin/cancel-booking", s.handleAdminCancelBooking)
	mux.HandleFunc("/api/admin/test-telegram", s.handleAdminTestTelegram)
	mux.HandleFunc("/api/admin/export-bookings", s.handleAdminExportBookings)
	return s.withRequestID(s.withCORS(mux))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Int("port", s.cfg.Server.Port).Msg("api server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// errorBody is the uniform error payload. The debug field carries the
// underlying error text and is omitted in production.
type errorBody struct {
	Message string `json:"message"`
	Debug   string `json:"debug,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeErrorDebug adds the raw error text unless running in production.
func (s *HTTPServer) writeErrorDebug(w http.ResponseWriter, status int, message string, err error) {
	body := errorBody{Message: message}
	if err != nil && !s.cfg.IsProduction() {
		body.Debug = err.Error()
	}
	writeJSON(w, status, body)
}

// mapProviderError translates tagged calendar failures into the statuses and
// Spanish messages the widget shows.
func (s *HTTPServer) mapProviderError(w http.ResponseWriter, err error) {
	var perr *google.ProviderError
	if !errors.As(err, &perr) {
		s.writeErrorDebug(w, http.StatusInternalServerError, "Error interno del servidor.", err)
		return
	}
	switch perr.Kind {
	case google.KindAuthentication:
		s.writeErrorDebug(w, http.StatusInternalServerError, "Error de autenticación. Verifica la configuración.", err)
	case google.KindNotFound:
		s.writeErrorDebug(w, http.StatusInternalServerError, "Calendar no encontrado. Verifica el ID del calendario.", err)
	case google.KindRateLimit:
		s.writeErrorDebug(w, http.StatusTooManyRequests, "Límite de API excedido. Intenta de nuevo en unos minutos.", err)
	case google.KindTimeout:
		s.writeErrorDebug(w, http.StatusRequestTimeout, "Tiempo de espera agotado. Intenta de nuevo.", err)
	default:
		s.writeErrorDebug(w, http.StatusInternalServerError, "Error al procesar la solicitud en el calendario.", err)
	}
}

// bookingsFromEvents decodes the events this system created, skipping foreign
// calendar entries.
func (s *HTTPServer) bookingsFromEvents(events []*calendar.Event) []*models.Booking {
	bookings := make([]*models.Booking, 0, len(events))
	for _, ev := range events {
		b, err := models.BookingFromEvent(ev)
		if err != nil {
			s.logger.Debug().Err(err).Str("event_id", ev.Id).Msg("skipping non-booking event")
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings
}
