package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"

	"github.com/BerakaStudio/spinbook-two/internal/config"
	"github.com/BerakaStudio/spinbook-two/internal/metrics"
	"github.com/BerakaStudio/spinbook-two/internal/models"
	"github.com/BerakaStudio/spinbook-two/internal/schedule"
)

// Provider is the calendar access the committer needs.
type Provider interface {
	DayEvents(ctx context.Context, date string) ([]*calendar.Event, error)
	Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error)
}

// Notifier posts a best-effort booking notification. A non-nil error is
// recorded as a flag on the result, never as a booking failure.
type Notifier interface {
	NotifyBooking(ctx context.Context, b *models.Booking) error
}

// Locker optionally narrows the check-then-act window with a short-lived
// per-date lock. Acquire returns a release func; ok=false means the date is
// locked by a concurrent commit.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

// ConflictError carries exactly the requested hours that are already busy.
type ConflictError struct {
	Hours []int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slots no longer available: %v", e.Hours)
}

// ErrDateLocked means a concurrent booking for the same date holds the
// optional commit lock; the client should retry after refreshing.
var ErrDateLocked = errors.New("a booking for this date is being processed")

// Result is a successful commit plus the notifier outcome.
type Result struct {
	Booking        *models.Booking
	EventSummary   string
	NotifierSent   bool
	NotifierReason string
}

// Service is the booking committer: it re-checks availability against a
// fresh provider read, writes the event, then fires the notifier.
type Service struct {
	provider Provider
	notifier Notifier
	locker   Locker
	studio   config.StudioConfig
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(provider Provider, notifier Notifier, locker Locker, studio config.StudioConfig, logger *zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		notifier: notifier,
		locker:   locker,
		studio:   studio,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates the request, re-resolves availability, and commits the
// booking to the calendar.
//
// The gap between the conflict check and the event insert is a real race:
// the provider has no transactional reservation primitive, so a second
// simultaneous booking inside that window can slip through. The optional
// locker narrows the window; it never closes it across processes without
// Redis, and the system accepts that.
func (s *Service) Create(ctx context.Context, req *models.BookingRequest) (*Result, error) {
	if verr := ValidateRequest(req); verr != nil {
		metrics.IncBookingCreated("invalid")
		return nil, verr
	}

	if s.locker != nil {
		release, ok := s.locker.Acquire(ctx, "spinbook:lock:"+req.Date)
		if !ok {
			metrics.IncBookingCreated("locked")
			return nil, ErrDateLocked
		}
		defer release()
	}

	// Fresh, authoritative availability check. The client's earlier read is
	// untrusted: time has passed and other clients may have booked. A failed
	// read is logged and the commit proceeds optimistically — availability
	// over strict consistency.
	events, err := s.provider.DayEvents(ctx, req.Date)
	if err != nil {
		s.logger.Warn().Err(err).Str("date", req.Date).Msg("conflict check unavailable, proceeding with booking")
	} else {
		busy := schedule.BusyHours(events, s.studio.Timezone, s.logger)
		if conflicts := intersect(req.Slots, busy); len(conflicts) > 0 {
			metrics.IncBookingCreated("conflict")
			return nil, &ConflictError{Hours: conflicts}
		}
	}

	slots := dedupeSorted(req.Slots)
	b := &models.Booking{
		ID:        NewBookingID(),
		Date:      req.Date,
		Slots:     slots,
		Services:  append([]string(nil), req.Services...),
		UserData:  req.UserData,
		Status:    "confirmed",
		CreatedAt: s.now().UTC(),
	}

	created, err := s.provider.Insert(ctx, s.buildEvent(b))
	if err != nil {
		metrics.IncBookingCreated("error")
		return nil, err
	}
	b.EventID = created.Id
	b.HTMLLink = created.HtmlLink

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("date", b.Date).
		Ints("slots", b.Slots).
		Str("event_id", b.EventID).
		Msg("booking committed")
	metrics.IncBookingCreated("created")

	res := &Result{Booking: b, EventSummary: created.Summary, NotifierSent: true}
	if nerr := s.notifier.NotifyBooking(ctx, b); nerr != nil {
		// Notification failure never rolls back the booking.
		s.logger.Warn().Err(nerr).Str("booking_id", b.ID).Msg("telegram notification failed")
		metrics.IncNotifierResult("failed")
		res.NotifierSent = false
		res.NotifierReason = nerr.Error()
	} else {
		metrics.IncNotifierResult("sent")
	}
	return res, nil
}

func (s *Service) buildEvent(b *models.Booking) *calendar.Event {
	startHour := b.Slots[0]
	endHour := b.Slots[len(b.Slots)-1] + 1

	start := fmt.Sprintf("%sT%02d:00:00", b.Date, startHour)
	var end string
	if endHour == 24 {
		// A booking ending at midnight rolls over to 00:00 of the next day.
		next, _ := time.Parse("2006-01-02", b.Date)
		end = next.AddDate(0, 0, 1).Format("2006-01-02") + "T00:00:00"
	} else {
		end = fmt.Sprintf("%sT%02d:00:00", b.Date, endHour)
	}

	ev := &calendar.Event{
		Summary:     fmt.Sprintf("🎵 %s - Reserva de Estudio", b.UserData.Name),
		Description: s.eventDescription(b),
		Start:       &calendar.EventDateTime{DateTime: start, TimeZone: s.studio.Timezone},
		End:         &calendar.EventDateTime{DateTime: end, TimeZone: s.studio.Timezone},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: b.EventProperties(s.studio.Address),
		},
		ColorId: "5",
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		Location: fmt.Sprintf("%s - %s", s.studio.Name, s.studio.Address),
		Status:   "confirmed",
	}
	return ev
}

func (s *Service) eventDescription(b *models.Booking) string {
	var sb strings.Builder
	sb.WriteString("🎵 RESERVA DE ESTUDIO - SPINBOOK 🎵\n\n")
	sb.WriteString("📋 DETALLES DE LA RESERVA:\n")
	sb.WriteString(strings.Repeat("─", 40) + "\n\n")
	fmt.Fprintf(&sb, "👤 Cliente: %s\n", b.UserData.Name)
	fmt.Fprintf(&sb, "📧 Email: %s\n", b.UserData.Email)
	fmt.Fprintf(&sb, "📱 Teléfono: %s\n", b.UserData.Phone)
	fmt.Fprintf(&sb, "📅 Fecha: %s\n", models.FormatLongDate(b.Date))
	fmt.Fprintf(&sb, "⏰ Horarios: %s\n", models.FormatSlotRanges(b.Slots))
	fmt.Fprintf(&sb, "🎼 Servicios: %s\n", models.ServiceDisplayNames(b.Services))
	fmt.Fprintf(&sb, "📍 Ubicación: %s\n", s.studio.Address)
	fmt.Fprintf(&sb, "🎯 ID Reserva: %s\n", b.ID)
	if note := strings.TrimSpace(b.UserData.Observations); note != "" {
		fmt.Fprintf(&sb, "💬 Observaciones: %s\n", note)
	}
	sb.WriteString("\n⚠️ INSTRUCCIONES IMPORTANTES:\n")
	sb.WriteString("• Llegar 10 minutos antes del horario reservado\n")
	sb.WriteString("• Traer identificación y este número de reserva\n")
	fmt.Fprintf(&sb, "• Dirigirse a: %s\n", s.studio.Address)
	sb.WriteString("• Para cancelaciones, avisar con 24h de anticipación\n")
	fmt.Fprintf(&sb, "• Contacto: %s\n", s.studio.Phone)
	fmt.Fprintf(&sb, "• Email: %s\n", s.studio.Email)
	sb.WriteString("\nReserva generada automáticamente por SpinBook\n")
	sb.WriteString(b.CreatedAt.Format("2006-01-02 15:04:05"))
	return sb.String()
}

// intersect returns the sorted, deduplicated hours present in both sets.
func intersect(requested, busy []int) []int {
	busySet := make(map[int]bool, len(busy))
	for _, h := range busy {
		busySet[h] = true
	}
	seen := make(map[int]bool)
	var out []int
	for _, h := range requested {
		if busySet[h] && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	sort.Ints(out)
	return out
}

func dedupeSorted(slots []int) []int {
	seen := make(map[int]bool, len(slots))
	out := make([]int, 0, len(slots))
	for _, h := range slots {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	sort.Ints(out)
	return out
}
