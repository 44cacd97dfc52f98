// Package google wraps the Google Calendar v3 API behind the small surface
// the booking system needs, with service-account auth and tagged errors.
package google

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	googleauth "golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/BerakaStudio/spinbook-two/internal/config"
	"github.com/BerakaStudio/spinbook-two/internal/metrics"
	"github.com/BerakaStudio/spinbook-two/internal/models"
	"github.com/BerakaStudio/spinbook-two/internal/schedule"
)

const maxDayEvents = 250

// CalendarService is the provider access layer. The calendar it points at is
// the system of record: no booking state lives anywhere else.
type CalendarService struct {
	events     *calendar.EventsService
	calendars  *calendar.CalendarsService
	calendarID string
	timeZone   string
	logger     *zerolog.Logger
}

// NewCalendarService builds an authenticated client from service-account
// credentials (client email + private key), the same credential surface the
// deployment environment provides.
func NewCalendarService(ctx context.Context, cfg config.GoogleConfig, timeZone string, logger *zerolog.Logger) (*CalendarService, error) {
	jwtCfg := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{calendar.CalendarScope, calendar.CalendarEventsScope},
		TokenURL:   googleauth.JWTTokenURL,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &CalendarService{
		events:     svc.Events,
		calendars:  svc.Calendars,
		calendarID: cfg.CalendarID,
		timeZone:   timeZone,
		logger:     logger,
	}, nil
}

// DayEvents lists the non-deleted events overlapping one YYYY-MM-DD date,
// windowed on local wall-clock midnight to 23:59:59 in the studio zone.
func (s *CalendarService) DayEvents(ctx context.Context, date string) ([]*calendar.Event, error) {
	start, end, err := schedule.DayWindow(date, s.timeZone)
	if err != nil {
		return nil, &ProviderError{Kind: KindBadRequest, Op: "list events", Err: err}
	}
	return s.listWindow(ctx, start, end)
}

// RangeEvents lists events between two YYYY-MM-DD dates, inclusive.
func (s *CalendarService) RangeEvents(ctx context.Context, startDate, endDate string) ([]*calendar.Event, error) {
	start, _, err := schedule.DayWindow(startDate, s.timeZone)
	if err != nil {
		return nil, &ProviderError{Kind: KindBadRequest, Op: "list events", Err: err}
	}
	_, end, err := schedule.DayWindow(endDate, s.timeZone)
	if err != nil {
		return nil, &ProviderError{Kind: KindBadRequest, Op: "list events", Err: err}
	}
	return s.listWindow(ctx, start, end)
}

func (s *CalendarService) listWindow(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	res, err := s.events.List(s.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		TimeZone(s.timeZone).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false).
		MaxResults(maxDayEvents).
		Context(ctx).Do()
	if err != nil {
		perr := classify("list events", err)
		metrics.IncProviderError(perr.Kind.String())
		return nil, perr
	}
	return res.Items, nil
}

// Insert writes a new event and returns it with the provider-assigned id and
// HTML link filled in.
func (s *CalendarService) Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	created, err := s.events.Insert(s.calendarID, ev).
		SendUpdates("none").
		Context(ctx).Do()
	if err != nil {
		perr := classify("insert event", err)
		metrics.IncProviderError(perr.Kind.String())
		return nil, perr
	}
	return created, nil
}

// FindByBookingID locates the event carrying a given booking id in its
// private extended properties.
func (s *CalendarService) FindByBookingID(ctx context.Context, bookingID string) (*calendar.Event, error) {
	res, err := s.events.List(s.calendarID).
		PrivateExtendedProperty(models.BookingIDFilter(bookingID)).
		SingleEvents(true).
		MaxResults(1).
		Context(ctx).Do()
	if err != nil {
		perr := classify("find event", err)
		metrics.IncProviderError(perr.Kind.String())
		return nil, perr
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	return res.Items[0], nil
}

// Delete removes an event by provider event id.
func (s *CalendarService) Delete(ctx context.Context, eventID string) error {
	if err := s.events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		perr := classify("delete event", err)
		metrics.IncProviderError(perr.Kind.String())
		return perr
	}
	return nil
}

// TestAccess fetches the calendar itself, proving the credentials and the
// calendar id both work. Used by the configuration diagnostics endpoint.
func (s *CalendarService) TestAccess(ctx context.Context) (*calendar.Calendar, error) {
	cal, err := s.calendars.Get(s.calendarID).Context(ctx).Do()
	if err != nil {
		perr := classify("get calendar", err)
		metrics.IncProviderError(perr.Kind.String())
		return nil, perr
	}
	return cal, nil
}
