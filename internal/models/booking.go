package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Service kinds the studio offers. Identifiers travel over the wire;
// display names are what clients and notifications show.
const (
	ServiceProduction   = "produccion"
	ServiceRecording    = "grabacion"
	ServiceMixMastering = "mixmastering"
)

var serviceNames = map[string]string{
	ServiceProduction:   "Producción Musical",
	ServiceRecording:    "Grabación de Voces/Instrumentos",
	ServiceMixMastering: "Mix/Mastering",
}

// KnownService reports whether id is a member of the service enumeration.
func KnownService(id string) bool {
	_, ok := serviceNames[id]
	return ok
}

// ServiceDisplayName returns the human-readable name for a service id,
// falling back to the id itself for unknown values.
func ServiceDisplayName(id string) string {
	if name, ok := serviceNames[id]; ok {
		return name
	}
	return id
}

// ServiceDisplayNames joins the display names of ids with ", ".
func ServiceDisplayNames(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, ServiceDisplayName(id))
	}
	return strings.Join(names, ", ")
}

// Contact holds the client-supplied contact block of a booking.
type Contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Observations string `json:"observations,omitempty"`
}

// BookingRequest is the write-endpoint request body.
type BookingRequest struct {
	Date     string   `json:"date"`
	Slots    []int    `json:"slots"`
	Services []string `json:"services"`
	UserData Contact  `json:"userData"`
}

// Booking is a confirmed reservation. Its durable form is the metadata
// block inside the calendar event; nothing else persists it.
type Booking struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Slots     []int     `json:"slots"`
	Services  []string  `json:"services"`
	UserData  Contact   `json:"userData"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	EventID  string `json:"-"`
	HTMLLink string `json:"-"`
}

// Extended-property keys. These are the wire format of a persisted booking;
// changing them orphans every existing event.
const (
	propClientName    = "spinbook_client_name"
	propClientEmail   = "spinbook_client_email"
	propClientPhone   = "spinbook_client_phone"
	propBookingID     = "spinbook_booking_id"
	propSlots         = "spinbook_slots"
	propServices      = "spinbook_services"
	propObservations  = "spinbook_observations"
	propStudioAddress = "spinbook_studio_address"
	propCreatedAt     = "spinbook_created_at"
)

// BookingIDFilter renders the private-extended-property search term that
// locates the event carrying a booking id. It is the only place outside
// EventProperties that spells the wire key.
func BookingIDFilter(id string) string {
	return propBookingID + "=" + id
}

// EventProperties renders the booking as the private extended-property block
// stored on its calendar event.
func (b *Booking) EventProperties(studioAddress string) map[string]string {
	slots, _ := json.Marshal(b.Slots)
	services, _ := json.Marshal(b.Services)
	return map[string]string{
		propClientName:    b.UserData.Name,
		propClientEmail:   b.UserData.Email,
		propClientPhone:   b.UserData.Phone,
		propBookingID:     b.ID,
		propSlots:         string(slots),
		propServices:      string(services),
		propObservations:  b.UserData.Observations,
		propStudioAddress: studioAddress,
		propCreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// BookingFromEvent reconstructs a booking from the metadata block of a
// calendar event. Events that were not created by this system (no booking id
// in their private properties) yield an error.
func BookingFromEvent(ev *calendar.Event) (*Booking, error) {
	if ev.ExtendedProperties == nil || ev.ExtendedProperties.Private == nil {
		return nil, fmt.Errorf("event %s has no private properties", ev.Id)
	}
	props := ev.ExtendedProperties.Private
	id := props[propBookingID]
	if id == "" {
		return nil, fmt.Errorf("event %s has no booking id", ev.Id)
	}

	b := &Booking{
		ID:       id,
		Status:   ev.Status,
		EventID:  ev.Id,
		HTMLLink: ev.HtmlLink,
		UserData: Contact{
			Name:         props[propClientName],
			Email:        props[propClientEmail],
			Phone:        props[propClientPhone],
			Observations: props[propObservations],
		},
	}

	if err := json.Unmarshal([]byte(props[propSlots]), &b.Slots); err != nil {
		return nil, fmt.Errorf("event %s: parse slots: %w", ev.Id, err)
	}
	if err := json.Unmarshal([]byte(props[propServices]), &b.Services); err != nil {
		return nil, fmt.Errorf("event %s: parse services: %w", ev.Id, err)
	}
	if raw := props[propCreatedAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			b.CreatedAt = t
		}
	}

	// The date is recoverable from the event start; the start was written in
	// the studio zone so the local date component is the booking date.
	if ev.Start != nil {
		switch {
		case ev.Start.DateTime != "":
			if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				b.Date = t.Format("2006-01-02")
			}
		case ev.Start.Date != "":
			b.Date = ev.Start.Date
		}
	}
	return b, nil
}

// FormatSlotRanges renders hour slots as "17:00-18:00, 18:00-19:00".
func FormatSlotRanges(slots []int) string {
	sorted := append([]int(nil), slots...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for _, h := range sorted {
		parts = append(parts, fmt.Sprintf("%d:00-%d:00", h, h+1))
	}
	return strings.Join(parts, ", ")
}

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLongDate renders a YYYY-MM-DD date the way the booking summary shows
// it, e.g. "miércoles, 20 de agosto de 2025". Unparseable input is returned
// unchanged.
func FormatLongDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}
