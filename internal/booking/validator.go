package booking

import (
	"fmt"
	"regexp"

	"github.com/BerakaStudio/spinbook-two/internal/models"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError rejects a booking request with a field-level reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateRequest checks the shape of a booking request. It is pure: it never
// talks to the calendar, and a rejection means no provider call was made.
func ValidateRequest(req *models.BookingRequest) *ValidationError {
	if req.Date == "" {
		return &ValidationError{Field: "date", Reason: "Date is required and must be a string."}
	}
	if !dateFormat.MatchString(req.Date) {
		return &ValidationError{Field: "date", Reason: "Date must be in YYYY-MM-DD format."}
	}

	if len(req.Slots) == 0 {
		return &ValidationError{Field: "slots", Reason: "Slots are required and must be a non-empty array."}
	}
	// Out-of-range entries are dropped; if anything was dropped the whole
	// request is rejected. No partial silent acceptance.
	valid := 0
	for _, slot := range req.Slots {
		if slot >= 0 && slot <= 23 {
			valid++
		}
	}
	if valid != len(req.Slots) {
		return &ValidationError{Field: "slots", Reason: "All slots must be valid hour numbers (0-23)."}
	}

	if len(req.Services) == 0 {
		return &ValidationError{Field: "services", Reason: "Services are required and must be a non-empty array."}
	}
	known := 0
	for _, svc := range req.Services {
		if models.KnownService(svc) {
			known++
		}
	}
	if known != len(req.Services) {
		return &ValidationError{Field: "services", Reason: "All services must be valid service identifiers."}
	}

	if req.UserData.Name == "" || req.UserData.Email == "" || req.UserData.Phone == "" {
		return &ValidationError{Field: "userData", Reason: "User data is incomplete."}
	}
	return nil
}
