package booking

import (
	"regexp"
	"testing"
)

var idShape = regexp.MustCompile(`^SB-[A-Z0-9]{8}$`)

func TestNewBookingIDShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewBookingID()
		if !idShape.MatchString(id) {
			t.Fatalf("booking id %q does not match %s", id, idShape)
		}
	}
}
