package booking

import "math/rand"

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID returns an "SB-" token with 8 characters drawn uniformly from
// [A-Z0-9]. There is no uniqueness check against existing bookings: the
// ~36^8 keyspace carries that risk, and it is not a cryptographic token.
func NewBookingID() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return "SB-" + string(b)
}
