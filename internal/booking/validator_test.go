package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerakaStudio/spinbook-two/internal/models"
)

func validRequest() *models.BookingRequest {
	return &models.BookingRequest{
		Date:     "2025-08-20",
		Slots:    []int{17, 18},
		Services: []string{models.ServiceProduction},
		UserData: models.Contact{
			Name:  "Ana Pérez",
			Email: "ana@example.com",
			Phone: "+56911112222",
		},
	}
}

func TestValidateRequestOK(t *testing.T) {
	assert.Nil(t, ValidateRequest(validRequest()))
}

func TestValidateRequestDate(t *testing.T) {
	req := validRequest()
	req.Date = ""
	verr := ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "date", verr.Field)

	req.Date = "20-08-2025"
	verr = ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "Date must be in YYYY-MM-DD format.", verr.Reason)
}

func TestValidateRequestSlots(t *testing.T) {
	req := validRequest()
	req.Slots = nil
	verr := ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "slots", verr.Field)

	// One bad slot rejects the whole request; no partial acceptance.
	req.Slots = []int{17, 25}
	verr = ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "All slots must be valid hour numbers (0-23).", verr.Reason)

	req.Slots = []int{-1}
	require.NotNil(t, ValidateRequest(req))

	req.Slots = []int{0, 23}
	assert.Nil(t, ValidateRequest(req))
}

func TestValidateRequestServices(t *testing.T) {
	req := validRequest()
	req.Services = nil
	verr := ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "services", verr.Field)

	req.Services = []string{models.ServiceProduction, "djing"}
	verr = ValidateRequest(req)
	require.NotNil(t, verr)
	assert.Equal(t, "All services must be valid service identifiers.", verr.Reason)

	req.Services = []string{models.ServiceRecording, models.ServiceMixMastering}
	assert.Nil(t, ValidateRequest(req))
}

func TestValidateRequestUserData(t *testing.T) {
	for _, tc := range []func(*models.BookingRequest){
		func(r *models.BookingRequest) { r.UserData.Name = "" },
		func(r *models.BookingRequest) { r.UserData.Email = "" },
		func(r *models.BookingRequest) { r.UserData.Phone = "" },
	} {
		req := validRequest()
		tc(req)
		verr := ValidateRequest(req)
		require.NotNil(t, verr)
		assert.Equal(t, "userData", verr.Field)
		assert.Equal(t, "User data is incomplete.", verr.Reason)
	}

	// Observations are optional.
	req := validRequest()
	req.UserData.Observations = ""
	assert.Nil(t, ValidateRequest(req))
}
