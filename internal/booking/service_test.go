package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/BerakaStudio/spinbook-two/internal/config"
	"github.com/BerakaStudio/spinbook-two/internal/models"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) DayEvents(ctx context.Context, date string) ([]*calendar.Event, error) {
	args := m.Called(ctx, date)
	if events := args.Get(0); events != nil {
		return events.([]*calendar.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	args := m.Called(ctx, ev)
	if created := args.Get(0); created != nil {
		return created.(*calendar.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyBooking(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func testStudio() config.StudioConfig {
	return config.StudioConfig{
		Name:     "SpinBook Studio",
		Address:  "Av. Siempre Viva 742, Santiago",
		Email:    "studio@example.com",
		Phone:    "+56911112222",
		Timezone: "America/Santiago",
	}
}

func newTestService(provider *mockProvider, notifier *mockNotifier) *Service {
	logger := zerolog.Nop()
	svc := NewService(provider, notifier, nil, testStudio(), &logger)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 19, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func testRequest(slots ...int) *models.BookingRequest {
	return &models.BookingRequest{
		Date:     "2025-08-20",
		Slots:    slots,
		Services: []string{models.ServiceProduction},
		UserData: models.Contact{
			Name:  "Ana Pérez",
			Email: "ana@example.com",
			Phone: "+56911112222",
		},
	}
}

func insertedEvent(summary string) *calendar.Event {
	return &calendar.Event{
		Id:       "evt-1",
		HtmlLink: "https://calendar.google.com/event?eid=evt-1",
		Summary:  summary,
	}
}

func TestCreateSuccess(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("🎵 Ana Pérez - Reserva de Estudio"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), testRequest(17, 18))
	require.NoError(t, err)

	assert.Regexp(t, `^SB-[A-Z0-9]{8}$`, res.Booking.ID)
	assert.Equal(t, "2025-08-20", res.Booking.Date)
	assert.Equal(t, []int{17, 18}, res.Booking.Slots)
	assert.Equal(t, "confirmed", res.Booking.Status)
	assert.Equal(t, "evt-1", res.Booking.EventID)
	assert.True(t, res.NotifierSent)

	ev := provider.Calls[1].Arguments.Get(1).(*calendar.Event)
	assert.Equal(t, "2025-08-20T17:00:00", ev.Start.DateTime)
	assert.Equal(t, "2025-08-20T19:00:00", ev.End.DateTime)
	assert.Equal(t, "America/Santiago", ev.Start.TimeZone)
	assert.Equal(t, "5", ev.ColorId)
	require.NotNil(t, ev.ExtendedProperties)
	assert.Equal(t, res.Booking.ID, ev.ExtendedProperties.Private["spinbook_booking_id"])
	require.NotNil(t, ev.Reminders)
	assert.False(t, ev.Reminders.UseDefault)
	assert.Len(t, ev.Reminders.Overrides, 2)

	provider.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateConflict(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	busy := []*calendar.Event{{
		Status: "confirmed",
		Start:  &calendar.EventDateTime{DateTime: "2025-08-20T18:00:00-04:00"},
		End:    &calendar.EventDateTime{DateTime: "2025-08-20T19:00:00-04:00"},
	}}
	provider.On("DayEvents", mock.Anything, "2025-08-20").Return(busy, nil)

	_, err := svc.Create(context.Background(), testRequest(17, 18))
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []int{18}, cerr.Hours)

	provider.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyBooking", mock.Anything, mock.Anything)
}

func TestCreateConflictAllDay(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	allDay := []*calendar.Event{{
		Status: "confirmed",
		Start:  &calendar.EventDateTime{Date: "2025-08-20"},
	}}
	provider.On("DayEvents", mock.Anything, "2025-08-20").Return(allDay, nil)

	_, err := svc.Create(context.Background(), testRequest(10, 11, 12))
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	// Every requested hour conflicts against an all-day block.
	assert.Equal(t, []int{10, 11, 12}, cerr.Hours)
}

func TestCreateValidationRejectsBeforeProviderCall(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	_, err := svc.Create(context.Background(), testRequest(17, 25))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slots", verr.Field)

	provider.AssertNotCalled(t, "DayEvents", mock.Anything, mock.Anything)
}

func TestCreateNotifierFailureDoesNotFailBooking(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("summary"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(errors.New("telegram down"))

	res, err := svc.Create(context.Background(), testRequest(17))
	require.NoError(t, err)
	assert.False(t, res.NotifierSent)
	assert.Equal(t, "telegram down", res.NotifierReason)
}

func TestCreateProceedsWhenConflictCheckFails(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return(nil, errors.New("api unavailable"))
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("summary"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), testRequest(17))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Booking.EventID)
}

func TestCreateInsertFailurePropagates(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	_, err := svc.Create(context.Background(), testRequest(17))
	require.Error(t, err)
	notifier.AssertNotCalled(t, "NotifyBooking", mock.Anything, mock.Anything)
}

func TestCreateMidnightRollover(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("summary"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), testRequest(22, 23))
	require.NoError(t, err)

	ev := provider.Calls[1].Arguments.Get(1).(*calendar.Event)
	assert.Equal(t, "2025-08-20T22:00:00", ev.Start.DateTime)
	assert.Equal(t, "2025-08-21T00:00:00", ev.End.DateTime)
}

func TestCreateDeduplicatesSlots(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	svc := newTestService(provider, notifier)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("summary"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), testRequest(18, 17, 18))
	require.NoError(t, err)
	assert.Equal(t, []int{17, 18}, res.Booking.Slots)
}

type stubLocker struct {
	ok       bool
	released bool
}

func (l *stubLocker) Acquire(ctx context.Context, key string) (func(), bool) {
	if !l.ok {
		return nil, false
	}
	return func() { l.released = true }, true
}

func TestCreateDateLocked(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	logger := zerolog.Nop()
	svc := NewService(provider, notifier, &stubLocker{ok: false}, testStudio(), &logger)

	_, err := svc.Create(context.Background(), testRequest(17))
	require.ErrorIs(t, err, ErrDateLocked)
	provider.AssertNotCalled(t, "DayEvents", mock.Anything, mock.Anything)
}

func TestCreateReleasesLock(t *testing.T) {
	provider := new(mockProvider)
	notifier := new(mockNotifier)
	locker := &stubLocker{ok: true}
	logger := zerolog.Nop()
	svc := NewService(provider, notifier, locker, testStudio(), &logger)

	provider.On("DayEvents", mock.Anything, "2025-08-20").Return([]*calendar.Event{}, nil)
	provider.On("Insert", mock.Anything, mock.Anything).Return(insertedEvent("summary"), nil)
	notifier.On("NotifyBooking", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), testRequest(17))
	require.NoError(t, err)
	assert.True(t, locker.released)
}
