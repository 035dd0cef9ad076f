package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

var (
	testNow = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

	ann   = &models.Profile{ID: uuid.New(), Email: "ann@example.com", Role: models.RoleUser}
	bob   = &models.Profile{ID: uuid.New(), Email: "bob@example.com", Role: models.RoleUser}
	admin = &models.Profile{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
)

func clock(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

type bookingFixture struct {
	uc        BookingUsecase
	bookings  *fakeBookingRepo
	rooms     *fakeRoomRepo
	identity  *fakeIdentity
	publisher *fakePublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		bookings: newFakeBookingRepo(),
		rooms: newFakeRoomRepo(
			&models.Room{ID: "room-1", Name: "Executive Suite", Capacity: 12, Area: models.AreaPastorie},
			&models.Room{ID: "room-2", Name: "Team Space", Capacity: 8, Area: models.AreaPastorie},
		),
		identity:  newFakeIdentity(ann, bob, admin),
		publisher: &fakePublisher{},
	}

	f.uc = NewBookingUsecase(
		BookingConfig{
			PastTolerance:  time.Minute,
			DefaultPurpose: models.DefaultPurpose,
			StoreTimeout:   time.Second,
			Now:            func() time.Time { return testNow },
		},
		f.bookings,
		f.rooms,
		f.identity,
		NewAvailabilityUsecase(f.bookings, f.rooms, time.Second),
		f.publisher,
	)

	return f
}

func (f *bookingFixture) create(t *testing.T, roomID string, start, end time.Time, who *models.Profile) (uuid.UUID, error) {
	t.Helper()

	return f.uc.Create(context.Background(), &input.CreateBookingInput{
		RoomID:         roomID,
		Start:          start,
		End:            end,
		RequesterEmail: who.Email,
	})
}

func TestCreate_TouchingBookingsBothSucceed(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	_, err = f.create(t, "room-1", clock(10, 0), clock(11, 0), bob)
	require.NoError(t, err)

	assert.Len(t, f.bookings.all(), 2)
}

func TestCreate_OverlapIsConflict(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	_, err = f.create(t, "room-1", clock(9, 30), clock(10, 30), bob)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.Equal(t, "slot unavailable", errs.Message(err))

	// другая комната не мешает
	_, err = f.create(t, "room-2", clock(9, 30), clock(10, 30), bob)
	assert.NoError(t, err)
}

func TestCreate_StoreConstraintIsSurfacedAsConflict(t *testing.T) {
	f := newBookingFixture(t)

	// проверка пропускает всё, остаётся только ограничение хранилища
	uc := NewBookingUsecase(
		BookingConfig{PastTolerance: time.Minute, Now: func() time.Time { return testNow }},
		f.bookings, f.rooms, f.identity, alwaysAvailable{}, nil,
	)

	in := &input.CreateBookingInput{RoomID: "room-1", Start: clock(9, 0), End: clock(10, 0), RequesterEmail: ann.Email}

	_, err := uc.Create(context.Background(), in)
	require.NoError(t, err)

	in2 := *in
	in2.Start = clock(9, 59)
	in2.RequesterEmail = bob.Email

	_, err = uc.Create(context.Background(), &in2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.Equal(t, "slot unavailable", errs.Message(err))
	assert.Len(t, f.bookings.all(), 1)
}

func TestCreate_RoundTripWithDefaultPurpose(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	mine, err := f.uc.ListBookingsForUser(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	got := mine[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "room-1", got.RoomID)
	assert.True(t, got.StartTime.Equal(clock(9, 0)))
	assert.True(t, got.EndTime.Equal(clock(10, 0)))
	assert.Equal(t, ann.ID, got.UserID)
	assert.Equal(t, models.DefaultPurpose, got.Purpose)

	_, err = f.uc.Create(context.Background(), &input.CreateBookingInput{
		RoomID: "room-2", Start: clock(9, 0), End: clock(10, 0), RequesterEmail: ann.Email, Purpose: "Choir practice",
	})
	require.NoError(t, err)

	forRoom, err := f.uc.ListBookingsForRoom(context.Background(), "room-2")
	require.NoError(t, err)
	require.Len(t, forRoom, 1)
	assert.Equal(t, "Choir practice", forRoom[0].Purpose)
}

func TestCreate_PublishesEvent(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	assert.Equal(t, []string{events.TypeBookingCreated}, f.publisher.types())
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.publisher.err = errors.New("redis down")

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)
	assert.Len(t, f.bookings.all(), 1)
}

func TestCreate_Validation(t *testing.T) {
	f := newBookingFixture(t)

	cases := []struct {
		name string
		in   input.CreateBookingInput
		kind error
	}{
		{"end before start", input.CreateBookingInput{RoomID: "room-1", Start: clock(10, 0), End: clock(9, 0), RequesterEmail: ann.Email}, errs.ErrValidation},
		{"empty range", input.CreateBookingInput{RoomID: "room-1", Start: clock(10, 0), End: clock(10, 0), RequesterEmail: ann.Email}, errs.ErrValidation},
		{"missing requester", input.CreateBookingInput{RoomID: "room-1", Start: clock(9, 0), End: clock(10, 0)}, errs.ErrValidation},
		{"missing room", input.CreateBookingInput{Start: clock(9, 0), End: clock(10, 0), RequesterEmail: ann.Email}, errs.ErrValidation},
		{"in the past", input.CreateBookingInput{RoomID: "room-1", Start: clock(6, 0), End: clock(7, 30), RequesterEmail: ann.Email}, errs.ErrValidation},
		{"unknown requester", input.CreateBookingInput{RoomID: "room-1", Start: clock(9, 0), End: clock(10, 0), RequesterEmail: "eve@example.com"}, errs.ErrNotFound},
		{"unknown room", input.CreateBookingInput{RoomID: "room-9", Start: clock(9, 0), End: clock(10, 0), RequesterEmail: ann.Email}, errs.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			_, err := f.uc.Create(context.Background(), &in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, errs.KindOf(err))
		})
	}

	assert.Empty(t, f.bookings.all())
}

func TestCreate_WithinPastTolerance(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.create(t, "room-1", testNow.Add(-30*time.Second), clock(8, 0), ann)
	assert.NoError(t, err)
}

func TestCreate_StoreFailureIsClassified(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.err = errs.Wrap(errs.ErrTransient, context.DeadlineExceeded, "count overlapping bookings")

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrTransient))

	f.bookings.err = errors.New("relation bookings does not exist")

	_, err = f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrFatal))
}

func TestCancel_ByOwner(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(context.Background(), id, ann.Email))

	current, err := f.uc.GetCurrentBookingForRoom(context.Background(), "room-1", clock(9, 30))
	require.NoError(t, err)
	assert.Nil(t, current)

	assert.Equal(t, []string{events.TypeBookingCreated, events.TypeBookingCancelled}, f.publisher.types())
}

func TestCancel_ByNonOwnerIsForbidden(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	err = f.uc.Cancel(context.Background(), id, bob.Email)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	current, err := f.uc.GetCurrentBookingForRoom(context.Background(), "room-1", clock(9, 30))
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, id, current.ID)
}

func TestCancel_ByAdmin(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(context.Background(), id, admin.Email))
	assert.Empty(t, f.bookings.all())
}

func TestCancel_NotFound(t *testing.T) {
	f := newBookingFixture(t)

	err := f.uc.Cancel(context.Background(), uuid.New(), ann.Email)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, "booking not found", errs.Message(err))
}

func TestCancel_StoreFailureIsNotNotFound(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	f.bookings.err = errors.New("connection reset")

	err = f.uc.Cancel(context.Background(), id, ann.Email)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrFatal))
	assert.False(t, errors.Is(err, errs.ErrNotFound))
}

func TestListFutureBookings_FilterAndOrder(t *testing.T) {
	f := newBookingFixture(t)

	// прошедшая бронь кладётся в хранилище напрямую
	past := &models.Booking{RoomID: "room-1", UserID: ann.ID, StartTime: clock(5, 0), EndTime: clock(6, 0), Purpose: "Early"}
	_, err := f.bookings.Insert(context.Background(), past)
	require.NoError(t, err)

	_, err = f.create(t, "room-2", clock(14, 0), clock(15, 0), ann)
	require.NoError(t, err)
	_, err = f.create(t, "room-1", clock(9, 0), clock(10, 0), bob)
	require.NoError(t, err)
	_, err = f.create(t, "room-1", clock(11, 0), clock(12, 0), ann)
	require.NoError(t, err)

	got, err := f.uc.ListFutureBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, b := range got {
		assert.False(t, b.EndTime.Before(testNow))
		if i > 0 {
			assert.False(t, b.StartTime.Before(got[i-1].StartTime))
		}
	}
}

func TestIsRoomBooked_Boundaries(t *testing.T) {
	f := newBookingFixture(t)
	availability := NewAvailabilityUsecase(f.bookings, f.rooms, time.Second)

	_, err := f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)

	cases := []struct {
		at   time.Time
		want bool
	}{
		{clock(8, 59), false},
		{clock(9, 0), true},
		{clock(9, 30), true},
		{clock(10, 0), false},
	}

	for _, tc := range cases {
		booked, err := availability.IsRoomBooked(context.Background(), "room-1", tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, booked, tc.at.Format(time.Kitchen))
	}

	booked, err := availability.IsRoomBooked(context.Background(), "room-2", clock(9, 30))
	require.NoError(t, err)
	assert.False(t, booked)
}

func TestIsTimeSlotAvailable_FailsClosed(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.err = errs.Wrap(errs.ErrTransient, errors.New("dial tcp: i/o timeout"), "count overlapping bookings")

	rooms := newFakeRoomRepo(&models.Room{ID: "room-1", Name: "Executive Suite"})

	ok, err := NewAvailabilityUsecase(repo, rooms, time.Second).IsTimeSlotAvailable(context.Background(), "room-1", clock(9, 0), clock(10, 0))
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errs.ErrTransient))
}

func TestAvailability_UnknownRoomIsNotFound(t *testing.T) {
	f := newBookingFixture(t)
	availability := NewAvailabilityUsecase(f.bookings, f.rooms, time.Second)
	ctx := context.Background()

	ok, err := availability.IsTimeSlotAvailable(ctx, "room-9", clock(9, 0), clock(10, 0))
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, `room "room-9" not found`, errs.Message(err))

	_, err = availability.IsRoomBooked(ctx, "room-9", clock(9, 30))
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = availability.ConflictingBookings(ctx, "room-9", clock(9, 0), clock(10, 0))
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = f.uc.ListBookingsForRoom(ctx, "room-9")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestAvailability_RoomLookupFailureFailsClosed(t *testing.T) {
	f := newBookingFixture(t)
	f.rooms.err = errs.Wrap(errs.ErrTransient, errors.New("connection refused"), "room exists")

	ok, err := NewAvailabilityUsecase(f.bookings, f.rooms, time.Second).
		IsTimeSlotAvailable(context.Background(), "room-1", clock(9, 0), clock(10, 0))
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errs.ErrTransient))
}

func TestConflictingBookings(t *testing.T) {
	f := newBookingFixture(t)
	availability := NewAvailabilityUsecase(f.bookings, f.rooms, time.Second)

	_, err := f.create(t, "room-1", clock(11, 0), clock(12, 0), bob)
	require.NoError(t, err)
	_, err = f.create(t, "room-1", clock(9, 0), clock(10, 0), ann)
	require.NoError(t, err)
	_, err = f.create(t, "room-1", clock(13, 0), clock(14, 0), ann)
	require.NoError(t, err)
	_, err = f.create(t, "room-2", clock(9, 30), clock(10, 30), ann)
	require.NoError(t, err)

	got, err := availability.ConflictingBookings(context.Background(), "room-1", clock(9, 30), clock(11, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, clock(9, 0), got[0].StartTime)
	assert.Equal(t, clock(11, 0), got[1].StartTime)

	// касание границ не конфликт
	got, err = availability.ConflictingBookings(context.Background(), "room-1", clock(12, 0), clock(13, 0))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = availability.ConflictingBookings(context.Background(), "room-1", clock(10, 0), clock(9, 0))
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestNoOverlapInvariant_AfterRandomCreates(t *testing.T) {
	f := newBookingFixture(t)
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		room := "room-1"
		if rnd.Intn(2) == 0 {
			room = "room-2"
		}

		start := clock(8, 0).Add(time.Duration(rnd.Intn(40)) * 15 * time.Minute)
		end := start.Add(time.Duration(1+rnd.Intn(8)) * 15 * time.Minute)

		_, err := f.create(t, room, start, end, ann)
		if err != nil {
			require.True(t, errors.Is(err, errs.ErrConflict), err.Error())
		}
	}

	all := f.bookings.all()
	require.NotEmpty(t, all)

	for i, b1 := range all {
		for _, b2 := range all[i+1:] {
			if b1.RoomID != b2.RoomID {
				continue
			}
			assert.False(t, b1.Range().Overlaps(b2.Range()), "%v overlaps %v", b1.Range(), b2.Range())
		}
	}
}
