package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
)

// fakeBookingRepo держит брони в памяти и, как exclusion constraint в postgres,
// отказывает во вставке пересекающейся брони.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking

	// err, если задана, возвращается из всех методов
	err error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (r *fakeBookingRepo) Insert(_ context.Context, b *models.Booking) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return uuid.Nil, r.err
	}

	for _, other := range r.bookings {
		if other.RoomID == b.RoomID && other.Range().Overlaps(b.Range()) {
			return uuid.Nil, errs.New(errs.ErrConflict, "insert booking: bookings_no_overlap")
		}
	}

	b.ID = uuid.New()
	b.CreatedAt = time.Now()

	stored := *b
	r.bookings[b.ID] = &stored

	return b.ID, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	b, ok := r.bookings[id]
	if !ok {
		return nil, errs.New(errs.ErrNotFound, "get booking")
	}

	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID, ownerID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}

	b, ok := r.bookings[id]
	if !ok || (ownerID != nil && b.UserID != *ownerID) {
		return false, nil
	}

	delete(r.bookings, id)

	return true, nil
}

func (r *fakeBookingRepo) ListFuture(_ context.Context, filter repository.BookingFilter, now time.Time) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	out := make([]*models.Booking, 0)
	for _, b := range r.bookings {
		if b.EndTime.Before(now) {
			continue
		}
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.UserID != uuid.Nil && b.UserID != filter.UserID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })

	return out, nil
}

func (r *fakeBookingRepo) CountOverlapping(_ context.Context, roomID string, tr models.TimeRange) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return 0, r.err
	}

	n := 0
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Range().Overlaps(tr) {
			n++
		}
	}

	return n, nil
}

func (r *fakeBookingRepo) ListOverlapping(_ context.Context, roomID string, tr models.TimeRange) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	out := make([]*models.Booking, 0)
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Range().Overlaps(tr) {
			cp := *b
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })

	return out, nil
}

func (r *fakeBookingRepo) FindCovering(_ context.Context, roomID string, at time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Range().Contains(at) {
			cp := *b
			return &cp, nil
		}
	}

	return nil, nil
}

func (r *fakeBookingRepo) all() []*models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}

	return out
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
	err   error
}

func newFakeRoomRepo(rooms ...*models.Room) *fakeRoomRepo {
	r := &fakeRoomRepo{rooms: make(map[string]*models.Room)}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}

	return r
}

func (r *fakeRoomRepo) List(_ context.Context) ([]*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	out := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		cp := *room
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	room, ok := r.rooms[id]
	if !ok {
		return nil, errs.New(errs.ErrNotFound, "get room")
	}

	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}

	_, ok := r.rooms[id]
	return ok, nil
}

func (r *fakeRoomRepo) Upsert(_ context.Context, room *models.Room) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}

	_, existed := r.rooms[room.ID]
	cp := *room
	r.rooms[room.ID] = &cp

	return !existed, nil
}

func (r *fakeRoomRepo) Update(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	if _, ok := r.rooms[room.ID]; !ok {
		return errs.NotFound("room %q not found", room.ID)
	}

	cp := *room
	r.rooms[room.ID] = &cp

	return nil
}

type fakeIdentity struct {
	profiles map[string]*models.Profile
	err      error
}

func newFakeIdentity(profiles ...*models.Profile) *fakeIdentity {
	f := &fakeIdentity{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		f.profiles[strings.ToLower(p.Email)] = p
	}

	return f
}

func (f *fakeIdentity) Resolve(_ context.Context, email string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.profiles[strings.ToLower(email)]
	if !ok {
		return nil, errs.NotFound("profile %q not found", email)
	}

	return p, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []events.Message
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, msg events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.messages = append(p.messages, msg)

	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Type)
	}

	return out
}

// alwaysAvailable пропускает любую проверку, чтобы до вставки дошли пересекающиеся брони
type alwaysAvailable struct{}

func (alwaysAvailable) IsRoomBooked(context.Context, string, time.Time) (bool, error) {
	return false, nil
}

func (alwaysAvailable) IsTimeSlotAvailable(context.Context, string, time.Time, time.Time) (bool, error) {
	return true, nil
}

func (alwaysAvailable) ConflictingBookings(context.Context, string, time.Time, time.Time) ([]*models.Booking, error) {
	return nil, nil
}
