package booking

import (
	"time"

	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for service and sweep tests. It
// hands out copies so a mutated result only sticks after an explicit Save,
// matching how the GORM implementation behaves.
type fakeRepository struct {
	bookings   map[uint]*models.Booking
	candidates map[uint]*models.BookingCaregiver
	users      map[uint]*models.User
	nextID     uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bookings:   make(map[uint]*models.Booking),
		candidates: make(map[uint]*models.BookingCaregiver),
		users:      make(map[uint]*models.User),
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) addUser(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = f.id()
	}
	f.users[u.ID] = &u
	return &u
}

func (f *fakeRepository) addBooking(b models.Booking) *models.Booking {
	if b.ID == 0 {
		b.ID = f.id()
	}
	if b.DurationDays == 0 {
		b.DurationDays = 1
	}
	f.bookings[b.ID] = &b
	return &b
}

func (f *fakeRepository) addCandidate(bc models.BookingCaregiver) *models.BookingCaregiver {
	if bc.ID == 0 {
		bc.ID = f.id()
	}
	f.candidates[bc.ID] = &bc
	return &bc
}

func (f *fakeRepository) candidatesOf(bookingID uint) []*models.BookingCaregiver {
	var out []*models.BookingCaregiver
	for _, c := range f.candidates {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRepository) Transaction(fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) BookingByID(id uint) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepository) BookingDetail(id uint) (*models.Booking, error) {
	b, err := f.BookingByID(id)
	if err != nil {
		return nil, err
	}
	for _, c := range f.candidatesOf(id) {
		b.Caregivers = append(b.Caregivers, *c)
	}
	return b, nil
}

func (f *fakeRepository) CreateBooking(b *models.Booking) error {
	b.ID = f.id()
	cp := *b
	f.bookings[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) SaveBooking(b *models.Booking) error {
	cp := *b
	f.bookings[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) MarkBookingCancelled(id uint, reason string, actorID uint, actorRole string, at time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status == models.BookingStatusCancelled {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	b.CancelledAt = &at
	b.CancellationReason = reason
	b.CancelledBy = &actorID
	b.CancelledByType = actorRole
	return true, nil
}

func (f *fakeRepository) ListBookings(status string, offset, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) RecentBookingsBySeeker(seekerID uint, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.SeekerID == seekerID && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepository) RecentBookingsByCaregiver(caregiverID uint, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, c := range f.candidates {
		if c.CaregiverID == caregiverID && c.IsFinalSelection {
			if b, ok := f.bookings[c.BookingID]; ok && len(out) < limit {
				out = append(out, *b)
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) ExpiredActiveBookings(endOfDay time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status == models.BookingStatusActive && !b.EndDate().After(endOfDay) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepository) CandidatesByBookingID(bookingID uint) ([]models.BookingCaregiver, error) {
	var out []models.BookingCaregiver
	for _, c := range f.candidatesOf(bookingID) {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepository) CandidateByBookingAndCaregiver(bookingID, caregiverID uint) (*models.BookingCaregiver, error) {
	for _, c := range f.candidates {
		if c.BookingID == bookingID && c.CaregiverID == caregiverID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FinalSelection(bookingID uint) (*models.BookingCaregiver, error) {
	for _, c := range f.candidates {
		if c.BookingID == bookingID && c.IsFinalSelection {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateCandidate(bc *models.BookingCaregiver) error {
	bc.ID = f.id()
	cp := *bc
	f.candidates[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) SaveCandidate(bc *models.BookingCaregiver) error {
	cp := *bc
	f.candidates[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) ClearFinalSelections(bookingID uint) error {
	for _, c := range f.candidatesOf(bookingID) {
		c.IsFinalSelection = false
	}
	return nil
}

func (f *fakeRepository) UpdateOtherCandidates(bookingID, keepCaregiverID uint, status string) error {
	for _, c := range f.candidatesOf(bookingID) {
		if c.CaregiverID != keepCaregiverID {
			c.Status = status
		}
	}
	return nil
}

func (f *fakeRepository) UserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}
