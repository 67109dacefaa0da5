package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// In-memory fakes for the engine's collaborators.  The transaction
// runner hands a nil *sql.Tx to the unit of work; the stores ignore it.
// The ledger fake keeps real per-night state so conflict and release
// behavior is exercised, not just stubbed.

type fakeRunner struct{}

func (fakeRunner) InTx(ctx context.Context, fn func(*sql.Tx) error) error { return fn(nil) }
func (fakeRunner) InSerializableTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

type fakeLedger struct {
	booked map[uint64]map[time.Time]uint64 // roomID -> night -> bookingID
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{booked: make(map[uint64]map[time.Time]uint64)}
}

func nightsIn(start, end time.Time) []time.Time {
	var out []time.Time
	for d := model.DateOnly(start); d.Before(model.DateOnly(end)); d = d.Add(24 * time.Hour) {
		out = append(out, d)
	}
	return out
}

func (l *fakeLedger) IsAvailableTx(_ context.Context, _ *sql.Tx, roomID uint64, start, end time.Time) (bool, error) {
	for _, night := range nightsIn(start, end) {
		if _, taken := l.booked[roomID][night]; taken {
			return false, nil
		}
	}
	return true, nil
}

func (l *fakeLedger) ReserveTx(_ context.Context, _ *sql.Tx, roomID, bookingID uint64, start, end time.Time) error {
	for _, night := range nightsIn(start, end) {
		if _, taken := l.booked[roomID][night]; taken {
			return &repository.ConflictError{RoomID: roomID, Date: night}
		}
	}
	if l.booked[roomID] == nil {
		l.booked[roomID] = make(map[time.Time]uint64)
	}
	for _, night := range nightsIn(start, end) {
		l.booked[roomID][night] = bookingID
	}
	return nil
}

func (l *fakeLedger) ReleaseTx(_ context.Context, _ *sql.Tx, roomID uint64, start, end time.Time) error {
	for _, night := range nightsIn(start, end) {
		delete(l.booked[roomID], night)
	}
	return nil
}

func (l *fakeLedger) bookedNights(roomID uint64) int { return len(l.booked[roomID]) }

type fakeBookingStore struct {
	seq    uint64
	byID   map[uint64]*model.Booking
	guests map[uint64][]model.Guest
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byID: make(map[uint64]*model.Booking), guests: make(map[uint64][]model.Guest)}
}

func (s *fakeBookingStore) add(b *model.Booking) *model.Booking {
	s.seq++
	b.ID = s.seq
	s.byID[b.ID] = b
	return b
}

func (s *fakeBookingStore) CreateTx(_ context.Context, _ *sql.Tx, b *model.Booking) error {
	s.add(b)
	return nil
}

func (s *fakeBookingStore) AddGuestsTx(_ context.Context, _ *sql.Tx, bookingID uint64, guests []model.Guest) error {
	s.guests[bookingID] = append(s.guests[bookingID], guests...)
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeBookingStore) GetByIDForUpdateTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Booking, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeBookingStore) GetByReference(_ context.Context, ref string) (*model.Booking, error) {
	for _, b := range s.byID {
		if b.Reference == ref {
			return b, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *fakeBookingStore) GetByReferenceForUpdateTx(ctx context.Context, _ *sql.Tx, ref string) (*model.Booking, error) {
	return s.GetByReference(ctx, ref)
}

func (s *fakeBookingStore) ReferenceExists(_ context.Context, ref string) (bool, error) {
	for _, b := range s.byID {
		if b.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) CountPendingByUser(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, b := range s.byID {
		if b.UserID == userID && b.PaymentStatus == model.PaymentPending {
			n++
		}
	}
	return n, nil
}

func (s *fakeBookingStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, bs model.BookingStatus, ps model.PaymentStatus) error {
	b, ok := s.byID[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = bs
	b.PaymentStatus = ps
	return nil
}

func (s *fakeBookingStore) FindExpiredPending(_ context.Context, cutoff time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.byID {
		if b.PaymentStatus == model.PaymentPending && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListByUser(_ context.Context, userID uint64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListAll(_ context.Context) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.byID {
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBookingStore) ActiveByUser(_ context.Context, userID uint64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.byID {
		if b.UserID == userID && (b.Status == model.StatusBooked || b.Status == model.StatusCheckedIn) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) DeleteByUserTx(_ context.Context, _ *sql.Tx, userID uint64) (int64, error) {
	var n int64
	for id, b := range s.byID {
		if b.UserID == userID {
			delete(s.byID, id)
			delete(s.guests, id)
			n++
		}
	}
	return n, nil
}

type fakeLinkStore struct {
	byToken map[string]*model.PaymentLink
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{byToken: make(map[string]*model.PaymentLink)}
}

func (s *fakeLinkStore) CreateTx(_ context.Context, _ *sql.Tx, l *model.PaymentLink) error {
	l.ID = uint64(len(s.byToken) + 1)
	s.byToken[l.Token] = l
	return nil
}

func (s *fakeLinkStore) TokenExists(_ context.Context, token string) (bool, error) {
	_, ok := s.byToken[token]
	return ok, nil
}

func (s *fakeLinkStore) GetByToken(_ context.Context, token string) (*model.PaymentLink, error) {
	l, ok := s.byToken[token]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return l, nil
}

type fakePaymentStore struct {
	records []*model.PaymentRecord
}

func (s *fakePaymentStore) CreateTx(_ context.Context, _ *sql.Tx, rec *model.PaymentRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *fakePaymentStore) TransactionExistsTx(_ context.Context, _ *sql.Tx, transactionID string) (bool, error) {
	for _, r := range s.records {
		if r.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoomStore struct {
	rooms map[uint64]*model.Room
}

func (s *fakeRoomStore) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return r, nil
}

type fakeUserStore struct {
	users map[uint64]*model.User
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// recordingNotifier captures notifications instead of publishing them.
type recordingNotifier struct {
	created   []string // booking references
	cancelled []string
	results   []string // "REF:ok" / "REF:fail"
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *model.Booking, _, _ string) error {
	n.created = append(n.created, b.Reference)
	return nil
}

func (n *recordingNotifier) BookingCancelled(_ context.Context, b *model.Booking, _ string) error {
	n.cancelled = append(n.cancelled, b.Reference)
	return nil
}

func (n *recordingNotifier) PaymentResult(_ context.Context, b *model.Booking, _ string, succeeded bool, _ string) error {
	suffix := ":fail"
	if succeeded {
		suffix = ":ok"
	}
	n.results = append(n.results, b.Reference+suffix)
	return nil
}
