package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type sweeperFixture struct {
	sweeper  *Sweeper
	bookings *fakeBookingStore
	ledger   *fakeLedger
}

func newSweeperFixture(t *testing.T) *sweeperFixture {
	t.Helper()
	bookings := newFakeBookingStore()
	ledger := newFakeLedger()
	s := NewSweeper(fakeRunner{}, bookings, ledger, DefaultConfig())
	s.now = func() time.Time { return testClock }
	return &sweeperFixture{sweeper: s, bookings: bookings, ledger: ledger}
}

func (f *sweeperFixture) seed(t *testing.T, ref string, age time.Duration, ps model.PaymentStatus) *model.Booking {
	t.Helper()
	b := f.bookings.add(&model.Booking{
		Reference:     ref,
		UserID:        7,
		CheckIn:       day(7),
		CheckOut:      day(10),
		TotalCents:    30000,
		Status:        model.StatusBooked,
		PaymentStatus: ps,
		CreatedAt:     testClock.Add(-age),
	})
	b.RoomID = b.ID
	require.NoError(t, f.ledger.ReserveTx(context.Background(), nil, b.RoomID, b.ID, b.CheckIn, b.CheckOut))
	return b
}

func TestSweeperReclaimsExpiredPending(t *testing.T) {
	f := newSweeperFixture(t)
	stale := f.seed(t, "REFSTALE01", 40*time.Minute, model.PaymentPending)
	fresh := f.seed(t, "REFFRESH01", 5*time.Minute, model.PaymentPending)
	paid := f.seed(t, "REFPAID003", 40*time.Minute, model.PaymentPaid)

	n, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Only the stale pending booking is cancelled and released.
	assert.Equal(t, model.StatusCancelled, stale.Status)
	assert.Equal(t, model.PaymentCancelled, stale.PaymentStatus)
	assert.Zero(t, f.ledger.bookedNights(stale.RoomID))

	assert.Equal(t, model.PaymentPending, fresh.PaymentStatus)
	assert.Equal(t, 3, f.ledger.bookedNights(fresh.RoomID))
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, 3, f.ledger.bookedNights(paid.RoomID))
}

func TestSweeperIsIdempotent(t *testing.T) {
	f := newSweeperFixture(t)
	f.seed(t, "REFSTALE02", time.Hour, model.PaymentPending)

	n, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A second run finds nothing left to reclaim.
	n, err = f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweeperSkipsBookingsSettledMidSweep(t *testing.T) {
	f := newSweeperFixture(t)
	b := f.seed(t, "REFSTALE03", time.Hour, model.PaymentPending)

	// Simulate a payment landing between the scan and the per-booking
	// transaction: the re-read under lock must leave the booking alone.
	f.sweeper.bookings = &settlingStore{fakeBookingStore: f.bookings, settle: b}

	n, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n) // reclaim ran, but applied nothing
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, model.StatusBooked, b.Status)
	assert.Equal(t, 3, f.ledger.bookedNights(b.RoomID))
}

// settlingStore marks one booking PAID the moment it is re-read under
// lock, mimicking a concurrent capture winning the race.
type settlingStore struct {
	*fakeBookingStore
	settle *model.Booking
}

func (s *settlingStore) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := s.fakeBookingStore.GetByIDForUpdateTx(ctx, tx, id)
	if err == nil && b == s.settle {
		b.PaymentStatus = model.PaymentPaid
	}
	return b, nil
}
