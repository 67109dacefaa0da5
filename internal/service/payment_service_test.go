package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

type paymentFixture struct {
	svc      *PaymentService
	bookings *fakeBookingStore
	links    *fakeLinkStore
	payments *fakePaymentStore
	ledger   *fakeLedger
	notify   *recordingNotifier
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	bookings := newFakeBookingStore()
	links := newFakeLinkStore()
	payments := &fakePaymentStore{}
	ledger := newFakeLedger()
	notify := &recordingNotifier{}
	users := &fakeUserStore{users: map[uint64]*model.User{
		7: {ID: 7, Email: "guest@example.com"},
	}}
	svc := NewPaymentService(fakeRunner{}, bookings, links, payments, ledger, users, notify)
	svc.now = func() time.Time { return testClock }
	return &paymentFixture{svc: svc, bookings: bookings, links: links, payments: payments, ledger: ledger, notify: notify}
}

// seedBooking plants a booking with a live ledger hold and a payment
// link expiring at the given instant.  The token is "tok-" + reference.
// Each booking gets its own room so seeds never collide in the ledger.
func (f *paymentFixture) seedBooking(t *testing.T, ref string, expiresAt time.Time) *model.Booking {
	t.Helper()
	b := f.bookings.add(&model.Booking{
		Reference:          ref,
		UserID:             7,
		CheckIn:            day(7),
		CheckOut:           day(10),
		PricePerNightCents: 10000,
		TotalCents:         30000,
		Status:             model.StatusBooked,
		PaymentStatus:      model.PaymentPending,
		CreatedAt:          testClock,
	})
	b.RoomID = b.ID
	require.NoError(t, f.ledger.ReserveTx(context.Background(), nil, b.RoomID, b.ID, b.CheckIn, b.CheckOut))
	f.links.byToken["tok-"+ref] = &model.PaymentLink{
		ID: b.ID, Token: "tok-" + ref, BookingID: b.ID,
		ExpiresAt: expiresAt, CreatedAt: testClock,
	}
	return b
}

func TestValidateLiveLink(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedBooking(t, "REFAAAA001", testClock.Add(5*time.Minute))

	b, err := f.svc.Validate(context.Background(), "tok-REFAAAA001")
	require.NoError(t, err)
	assert.Equal(t, "REFAAAA001", b.Reference)
	assert.Equal(t, int64(30000), b.TotalCents)

	// Validation does not consume the link.
	_, err = f.svc.Validate(context.Background(), "tok-REFAAAA001")
	assert.NoError(t, err)
}

func TestValidateRejections(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Validate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	f.seedBooking(t, "REFEXPIRED", testClock.Add(-time.Minute))
	_, err = f.svc.Validate(context.Background(), "tok-REFEXPIRED")
	var inv *InvalidStateError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "expired")

	paid := f.seedBooking(t, "REFPAID001", testClock.Add(5*time.Minute))
	paid.PaymentStatus = model.PaymentPaid
	_, err = f.svc.Validate(context.Background(), "tok-REFPAID001")
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "already been paid")

	cancelled := f.seedBooking(t, "REFCANC001", testClock.Add(5*time.Minute))
	cancelled.PaymentStatus = model.PaymentCancelled
	_, err = f.svc.Validate(context.Background(), "tok-REFCANC001")
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "cancelled")
}

func TestCheckStatusReadyForPayment(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedBooking(t, "REFOK00001", testClock.Add(5*time.Minute))

	rep, err := f.svc.CheckStatus(context.Background(), "tok-REFOK00001")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, rep.Status)
	assert.Equal(t, "REFOK00001", rep.BookingReference)
	assert.Equal(t, int64(30000), rep.AmountCents)
}

func TestCheckStatusExpiredCancelsBooking(t *testing.T) {
	f := newPaymentFixture(t)
	b := f.seedBooking(t, "REFLATE001", testClock.Add(-time.Minute))
	require.Equal(t, 3, f.ledger.bookedNights(1))

	_, err := f.svc.CheckStatus(context.Background(), "tok-REFLATE001")
	var inv *InvalidStateError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "expired")

	// The lapsed booking is cancelled and its nights freed.
	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.Equal(t, model.PaymentCancelled, b.PaymentStatus)
	assert.Zero(t, f.ledger.bookedNights(1))
}

func TestCheckStatusClassifiesSettledBookings(t *testing.T) {
	f := newPaymentFixture(t)
	cases := []struct {
		ref    string
		ps     model.PaymentStatus
		status string
	}{
		{"REFPAID002", model.PaymentPaid, StatusAlreadyPaid},
		{"REFREFUND1", model.PaymentRefunded, StatusAlreadyRefunded},
		{"REFCANC002", model.PaymentCancelled, StatusAlreadyCancelled},
	}
	for _, tc := range cases {
		b := f.seedBooking(t, tc.ref, testClock.Add(5*time.Minute))
		b.PaymentStatus = tc.ps
		rep, err := f.svc.CheckStatus(context.Background(), "tok-"+tc.ref)
		require.NoError(t, err, tc.ref)
		assert.Equal(t, tc.status, rep.Status, tc.ref)
	}
}

func TestApplyResultSuccess(t *testing.T) {
	f := newPaymentFixture(t)
	b := f.seedBooking(t, "REFPAY0001", testClock.Add(5*time.Minute))

	out, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0001", "txn-1", 30000, true, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, out.Status)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, model.StatusBooked, b.Status)
	require.Len(t, f.payments.records, 1)
	assert.Equal(t, model.PaymentPaid, f.payments.records[0].Status)
	assert.Equal(t, []string{"REFPAY0001:ok"}, f.notify.results)
}

func TestApplyResultFailure(t *testing.T) {
	f := newPaymentFixture(t)
	b := f.seedBooking(t, "REFPAY0002", testClock.Add(5*time.Minute))

	out, err := f.svc.ApplyResult(context.Background(), model.GatewayPaypal,
		"REFPAY0002", "txn-2", 30000, false, "card declined")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, out.Status)
	assert.Equal(t, model.PaymentFailed, b.PaymentStatus)
	require.Len(t, f.payments.records, 1)
	require.NotNil(t, f.payments.records[0].FailureReason)
	assert.Equal(t, "card declined", *f.payments.records[0].FailureReason)
	assert.Equal(t, []string{"REFPAY0002:fail"}, f.notify.results)
}

func TestApplyResultIdempotency(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedBooking(t, "REFPAY0003", testClock.Add(5*time.Minute))

	_, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0003", "txn-3", 30000, true, "")
	require.NoError(t, err)

	// A paid booking short-circuits regardless of transaction id.
	out, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0003", "txn-4", 30000, true, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyPaid, out.Status)

	// A replayed transaction id on an unpaid booking reads as DUPLICATE
	// and writes no second audit record.
	b2 := f.seedBooking(t, "REFPAY0004", testClock.Add(5*time.Minute))
	_, err = f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0004", "txn-5", 30000, false, "card declined")
	require.NoError(t, err)
	out, err = f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0004", "txn-5", 30000, false, "card declined")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, out.Status)
	assert.Equal(t, model.PaymentFailed, b2.PaymentStatus)
	assert.Len(t, f.payments.records, 2)
}

func TestApplyResultCancelledBookingIsTerminal(t *testing.T) {
	f := newPaymentFixture(t)
	b := f.seedBooking(t, "REFPAY0005", testClock.Add(5*time.Minute))
	b.Status = model.StatusCancelled
	b.PaymentStatus = model.PaymentCancelled

	_, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0005", "txn-6", 30000, true, "")
	var inv *InvalidStateError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, model.PaymentCancelled, b.PaymentStatus)
	assert.Empty(t, f.payments.records)
}

func TestApplyResultFailureKeepsTerminalStatus(t *testing.T) {
	f := newPaymentFixture(t)

	// A late failure report must not overwrite a sweeper-cancelled
	// booking's CANCELLED payment status.
	cancelled := f.seedBooking(t, "REFPAY0015", testClock.Add(5*time.Minute))
	cancelled.Status = model.StatusCancelled
	cancelled.PaymentStatus = model.PaymentCancelled

	_, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0015", "txn-20", 30000, false, "card_declined")
	var inv *InvalidStateError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, model.PaymentCancelled, cancelled.PaymentStatus)
	assert.Empty(t, f.payments.records)

	// Same for a refunded booking.
	refunded := f.seedBooking(t, "REFPAY0016", testClock.Add(5*time.Minute))
	refunded.PaymentStatus = model.PaymentRefunded

	_, err = f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"REFPAY0016", "txn-21", 30000, false, "card_declined")
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, model.PaymentRefunded, refunded.PaymentStatus)
	assert.Empty(t, f.payments.records)
}

func TestApplyResultByToken(t *testing.T) {
	f := newPaymentFixture(t)
	b := f.seedBooking(t, "REFPAY0006", testClock.Add(5*time.Minute))

	out, err := f.svc.ApplyResultByToken(context.Background(), "tok-REFPAY0006",
		model.GatewayStripe, "txn-8", 30000, true, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, out.Status)
	assert.Equal(t, "REFPAY0006", out.BookingReference)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)

	// An expired link does not block a capture that already completed
	// at the gateway.
	b2 := f.seedBooking(t, "REFPAY0007", testClock.Add(-time.Minute))
	out, err = f.svc.ApplyResultByToken(context.Background(), "tok-REFPAY0007",
		model.GatewayStripe, "txn-9", 30000, true, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, out.Status)
	assert.Equal(t, model.PaymentPaid, b2.PaymentStatus)

	_, err = f.svc.ApplyResultByToken(context.Background(), "no-such-token",
		model.GatewayStripe, "txn-10", 1000, true, "")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestApplyResultUnknownReference(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.ApplyResult(context.Background(), model.GatewayStripe,
		"NOSUCHREF1", "txn-7", 1000, true, "")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}
