package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Reconciliation outcomes returned by ApplyResult, and the classified
// statuses reported by CheckStatus.
const (
	OutcomeSuccess     = "SUCCESS"
	OutcomeFailure     = "FAILURE"
	OutcomeAlreadyPaid = "ALREADY_PAID"
	OutcomeDuplicate   = "DUPLICATE"

	StatusOK               = "OK"
	StatusAlreadyPaid      = "ALREADY_PAID"
	StatusAlreadyRefunded  = "ALREADY_REFUNDED"
	StatusAlreadyCancelled = "ALREADY_CANCELLED"
)

// PaymentService owns the payment-link protocol and gateway result
// reconciliation.  Gateway adapters call Validate before every
// gateway-facing operation and deliver capture results through
// ApplyResult; the service is agnostic to which gateway produced them.
type PaymentService struct {
	run      database.Runner
	bookings BookingStore
	links    LinkStore
	payments PaymentStore
	ledger   Ledger
	users    UserStore
	notify   Notifier
	now      func() time.Time
}

// NewPaymentService constructs a PaymentService.  All dependencies must
// be non-nil.
func NewPaymentService(run database.Runner, bookings BookingStore, links LinkStore, payments PaymentStore, ledger Ledger, users UserStore, notify Notifier) *PaymentService {
	if run == nil || bookings == nil || links == nil || payments == nil || ledger == nil || users == nil || notify == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{
		run:      run,
		bookings: bookings,
		links:    links,
		payments: payments,
		ledger:   ledger,
		users:    users,
		notify:   notify,
		now:      time.Now,
	}
}

// Validate checks a payment token without consuming it, so a payer may
// retry within the expiry window.  It fails with
// repository.ErrLinkNotFound for unknown tokens and with
// InvalidStateError for expired links and for bookings that can no
// longer be paid.  Returns the booking the token is bound to.
func (s *PaymentService) Validate(ctx context.Context, token string) (*model.Booking, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.now()) {
		return nil, invalidState("payment link has expired")
	}
	b, err := s.bookings.GetByID(ctx, link.BookingID)
	if err != nil {
		return nil, err
	}
	switch b.PaymentStatus {
	case model.PaymentPaid:
		return nil, invalidState("this booking has already been paid")
	case model.PaymentCancelled:
		return nil, invalidState("this booking has been cancelled")
	}
	return b, nil
}

// StatusReport is the answer to a payment-page status poll.
type StatusReport struct {
	Status           string
	BookingReference string
	AmountCents      int64
	Message          string
}

// CheckStatus classifies the state of the booking behind a payment
// token.  If the link has expired while the booking is still PENDING,
// the booking is cancelled and its nights freed as a side effect before
// the expiry error is reported; the sweeper would do the same on its
// next run, this is just the lazy path.
func (s *PaymentService) CheckStatus(ctx context.Context, token string) (*StatusReport, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	b, err := s.bookingByLink(ctx, link)
	if err != nil {
		return nil, err
	}

	if link.Expired(s.now()) && b.PaymentStatus == model.PaymentPending {
		if err := s.cancelExpired(ctx, b.ID); err != nil {
			return nil, err
		}
		return nil, invalidState("payment link has expired; the booking has been cancelled")
	}

	switch b.PaymentStatus {
	case model.PaymentPaid:
		return &StatusReport{Status: StatusAlreadyPaid, BookingReference: b.Reference,
			Message: "this booking has already been paid"}, nil
	case model.PaymentRefunded:
		return &StatusReport{Status: StatusAlreadyRefunded, BookingReference: b.Reference,
			Message: "this booking has already been refunded"}, nil
	case model.PaymentCancelled:
		return &StatusReport{Status: StatusAlreadyCancelled, BookingReference: b.Reference,
			Message: "this booking has already been cancelled"}, nil
	}
	return &StatusReport{
		Status:           StatusOK,
		BookingReference: b.Reference,
		AmountCents:      b.TotalCents,
		Message:          "booking is valid and ready for payment",
	}, nil
}

// Outcome is the classified result of applying a gateway capture.
type Outcome struct {
	Status           string
	BookingReference string
}

// ApplyResult applies one gateway capture result to a booking.  It is
// idempotent: a booking already PAID reports ALREADY_PAID, and a
// transaction id seen before reports DUPLICATE without writing a second
// audit record.  The audit record and the booking mutation commit in one
// transaction.  A booking found CANCELLED (e.g. the sweeper won the
// race) is a terminal conflict: a successful capture is never applied
// over it, and a late failure report never overwrites a terminal
// payment status such as CANCELLED or REFUNDED.
func (s *PaymentService) ApplyResult(ctx context.Context, gateway model.PaymentGateway, reference, transactionID string, amountCents int64, succeeded bool, failureReason string) (*Outcome, error) {
	var (
		outcome  *Outcome
		notified *model.Booking
	)
	err := s.run.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByReferenceForUpdateTx(ctx, tx, reference)
		if err != nil {
			return err
		}
		if b.PaymentStatus == model.PaymentPaid {
			outcome = &Outcome{Status: OutcomeAlreadyPaid, BookingReference: reference}
			return nil
		}
		dup, err := s.payments.TransactionExistsTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if dup {
			outcome = &Outcome{Status: OutcomeDuplicate, BookingReference: reference}
			return nil
		}
		if succeeded && b.Status == model.StatusCancelled {
			return invalidState("booking has been cancelled; the capture cannot be applied")
		}
		if !succeeded && (b.Status == model.StatusCancelled || model.TerminalPaymentStatus(b.PaymentStatus)) {
			// A settled booking keeps its terminal payment status; a late
			// failure report must not overwrite CANCELLED or REFUNDED.
			return invalidState("booking has been settled; the failure cannot be applied")
		}

		rec := &model.PaymentRecord{
			Gateway:          gateway,
			BookingReference: reference,
			TransactionID:    transactionID,
			AmountCents:      amountCents,
			CreatedAt:        s.now().UTC(),
		}
		if succeeded {
			rec.Status = model.PaymentPaid
			b.PaymentStatus = model.PaymentPaid
			outcome = &Outcome{Status: OutcomeSuccess, BookingReference: reference}
		} else {
			rec.Status = model.PaymentFailed
			if failureReason != "" {
				rec.FailureReason = &failureReason
			}
			b.PaymentStatus = model.PaymentFailed
			outcome = &Outcome{Status: OutcomeFailure, BookingReference: reference}
		}
		if err := s.payments.CreateTx(ctx, tx, rec); err != nil {
			return err
		}
		if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, b.Status, b.PaymentStatus); err != nil {
			return err
		}
		notified = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notified != nil {
		s.notifyResult(ctx, notified, succeeded, failureReason)
	}
	return outcome, nil
}

// ApplyResultByToken resolves a payment token to its booking and
// applies the capture result.  Link expiry is deliberately not checked
// here: a capture that completed at the gateway is applied even if the
// link lapsed mid-flight, and the cancelled-booking guard in
// ApplyResult settles the race with the sweeper.
func (s *PaymentService) ApplyResultByToken(ctx context.Context, token string, gateway model.PaymentGateway, transactionID string, amountCents int64, succeeded bool, failureReason string) (*Outcome, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, link.BookingID)
	if err != nil {
		return nil, err
	}
	return s.ApplyResult(ctx, gateway, b.Reference, transactionID, amountCents, succeeded, failureReason)
}

// bookingByLink loads the booking a link points at.  Link rows always
// reference an existing booking, so a miss here is a store fault, not a
// user error.
func (s *PaymentService) bookingByLink(ctx context.Context, link *model.PaymentLink) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, link.BookingID)
}

// cancelExpired cancels a PENDING booking whose link lapsed, releasing
// its ledger hold in the same transaction.
func (s *PaymentService) cancelExpired(ctx context.Context, bookingID uint64) error {
	return s.run.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus != model.PaymentPending {
			// Someone else settled the booking between our read and this
			// transaction; leave it alone.
			return nil
		}
		if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
			return err
		}
		return s.bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusCancelled, model.PaymentCancelled)
	})
}

func (s *PaymentService) notifyResult(ctx context.Context, b *model.Booking, succeeded bool, reason string) {
	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		log.Printf("booking %s: lookup user %d for notification failed: %v", b.Reference, b.UserID, err)
		return
	}
	if err := s.notify.PaymentResult(ctx, b, user.Email, succeeded, reason); err != nil {
		log.Printf("booking %s: payment result notification failed: %v", b.Reference, err)
	}
}
