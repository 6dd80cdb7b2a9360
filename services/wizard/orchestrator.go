package wizard

import (
	"context"

	"consultly/models"
	"consultly/services/bookingapi"

	"go.uber.org/zap"
)

// Call names one of the three ordered booking platform operations.
type Call string

const (
	CallCreateBooking Call = "create_booking"
	CallUpdateBilling Call = "update_billing"
	CallSubmitPayment Call = "submit_payment"
)

// CallResult is the tagged outcome of one orchestrator call. Calls report
// failure through the result instead of panicking or throwing, so the caller's
// retry-by-reinvocation is an ordinary, testable code path.
type CallResult struct {
	Call    Call   `json:"call"`
	Ok      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func okResult(call Call, code string) CallResult {
	return CallResult{Call: call, Ok: true, Code: code}
}

func failResult(call Call, code, message string, err error) CallResult {
	return CallResult{Call: call, Ok: false, Code: code, Message: message, Err: err}
}

// Orchestrator executes the three dependent booking platform calls in strict
// order: create booking → update billing → submit payment. Each call is a
// single round trip with no automatic retry; payment actions must never be
// silently repeated, so retries are always user-initiated re-invocations.
//
// The draft's BookingID is the durable marker gating the sequence: once set it
// is never rolled back, and CreateBooking refuses to issue a second create for
// the same draft.
type Orchestrator struct {
	client bookingapi.Client
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator over the booking platform client.
func NewOrchestrator(client bookingapi.Client, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{client: client, logger: logger}
}

// CreateBooking issues the create-booking call. If the draft already carries a
// BookingID the booking exists server-side and the call is skipped: the flow
// continues from billing.
func (o *Orchestrator) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.BookingDraft, CallResult) {
	if draft.BookingID != "" {
		return draft, okResult(CallCreateBooking, "already_created")
	}
	if draft.Consultant == nil || draft.SelectedDate == "" || draft.SelectedSlot == "" {
		return draft, failResult(CallCreateBooking, "incomplete_draft",
			"consultant and time slot must be selected before booking", nil)
	}

	bookingID, err := o.client.CreateBooking(ctx, bookingapi.CreateBookingRequest{
		ConsultantID:  draft.Consultant.ID,
		Date:          draft.SelectedDate,
		Slot:          draft.SelectedSlot,
		Contact:       draft.Contact,
		TermsAccepted: draft.TermsAccepted,
	})
	if err != nil {
		// Nothing durable happened; the step is simply re-offered.
		if bookingapi.IsSlotUnavailable(err) {
			o.logger.Warn("create booking rejected, slot taken",
				zap.String("consultantID", draft.Consultant.ID),
				zap.String("date", draft.SelectedDate),
				zap.String("slot", draft.SelectedSlot))
			return draft, failResult(CallCreateBooking, "slot_unavailable",
				"the selected time slot is no longer available", err)
		}
		o.logger.Error("create booking failed", zap.Error(err))
		return draft, failResult(CallCreateBooking, "create_failed",
			"the booking could not be created", err)
	}

	o.logger.Info("booking created", zap.String("bookingID", bookingID))
	return draft.WithBookingID(bookingID), okResult(CallCreateBooking, "")
}

// UpdateBilling issues the billing update for an existing booking. The call is
// idempotent server-side, keyed by BookingID, so re-invoking it after a
// transient failure is safe.
func (o *Orchestrator) UpdateBilling(ctx context.Context, draft models.BookingDraft) (models.BookingDraft, CallResult) {
	if draft.BookingID == "" {
		return draft, failResult(CallUpdateBilling, "booking_missing",
			"the booking must be created before billing can be updated", nil)
	}

	if err := o.client.UpdateBilling(ctx, draft.BookingID, draft.Billing); err != nil {
		o.logger.Error("billing update failed",
			zap.String("bookingID", draft.BookingID), zap.Error(err))
		return draft, failResult(CallUpdateBilling, "billing_failed",
			"billing details could not be saved", err)
	}

	o.logger.Info("billing updated", zap.String("bookingID", draft.BookingID))
	return draft, okResult(CallUpdateBilling, "")
}

// SubmitPayment issues the payment call and records the provider confirmation
// on the draft.
func (o *Orchestrator) SubmitPayment(ctx context.Context, draft models.BookingDraft, method string) (models.BookingDraft, CallResult) {
	if draft.BookingID == "" {
		return draft, failResult(CallSubmitPayment, "booking_missing",
			"the booking must be created before payment can be submitted", nil)
	}
	if errs := ValidatePaymentStep(method); len(errs) > 0 {
		return draft, failResult(CallSubmitPayment, "invalid_method", errs["method"], nil)
	}

	conf, err := o.client.SubmitPayment(ctx, draft.BookingID, bookingapi.PaymentRequest{
		Method:   method,
		Provider: providerFor(method),
	})
	if err != nil {
		o.logger.Error("payment submission failed",
			zap.String("bookingID", draft.BookingID), zap.Error(err))
		return draft, failResult(CallSubmitPayment, "payment_failed",
			"the payment could not be completed", err)
	}

	o.logger.Info("payment confirmed",
		zap.String("bookingID", draft.BookingID),
		zap.String("reference", conf.Reference))
	return draft.WithPayment(models.PaymentData{
		Method:       method,
		Provider:     conf.Provider,
		Confirmation: conf.Reference,
	}), okResult(CallSubmitPayment, "")
}

// providerFor maps a payment method to its processor tag.
func providerFor(method string) string {
	if method == "card" {
		return "stripe"
	}
	return method
}
