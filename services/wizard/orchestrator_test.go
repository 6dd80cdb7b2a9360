package wizard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"consultly/models"
	"consultly/services/bookingapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func bookableDraft() models.BookingDraft {
	draft := models.BookingDraft{}.
		WithConsultant(models.ConsultantSummary{ID: "con-1", Name: "Ada Keller"}).
		WithSchedule("2026-09-10", "10:00").
		WithContact(validContact(), true)
	return draft.WithBilling(validBilling())
}

func TestCreateBookingSetsDurableMarker(t *testing.T) {
	client := &fakeBookingClient{bookingID: "BK-1"}
	orch := NewOrchestrator(client, zap.NewNop())

	draft, res := orch.CreateBooking(context.Background(), bookableDraft())
	require.True(t, res.Ok)
	assert.Equal(t, CallCreateBooking, res.Call)
	assert.Equal(t, "BK-1", draft.BookingID)
	assert.Equal(t, 1, client.createCalls)
}

func TestCreateBookingNeverRepeatsOnceMarked(t *testing.T) {
	client := &fakeBookingClient{bookingID: "BK-2"}
	orch := NewOrchestrator(client, zap.NewNop())

	draft := bookableDraft().WithBookingID("BK-1")
	draft, res := orch.CreateBooking(context.Background(), draft)
	require.True(t, res.Ok)
	assert.Equal(t, "already_created", res.Code)
	assert.Equal(t, "BK-1", draft.BookingID)
	assert.Zero(t, client.createCalls)
}

func TestCreateBookingIncompleteDraft(t *testing.T) {
	client := &fakeBookingClient{}
	orch := NewOrchestrator(client, zap.NewNop())

	_, res := orch.CreateBooking(context.Background(), models.BookingDraft{})
	require.False(t, res.Ok)
	assert.Equal(t, "incomplete_draft", res.Code)
	assert.Zero(t, client.createCalls)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	client := &fakeBookingClient{
		createErr: &bookingapi.APIError{StatusCode: http.StatusConflict, Code: "slot_unavailable"},
	}
	orch := NewOrchestrator(client, zap.NewNop())

	draft, res := orch.CreateBooking(context.Background(), bookableDraft())
	require.False(t, res.Ok)
	assert.Equal(t, "slot_unavailable", res.Code)
	assert.Empty(t, draft.BookingID)
}

func TestUpdateBillingRequiresBooking(t *testing.T) {
	client := &fakeBookingClient{}
	orch := NewOrchestrator(client, zap.NewNop())

	_, res := orch.UpdateBilling(context.Background(), bookableDraft())
	require.False(t, res.Ok)
	assert.Equal(t, "booking_missing", res.Code)
	assert.Zero(t, client.billingCall)
}

func TestBillingRetryReachesOnlyTheFailedCall(t *testing.T) {
	client := &fakeBookingClient{bookingID: "BK-1", billingErr: errors.New("timeout")}
	orch := NewOrchestrator(client, zap.NewNop())
	ctx := context.Background()

	draft, res := orch.CreateBooking(ctx, bookableDraft())
	require.True(t, res.Ok)

	_, res = orch.UpdateBilling(ctx, draft)
	require.False(t, res.Ok)
	assert.Equal(t, "billing_failed", res.Code)

	// The user retries: create is skipped, only billing runs again.
	client.billingErr = nil
	draft, res = orch.CreateBooking(ctx, draft)
	require.True(t, res.Ok)
	assert.Equal(t, "already_created", res.Code)

	_, res = orch.UpdateBilling(ctx, draft)
	require.True(t, res.Ok)
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 2, client.billingCall)
}

func TestSubmitPaymentRecordsConfirmation(t *testing.T) {
	client := &fakeBookingClient{bookingID: "BK-1"}
	orch := NewOrchestrator(client, zap.NewNop())

	draft := bookableDraft().WithBookingID("BK-1")
	draft, res := orch.SubmitPayment(context.Background(), draft, "card")
	require.True(t, res.Ok)
	require.NotNil(t, draft.Payment)
	assert.Equal(t, "card", draft.Payment.Method)
	assert.Equal(t, "stripe", draft.Payment.Provider)
	assert.Equal(t, "PAY-001", draft.Payment.Confirmation)
}

func TestSubmitPaymentRejectsUnknownMethod(t *testing.T) {
	client := &fakeBookingClient{}
	orch := NewOrchestrator(client, zap.NewNop())

	draft := bookableDraft().WithBookingID("BK-1")
	_, res := orch.SubmitPayment(context.Background(), draft, "crypto")
	require.False(t, res.Ok)
	assert.Equal(t, "invalid_method", res.Code)
	assert.Zero(t, client.paymentCall)
}

func TestSubmitPaymentRequiresBooking(t *testing.T) {
	client := &fakeBookingClient{}
	orch := NewOrchestrator(client, zap.NewNop())

	_, res := orch.SubmitPayment(context.Background(), bookableDraft(), "card")
	require.False(t, res.Ok)
	assert.Equal(t, "booking_missing", res.Code)
	assert.Zero(t, client.paymentCall)
}

func TestPaymentFailureLeavesDraftUntouched(t *testing.T) {
	client := &fakeBookingClient{paymentErr: errors.New("gateway down")}
	orch := NewOrchestrator(client, zap.NewNop())

	draft := bookableDraft().WithBookingID("BK-1")
	after, res := orch.SubmitPayment(context.Background(), draft, "card")
	require.False(t, res.Ok)
	assert.Equal(t, "payment_failed", res.Code)
	assert.Nil(t, after.Payment)
	assert.Equal(t, "BK-1", after.BookingID)
}
