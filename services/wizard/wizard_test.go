package wizard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"consultly/services/bookingapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPathThroughAllSteps(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)
	require.Equal(t, StepPayment, sess.Step)
	require.Equal(t, "con-1", sess.Draft.Consultant.ID)
	require.Equal(t, "10:00", sess.Draft.SelectedSlot)

	sess, res, err := env.svc.CreateBooking(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.Equal(t, "BK-1", sess.Draft.BookingID)

	sess, res, err = env.svc.UpdateBilling(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.True(t, sess.BillingSynced)

	sess, res, err = env.svc.SubmitPayment(ctx, sess.SessionID, "card")
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.Equal(t, StepConfirmation, sess.Step)
	require.NotNil(t, sess.Draft.Payment)
	assert.Equal(t, "stripe", sess.Draft.Payment.Provider)

	conf := sess.Confirmation()
	require.NotNil(t, conf)
	assert.Equal(t, "BK-1", conf.BookingID)
	assert.Equal(t, "con-1", conf.ConsultantID)
	assert.Equal(t, "10:00", conf.Slot)
	assert.Equal(t, "card", conf.PaymentMethod)
	assert.Equal(t, "PAY-001", conf.Confirmation)

	// Completion clears the saved slot and schedules the reminder.
	exists, err := env.drafts.Exists(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, exists)
	require.Len(t, env.scheduler.payloads, 1)
	assert.Equal(t, "BK-1", env.scheduler.payloads[0].BookingID)
	assert.Equal(t, "jonas.berg@example.com", env.scheduler.payloads[0].Email)
}

func TestStepSubmissionsGuardTheCurrentStep(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)

	// Contact belongs to step three; the wizard is at step one.
	_, err = env.svc.SubmitContact(ctx, sess.SessionID, validContact(), true)
	var werr *WizardError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "step_mismatch", werr.Code)
}

func TestValidationFailureLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)
	_, err = env.svc.FetchAvailability(ctx, sess.SessionID, "2026-09-10", "UTC")
	require.NoError(t, err)

	// Slot outside the fetched snapshot.
	_, err = env.svc.SelectSchedule(ctx, sess.SessionID, "2026-09-10", "23:00")
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "slot")

	stored, err := env.svc.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StepTimeSlotSelection, stored.Step)
	assert.Empty(t, stored.Draft.SelectedSlot)
}

func TestSelectScheduleRequiresFetchedAvailability(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)

	_, err = env.svc.SelectSchedule(ctx, sess.SessionID, "2026-09-10", "10:00")
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "slot")
}

func TestConsultantChangeInvalidatesSlotKeepsContact(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)

	// Walk back to the consultant step without losing entered data.
	for i := 0; i < 4; i++ {
		var err error
		sess, err = env.svc.Back(ctx, sess.SessionID)
		require.NoError(t, err)
	}
	require.Equal(t, StepConsultantSelection, sess.Step)

	sess, err := env.svc.SelectConsultant(ctx, sess.SessionID, "con-2")
	require.NoError(t, err)
	assert.Equal(t, "con-2", sess.Draft.Consultant.ID)
	assert.Empty(t, sess.Draft.SelectedDate)
	assert.Empty(t, sess.Draft.SelectedSlot)
	assert.Nil(t, sess.Availability)
	assert.Equal(t, "jonas.berg@example.com", sess.Draft.Contact.Email)
	assert.Equal(t, "Berlin", sess.Draft.Billing.City)
}

func TestReselectingSameConsultantKeepsSchedule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)
	for i := 0; i < 4; i++ {
		var err error
		sess, err = env.svc.Back(ctx, sess.SessionID)
		require.NoError(t, err)
	}

	sess, err := env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-10", sess.Draft.SelectedDate)
	assert.Equal(t, "10:00", sess.Draft.SelectedSlot)
}

func TestSelectConsultantRejectsUnknownAndInactive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)

	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-999")
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "consultant")

	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-3")
	verr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "consultant")
}

func TestAvailabilityOutageIsAFetchError(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)

	env.avail.err = errors.New("upstream timeout")
	_, err = env.svc.FetchAvailability(ctx, sess.SessionID, "2026-09-10", "UTC")
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "availability", ferr.Source)

	// The failed fetch left no snapshot behind.
	stored, err := env.svc.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Nil(t, stored.Availability)
}

func TestDuplicateBookingClickIsRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)

	// Simulate a call already holding the in-flight lock.
	held, err := env.sessions.TryLock(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, held)

	_, _, err = env.svc.CreateBooking(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrCallInFlight)

	require.NoError(t, env.sessions.Unlock(ctx, sess.SessionID))
	_, res, err := env.svc.CreateBooking(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Ok)
}

func TestSlotTakenReturnsToTimeSlotStep(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)
	env.booking.createErr = &bookingapi.APIError{StatusCode: http.StatusConflict, Code: "slot_unavailable"}

	sess, res, err := env.svc.CreateBooking(ctx, sess.SessionID)
	require.NoError(t, err)
	require.False(t, res.Ok)
	assert.Equal(t, "slot_unavailable", res.Code)
	assert.Equal(t, StepTimeSlotSelection, sess.Step)
	assert.Nil(t, sess.Availability)
	assert.Empty(t, sess.Draft.SelectedSlot)
	assert.Equal(t, "2026-09-10", sess.Draft.SelectedDate)
}

func TestSlotAndContactLockedOnceBookingCreated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)
	sess, res, err := env.svc.CreateBooking(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, res.Ok)
	require.Equal(t, "BK-1", sess.Draft.BookingID)

	// Walk back to the contact step and try to edit what the booking was
	// created with.
	for i := 0; i < 2; i++ {
		sess, err = env.svc.Back(ctx, sess.SessionID)
		require.NoError(t, err)
	}
	require.Equal(t, StepContactInfo, sess.Step)

	altered := validContact()
	altered.Email = "someone.else@example.com"
	_, err = env.svc.SubmitContact(ctx, sess.SessionID, altered, true)
	var werr *WizardError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "booking_exists", werr.Code)

	// Same for the time slot.
	sess, err = env.svc.Back(ctx, sess.SessionID)
	require.NoError(t, err)
	require.Equal(t, StepTimeSlotSelection, sess.Step)
	_, err = env.svc.FetchAvailability(ctx, sess.SessionID, "2026-09-10", "UTC")
	require.NoError(t, err)
	_, err = env.svc.SelectSchedule(ctx, sess.SessionID, "2026-09-10", "14:00")
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "booking_exists", werr.Code)

	// The draft still matches what was booked server-side.
	stored, err := env.svc.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.Draft.SelectedSlot)
	assert.Equal(t, "jonas.berg@example.com", stored.Draft.Contact.Email)
	assert.Equal(t, 1, env.booking.createCalls)
}

func TestPaymentRequiresSyncedBilling(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := advanceToPayment(env, ctx)
	_, res, err := env.svc.CreateBooking(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, res.Ok)

	_, res, err = env.svc.SubmitPayment(ctx, sess.SessionID, "card")
	require.NoError(t, err)
	require.False(t, res.Ok)
	assert.Equal(t, "billing_not_synced", res.Code)
	assert.Zero(t, env.booking.paymentCall)
}

func TestOrchestratorCallsRequirePaymentStep(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)

	_, _, err = env.svc.CreateBooking(ctx, sess.SessionID)
	var werr *WizardError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "step_mismatch", werr.Code)
}

func TestSaveAndExitThenResume(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)
	_, err = env.svc.FetchAvailability(ctx, sess.SessionID, "2026-09-10", "UTC")
	require.NoError(t, err)
	_, err = env.svc.SelectSchedule(ctx, sess.SessionID, "2026-09-10", "11:00")
	require.NoError(t, err)

	_, outcome, err := env.svc.RequestExit(ctx, sess.SessionID)
	require.NoError(t, err)
	require.False(t, outcome.Exited)

	_, outcome, err = env.svc.ResolveExit(ctx, sess.SessionID, ExitSave)
	require.NoError(t, err)
	require.True(t, outcome.Exited)
	require.True(t, outcome.Saved)

	// The exited session is gone.
	_, err = env.svc.Get(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// A new session for the same client resumes where the user left off.
	resumed, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, resumed.Resumed)
	assert.Equal(t, StepContactInfo, resumed.Step)
	assert.Equal(t, "11:00", resumed.Draft.SelectedSlot)

	// A different client sees nothing.
	fresh, err := env.svc.Start(ctx, "client-2")
	require.NoError(t, err)
	assert.False(t, fresh.Resumed)
	assert.Equal(t, FirstStep(), fresh.Step)
}

func TestStartSurvivesDraftStoreOutage(t *testing.T) {
	env := newTestEnv()
	env.drafts.loadErr = errors.New("redis down")
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, sess.Resumed)
	assert.Equal(t, FirstStep(), sess.Step)
}

func TestExitWithoutProgressClosesImmediately(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)

	_, outcome, err := env.svc.RequestExit(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.True(t, outcome.Exited)

	_, err = env.svc.Get(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHasSavedDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	has, err := env.svc.HasSavedDraft(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, has)

	sess, err := env.svc.Start(ctx, "client-1")
	require.NoError(t, err)
	_, err = env.svc.SelectConsultant(ctx, sess.SessionID, "con-1")
	require.NoError(t, err)
	_, _, err = env.svc.RequestExit(ctx, sess.SessionID)
	require.NoError(t, err)
	_, _, err = env.svc.ResolveExit(ctx, sess.SessionID, ExitSave)
	require.NoError(t, err)

	has, err = env.svc.HasSavedDraft(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, has)
}
