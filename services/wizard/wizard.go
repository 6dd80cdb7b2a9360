package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	consultantRepo "consultly/database/repository/consultant"
	"consultly/models"
	"consultly/services/availability"
	"consultly/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultWizardService implements Service.
type DefaultWizardService struct {
	Sessions     SessionStore
	Drafts       DraftStore
	Directory    consultantRepo.ConsultantRepository
	Availability availability.Client
	Orchestrator *Orchestrator
	Exit         *ExitFlow
	Reminders    tasks.Scheduler
	ReminderLead time.Duration
	Logger       *zap.Logger

	now func() time.Time
}

// NewDefaultWizardService wires the wizard shell.
func NewDefaultWizardService(
	sessions SessionStore,
	drafts DraftStore,
	directory consultantRepo.ConsultantRepository,
	avail availability.Client,
	orch *Orchestrator,
	reminders tasks.Scheduler,
	reminderLead time.Duration,
	logger *zap.Logger,
) *DefaultWizardService {
	return &DefaultWizardService{
		Sessions:     sessions,
		Drafts:       drafts,
		Directory:    directory,
		Availability: avail,
		Orchestrator: orch,
		Exit:         NewExitFlow(drafts, logger),
		Reminders:    reminders,
		ReminderLead: reminderLead,
		Logger:       logger,
		now:          time.Now,
	}
}

// Start opens a wizard session. The saved-draft slot is probed exactly once
// here; a fresh record rehydrates both the draft and the step position, and
// the Resumed flag drives the restored-data notice. A failed load is treated
// as "no draft found" — persistence problems never block a new booking.
func (s *DefaultWizardService) Start(ctx context.Context, clientKey string) (*Session, error) {
	now := s.now()
	sess := &Session{
		SessionID: uuid.New().String(),
		ClientKey: clientKey,
		Step:      FirstStep(),
		ExitState: ExitStateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	record, err := s.Drafts.Load(ctx, clientKey)
	if err != nil {
		s.Logger.Warn("failed to load saved draft, starting fresh",
			zap.String("clientKey", clientKey), zap.Error(err))
	}
	if record != nil {
		step, err := ParseStep(record.Step)
		if err == nil {
			sess.Draft = record.Draft
			sess.Step = step
			sess.Resumed = true
			s.Logger.Info("resumed saved booking draft",
				zap.String("sessionID", sess.SessionID),
				zap.String("step", record.Step))
		}
	}

	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to open wizard session: %w", err)
	}
	return sess, nil
}

// Get returns the current session state.
func (s *DefaultWizardService) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.session(ctx, sessionID)
}

// HasSavedDraft probes the saved-draft slot for a client key.
func (s *DefaultWizardService) HasSavedDraft(ctx context.Context, clientKey string) (bool, error) {
	return s.Drafts.Exists(ctx, clientKey)
}

// SelectConsultant applies the consultant selection step. Picking a different
// consultant invalidates the chosen slot and the availability snapshot, but
// not contact or billing data entered earlier.
func (s *DefaultWizardService) SelectConsultant(ctx context.Context, sessionID, consultantID string) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepConsultantSelection {
		return nil, NewStepStateError(StepConsultantSelection, sess.Step)
	}
	if sess.Draft.BookingID != "" {
		return nil, &WizardError{Code: "booking_exists",
			Message: "the consultant cannot be changed once the booking is created"}
	}

	consultant, err := s.Directory.GetByID(consultantID)
	if err != nil {
		if errors.Is(err, consultantRepo.ErrNotFound) {
			return nil, &ValidationError{Fields: map[string]string{
				"consultant": "the selected consultant does not exist",
			}}
		}
		return nil, &FetchError{Source: "consultant directory", Err: err}
	}
	if !consultant.Active {
		return nil, &ValidationError{Fields: map[string]string{
			"consultant": "the selected consultant is not taking bookings",
		}}
	}

	draft := sess.Draft.WithConsultant(consultant.Summary())
	if errs := ValidateConsultantStep(draft); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if sess.Draft.Consultant == nil || sess.Draft.Consultant.ID != consultant.ID {
		sess.Availability = nil
	}
	sess.Draft = draft
	seq := NewSequencer(sess.Step)
	seq.Next()
	sess.Step = seq.Current()
	return sess, s.save(ctx, sess)
}

// FetchAvailability queries the availability collaborator for the selected
// consultant on one date and snapshots the result in the session. The
// snapshot is the only set slot selection is validated against.
func (s *DefaultWizardService) FetchAvailability(ctx context.Context, sessionID, date, timezone string) ([]string, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepTimeSlotSelection {
		return nil, NewStepStateError(StepTimeSlotSelection, sess.Step)
	}
	if sess.Draft.Consultant == nil {
		return nil, &WizardError{Code: "consultant_missing",
			Message: "a consultant must be selected before fetching availability"}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"date": "please select a valid date",
		}}
	}

	slots, err := s.Availability.FetchSlots(ctx, sess.Draft.Consultant.ID, date, timezone)
	if err != nil {
		return nil, &FetchError{Source: "availability", Err: err}
	}

	sess.Availability = &AvailabilitySnapshot{
		ConsultantID: sess.Draft.Consultant.ID,
		Date:         date,
		Slots:        slots,
		FetchedAt:    s.now(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return slots, nil
}

// SelectSchedule applies the time-slot step.
func (s *DefaultWizardService) SelectSchedule(ctx context.Context, sessionID, date, slot string) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepTimeSlotSelection {
		return nil, NewStepStateError(StepTimeSlotSelection, sess.Step)
	}
	if sess.Draft.BookingID != "" {
		return nil, &WizardError{Code: "booking_exists",
			Message: "the time slot cannot be changed once the booking is created"}
	}
	if sess.Draft.Consultant == nil {
		return nil, &WizardError{Code: "consultant_missing",
			Message: "a consultant must be selected before choosing a slot"}
	}

	slots, ok := sess.SlotsFor(sess.Draft.Consultant.ID, date)
	if !ok {
		return nil, &ValidationError{Fields: map[string]string{
			"slot": "availability for this date has not been loaded",
		}}
	}

	draft := sess.Draft.WithSchedule(date, slot)
	if errs := ValidateTimeSlotStep(draft, slots); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	sess.Draft = draft
	seq := NewSequencer(sess.Step)
	seq.Next()
	sess.Step = seq.Current()
	return sess, s.save(ctx, sess)
}

// SubmitContact applies the contact step.
func (s *DefaultWizardService) SubmitContact(ctx context.Context, sessionID string, contact models.ContactInfo, termsAccepted bool) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepContactInfo {
		return nil, NewStepStateError(StepContactInfo, sess.Step)
	}
	if sess.Draft.BookingID != "" {
		return nil, &WizardError{Code: "booking_exists",
			Message: "contact details cannot be changed once the booking is created"}
	}

	draft := sess.Draft.WithContact(contact, termsAccepted)
	if errs := ValidateContactStep(draft); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	sess.Draft = draft
	seq := NewSequencer(sess.Step)
	seq.Next()
	sess.Step = seq.Current()
	return sess, s.save(ctx, sess)
}

// SubmitBilling applies the billing step and advances to payment.
func (s *DefaultWizardService) SubmitBilling(ctx context.Context, sessionID string, billing models.BillingInfo) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepBillingInfo {
		return nil, NewStepStateError(StepBillingInfo, sess.Step)
	}

	draft := sess.Draft.WithBilling(billing)
	if errs := ValidateBillingStep(draft); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	sess.Draft = draft
	sess.BillingSynced = false
	seq := NewSequencer(sess.Step)
	seq.Next()
	sess.Step = seq.Current()
	return sess, s.save(ctx, sess)
}

// Back regresses one step. The confirmation step is absorbing: once the
// booking is paid there is nothing to go back to.
func (s *DefaultWizardService) Back(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step == StepConfirmation {
		return sess, nil
	}

	seq := NewSequencer(sess.Step)
	seq.Previous()
	sess.Step = seq.Current()
	return sess, s.save(ctx, sess)
}

// CreateBooking runs the first orchestrator call. If the booking platform
// reports the slot as taken, the availability snapshot is stale: it is
// discarded and the wizard returns to the time-slot step so the user refetches
// and picks again.
func (s *DefaultWizardService) CreateBooking(ctx context.Context, sessionID string) (*Session, CallResult, error) {
	return s.withCallLock(ctx, sessionID, func(sess *Session) CallResult {
		draft, res := s.Orchestrator.CreateBooking(ctx, sess.Draft)
		sess.Draft = draft
		if !res.Ok && res.Code == "slot_unavailable" {
			sess.Availability = nil
			sess.Draft = sess.Draft.WithSchedule(sess.Draft.SelectedDate, "")
			sess.Step = StepTimeSlotSelection
		}
		return res
	})
}

// UpdateBilling runs the second orchestrator call. It requires the durable
// BookingID and never re-issues the create call.
func (s *DefaultWizardService) UpdateBilling(ctx context.Context, sessionID string) (*Session, CallResult, error) {
	return s.withCallLock(ctx, sessionID, func(sess *Session) CallResult {
		draft, res := s.Orchestrator.UpdateBilling(ctx, sess.Draft)
		sess.Draft = draft
		if res.Ok {
			sess.BillingSynced = true
		}
		return res
	})
}

// SubmitPayment runs the final orchestrator call. On success the saved-draft
// slot is cleared, the wizard advances to the terminal step, and the
// appointment reminder is scheduled.
func (s *DefaultWizardService) SubmitPayment(ctx context.Context, sessionID, method string) (*Session, CallResult, error) {
	return s.withCallLock(ctx, sessionID, func(sess *Session) CallResult {
		if !sess.BillingSynced {
			return failResult(CallSubmitPayment, "billing_not_synced",
				"billing must be confirmed before payment", nil)
		}

		draft, res := s.Orchestrator.SubmitPayment(ctx, sess.Draft, method)
		sess.Draft = draft
		if !res.Ok {
			return res
		}

		sess.Step = StepConfirmation
		sess.ExitState = ExitStateIdle
		if err := s.Drafts.Clear(ctx, sess.ClientKey); err != nil {
			s.Logger.Warn("failed to clear saved draft after completion",
				zap.String("sessionID", sess.SessionID), zap.Error(err))
		}
		s.scheduleReminder(ctx, sess)
		return res
	})
}

// RequestExit handles an exit request. Before any progress the wizard closes
// immediately; otherwise the exit flow asks for a decision.
func (s *DefaultWizardService) RequestExit(ctx context.Context, sessionID string) (*Session, ExitOutcome, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, ExitOutcome{}, err
	}
	if sess.Step == StepConfirmation {
		// The flow is complete; nothing to confirm or save.
		if err := s.Sessions.Delete(ctx, sessionID); err != nil {
			s.Logger.Warn("failed to delete completed session", zap.Error(err))
		}
		return sess, ExitOutcome{State: ExitStateIdle, Exited: true}, nil
	}

	outcome := s.Exit.Request(sess)
	if outcome.Exited {
		if err := s.Sessions.Delete(ctx, sessionID); err != nil {
			s.Logger.Warn("failed to delete exited session", zap.Error(err))
		}
		return sess, outcome, nil
	}
	return sess, outcome, s.save(ctx, sess)
}

// ResolveExit applies the user's decision to a pending exit confirmation.
func (s *DefaultWizardService) ResolveExit(ctx context.Context, sessionID string, decision ExitDecision) (*Session, ExitOutcome, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, ExitOutcome{}, err
	}

	outcome, err := s.Exit.Resolve(ctx, sess, decision)
	if err != nil {
		return sess, outcome, err
	}
	if outcome.Exited {
		if err := s.Sessions.Delete(ctx, sessionID); err != nil {
			s.Logger.Warn("failed to delete exited session", zap.Error(err))
		}
		return sess, outcome, nil
	}
	return sess, outcome, s.save(ctx, sess)
}

// session loads a live session or reports it gone.
func (s *DefaultWizardService) session(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *DefaultWizardService) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

// withCallLock serializes the booking platform calls for one session. While a
// call is in flight a duplicate submission is rejected before it can reach the
// network; once a call starts it runs to completion.
func (s *DefaultWizardService) withCallLock(ctx context.Context, sessionID string, fn func(sess *Session) CallResult) (*Session, CallResult, error) {
	ok, err := s.Sessions.TryLock(ctx, sessionID)
	if err != nil {
		return nil, CallResult{}, fmt.Errorf("failed to guard booking call: %w", err)
	}
	if !ok {
		return nil, CallResult{}, ErrCallInFlight
	}
	defer func() {
		if err := s.Sessions.Unlock(ctx, sessionID); err != nil {
			s.Logger.Warn("failed to release session lock",
				zap.String("sessionID", sessionID), zap.Error(err))
		}
	}()

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, CallResult{}, err
	}
	if sess.Step != StepPayment {
		return nil, CallResult{}, NewStepStateError(StepPayment, sess.Step)
	}

	res := fn(sess)
	if err := s.save(ctx, sess); err != nil {
		return nil, CallResult{}, err
	}
	return sess, res, nil
}

// scheduleReminder enqueues the appointment reminder for a completed booking.
// Scheduling problems are logged and swallowed: the booking already succeeded.
func (s *DefaultWizardService) scheduleReminder(ctx context.Context, sess *Session) {
	if s.Reminders == nil || sess.Draft.Consultant == nil {
		return
	}

	start, err := time.Parse("2006-01-02 15:04", sess.Draft.SelectedDate+" "+sess.Draft.SelectedSlot)
	if err != nil {
		s.Logger.Warn("failed to parse appointment time for reminder",
			zap.String("bookingID", sess.Draft.BookingID), zap.Error(err))
		return
	}
	fireAt := start.Add(-s.ReminderLead)
	if fireAt.Before(s.now()) {
		return
	}

	payload := models.ReminderPayload{
		BookingID:  sess.Draft.BookingID,
		Email:      sess.Draft.Contact.Email,
		FirstName:  sess.Draft.Contact.FirstName,
		Consultant: sess.Draft.Consultant.Name,
		Date:       sess.Draft.SelectedDate,
		Slot:       sess.Draft.SelectedSlot,
		FireDate:   fireAt.Format(time.RFC3339),
	}
	if err := s.Reminders.ScheduleAppointmentReminder(ctx, payload, fireAt); err != nil {
		s.Logger.Error("failed to schedule appointment reminder",
			zap.String("bookingID", sess.Draft.BookingID), zap.Error(err))
	}
}
