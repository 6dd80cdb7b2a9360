package wizard

import (
	"context"
	"fmt"

	"consultly/models"

	"go.uber.org/zap"
)

// ExitState is the exit flow's position for one session.
type ExitState string

const (
	ExitStateIdle       ExitState = "idle"
	ExitStateConfirming ExitState = "confirming"
)

// ExitDecision is one of the three resolutions offered while confirming.
type ExitDecision string

const (
	ExitDiscard ExitDecision = "discard"
	ExitSave    ExitDecision = "save"
	ExitResume  ExitDecision = "resume"
)

// ExitOutcome reports how an exit request or resolution ended.
type ExitOutcome struct {
	State ExitState `json:"state"`
	// Exited is true when the wizard should close.
	Exited bool `json:"exited"`
	// Saved is true when the draft was written to the saved-draft slot.
	Saved bool `json:"saved"`
	// SaveFailed is true when save-and-exit could not persist the draft and
	// the flow degraded to discard; the user must be told the save failed.
	SaveFailed bool `json:"saveFailed,omitempty"`
}

// ExitFlow resolves a mid-flow exit request into discard, save-and-exit, or
// resume. It never touches network state: it only reads/writes the draft
// store and resets in-memory session state.
type ExitFlow struct {
	store  DraftStore
	logger *zap.Logger
}

// NewExitFlow creates the exit flow over the saved-draft store.
func NewExitFlow(store DraftStore, logger *zap.Logger) *ExitFlow {
	return &ExitFlow{store: store, logger: logger}
}

// Request handles an exit request. Without progress (first step, empty draft)
// the exit proceeds immediately; otherwise the flow moves to confirming and
// waits for a decision.
func (f *ExitFlow) Request(sess *Session) ExitOutcome {
	if sess.Step == FirstStep() && !sess.Draft.HasProgress() {
		sess.ExitState = ExitStateIdle
		return ExitOutcome{State: ExitStateIdle, Exited: true}
	}
	sess.ExitState = ExitStateConfirming
	return ExitOutcome{State: ExitStateConfirming}
}

// Resolve applies the user's decision to a pending exit confirmation.
func (f *ExitFlow) Resolve(ctx context.Context, sess *Session, decision ExitDecision) (ExitOutcome, error) {
	if sess.ExitState != ExitStateConfirming {
		return ExitOutcome{State: sess.ExitState}, ErrNoExitPending
	}

	switch decision {
	case ExitResume:
		sess.ExitState = ExitStateIdle
		return ExitOutcome{State: ExitStateIdle}, nil

	case ExitDiscard:
		f.discard(ctx, sess)
		return ExitOutcome{State: ExitStateIdle, Exited: true}, nil

	case ExitSave:
		if err := f.store.Save(ctx, sess.ClientKey, sess.Draft, sess.Step); err != nil {
			// Never let the user believe data was saved when it was not:
			// degrade to the discard path and report the failure.
			f.logger.Error("save-and-exit failed, falling back to discard",
				zap.String("sessionID", sess.SessionID), zap.Error(err))
			f.discard(ctx, sess)
			return ExitOutcome{State: ExitStateIdle, Exited: true, SaveFailed: true}, nil
		}
		sess.ExitState = ExitStateIdle
		return ExitOutcome{State: ExitStateIdle, Exited: true, Saved: true}, nil

	default:
		return ExitOutcome{State: sess.ExitState}, fmt.Errorf("unknown exit decision %q", decision)
	}
}

// discard clears the saved slot and resets the session to its initial state.
func (f *ExitFlow) discard(ctx context.Context, sess *Session) {
	if err := f.store.Clear(ctx, sess.ClientKey); err != nil {
		f.logger.Warn("failed to clear saved draft on discard",
			zap.String("sessionID", sess.SessionID), zap.Error(err))
	}
	sess.Draft = models.BookingDraft{}
	sess.Step = FirstStep()
	sess.Availability = nil
	sess.BillingSynced = false
	sess.ExitState = ExitStateIdle
}
