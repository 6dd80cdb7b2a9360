package wizard

import (
	"context"

	"consultly/models"
)

// Service is the wizard shell: it composes the sequencer, validators, draft
// store, orchestrator, and exit flow behind the step-transition and
// exit-request entry points the HTTP layer exposes.
type Service interface {
	// Start opens a wizard session for a client, resuming a saved draft when
	// a fresh one exists for the client key.
	Start(ctx context.Context, clientKey string) (*Session, error)
	// Get returns the current session state.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// HasSavedDraft probes the saved-draft slot without deserializing it.
	HasSavedDraft(ctx context.Context, clientKey string) (bool, error)

	// Step submissions. Each validates the step's fields and, when valid,
	// advances the sequencer.
	SelectConsultant(ctx context.Context, sessionID, consultantID string) (*Session, error)
	FetchAvailability(ctx context.Context, sessionID, date, timezone string) ([]string, error)
	SelectSchedule(ctx context.Context, sessionID, date, slot string) (*Session, error)
	SubmitContact(ctx context.Context, sessionID string, contact models.ContactInfo, termsAccepted bool) (*Session, error)
	SubmitBilling(ctx context.Context, sessionID string, billing models.BillingInfo) (*Session, error)
	Back(ctx context.Context, sessionID string) (*Session, error)

	// Orchestrator calls, one per step button on the payment step. Each is
	// independently erroring so the UI can resume mid-sequence after a
	// transient failure without re-running already-durable steps.
	CreateBooking(ctx context.Context, sessionID string) (*Session, CallResult, error)
	UpdateBilling(ctx context.Context, sessionID string) (*Session, CallResult, error)
	SubmitPayment(ctx context.Context, sessionID, method string) (*Session, CallResult, error)

	// Exit flow.
	RequestExit(ctx context.Context, sessionID string) (*Session, ExitOutcome, error)
	ResolveExit(ctx context.Context, sessionID string, decision ExitDecision) (*Session, ExitOutcome, error)
}
