package wizard

import (
	"context"
	"time"

	consultantRepo "consultly/database/repository/consultant"
	"consultly/models"
	"consultly/services/bookingapi"

	"go.uber.org/zap"
)

// In-memory doubles for the Redis-backed stores and the outbound
// collaborators. They implement the same contracts the production types do,
// including the (nil, nil) absent convention.

type memorySessionStore struct {
	sessions map[string]*Session
	locked   map[string]bool
	putErr   error
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*Session),
		locked:   make(map[string]bool),
	}
}

func (m *memorySessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (m *memorySessionStore) Put(ctx context.Context, sess *Session) error {
	if m.putErr != nil {
		return m.putErr
	}
	cp := *sess
	m.sessions[sess.SessionID] = &cp
	return nil
}

func (m *memorySessionStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func (m *memorySessionStore) TryLock(ctx context.Context, sessionID string) (bool, error) {
	if m.locked[sessionID] {
		return false, nil
	}
	m.locked[sessionID] = true
	return true, nil
}

func (m *memorySessionStore) Unlock(ctx context.Context, sessionID string) error {
	delete(m.locked, sessionID)
	return nil
}

type memoryDraftStore struct {
	records map[string]models.PersistedDraftRecord
	saveErr error
	loadErr error
	saves   int
	clears  int
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{records: make(map[string]models.PersistedDraftRecord)}
}

func (m *memoryDraftStore) Save(ctx context.Context, clientKey string, draft models.BookingDraft, step Step) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records[clientKey] = models.PersistedDraftRecord{
		Draft:   draft,
		Step:    step.String(),
		SavedAt: time.Now(),
	}
	return nil
}

func (m *memoryDraftStore) Load(ctx context.Context, clientKey string) (*models.PersistedDraftRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	record, ok := m.records[clientKey]
	if !ok {
		return nil, nil
	}
	cp := record
	return &cp, nil
}

func (m *memoryDraftStore) Clear(ctx context.Context, clientKey string) error {
	m.clears++
	delete(m.records, clientKey)
	return nil
}

func (m *memoryDraftStore) Exists(ctx context.Context, clientKey string) (bool, error) {
	_, ok := m.records[clientKey]
	return ok, nil
}

type fakeBookingClient struct {
	bookingID   string
	createErr   error
	billingErr  error
	paymentErr  error
	createCalls int
	billingCall int
	paymentCall int
}

func (f *fakeBookingClient) CreateBooking(ctx context.Context, req bookingapi.CreateBookingRequest) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.bookingID, nil
}

func (f *fakeBookingClient) UpdateBilling(ctx context.Context, bookingID string, billing models.BillingInfo) error {
	f.billingCall++
	return f.billingErr
}

func (f *fakeBookingClient) SubmitPayment(ctx context.Context, bookingID string, req bookingapi.PaymentRequest) (*bookingapi.PaymentConfirmation, error) {
	f.paymentCall++
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &bookingapi.PaymentConfirmation{
		Reference: "PAY-001",
		Provider:  req.Provider,
		Status:    "succeeded",
	}, nil
}

type fakeDirectory struct {
	consultants map[string]*models.Consultant
}

func (f *fakeDirectory) GetByID(id string) (*models.Consultant, error) {
	c, ok := f.consultants[id]
	if !ok {
		return nil, consultantRepo.ErrNotFound
	}
	return c, nil
}

func (f *fakeDirectory) GetAllActive() ([]models.Consultant, error) {
	var out []models.Consultant
	for _, c := range f.consultants {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeAvailability struct {
	slots []string
	err   error
	calls int
}

func (f *fakeAvailability) FetchSlots(ctx context.Context, consultantID, date, timezone string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.slots, nil
}

type fakeScheduler struct {
	payloads []models.ReminderPayload
}

func (f *fakeScheduler) ScheduleAppointmentReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type testEnv struct {
	svc       *DefaultWizardService
	sessions  *memorySessionStore
	drafts    *memoryDraftStore
	booking   *fakeBookingClient
	avail     *fakeAvailability
	scheduler *fakeScheduler
}

func newTestEnv() *testEnv {
	sessions := newMemorySessionStore()
	drafts := newMemoryDraftStore()
	booking := &fakeBookingClient{bookingID: "BK-1"}
	avail := &fakeAvailability{slots: []string{"10:00", "11:00", "14:00"}}
	scheduler := &fakeScheduler{}
	dir := &fakeDirectory{consultants: map[string]*models.Consultant{
		"con-1": {ID: "con-1", Name: "Ada Keller", Title: "Cloud Strategy", HourlyRate: 200, Currency: "EUR", Active: true},
		"con-2": {ID: "con-2", Name: "Noor Haddad", Title: "Data Platforms", HourlyRate: 180, Currency: "EUR", Active: true},
		"con-3": {ID: "con-3", Name: "Retired Consultant", Active: false},
	}}

	logger := zap.NewNop()
	svc := NewDefaultWizardService(
		sessions, drafts, dir, avail,
		NewOrchestrator(booking, logger),
		scheduler, time.Hour, logger,
	)
	return &testEnv{
		svc: svc, sessions: sessions, drafts: drafts,
		booking: booking, avail: avail, scheduler: scheduler,
	}
}

func validContact() models.ContactInfo {
	return models.ContactInfo{
		FirstName: "Jonas",
		LastName:  "Berg",
		Email:     "jonas.berg@example.com",
		Phone:     "+49 30 12345678",
		Company:   "Berg GmbH",
	}
}

func validBilling() models.BillingInfo {
	return models.BillingInfo{
		FirstName:   "Jonas",
		LastName:    "Berg",
		Street:      "Hauptstr. 5",
		PostalCode:  "10115",
		City:        "Berlin",
		CountryCode: "DE",
		VATNumber:   "DE123456789",
	}
}

// advanceToPayment drives a fresh session through the first four steps.
func advanceToPayment(env *testEnv, ctx context.Context) *Session {
	sess, err := env.svc.Start(ctx, "client-1")
	if err != nil {
		panic(err)
	}
	if _, err := env.svc.SelectConsultant(ctx, sess.SessionID, "con-1"); err != nil {
		panic(err)
	}
	if _, err := env.svc.FetchAvailability(ctx, sess.SessionID, "2026-09-10", "UTC"); err != nil {
		panic(err)
	}
	if _, err := env.svc.SelectSchedule(ctx, sess.SessionID, "2026-09-10", "10:00"); err != nil {
		panic(err)
	}
	if _, err := env.svc.SubmitContact(ctx, sess.SessionID, validContact(), true); err != nil {
		panic(err)
	}
	out, err := env.svc.SubmitBilling(ctx, sess.SessionID, validBilling())
	if err != nil {
		panic(err)
	}
	return out
}
