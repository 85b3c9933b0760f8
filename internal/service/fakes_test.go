package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
)

// In-memory fakes for the repository interfaces. They reproduce the
// conditional-update semantics of the SQL layer so concurrency guards can be
// exercised without a database.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	seq     int

	escalateErr map[string]error
	assignErr   map[string]error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:     make(map[string]*domain.Ticket),
		escalateErr: make(map[string]error),
		assignErr:   make(map[string]error),
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("tck-%03d", f.seq)
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListOpenWithSLA(_ context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Status == domain.TicketStatusCerrado || ticket.SLADueAt == nil {
			continue
		}
		result = append(result, *ticket)
	}
	sortTickets(result, func(a, b domain.Ticket) bool {
		return a.SLADueAt.Before(*b.SLADueAt)
	})
	return result, nil
}

func (f *fakeTicketRepo) ListStaleCriticalUnassigned(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Priority != domain.TicketPriorityCritica ||
			ticket.Status != domain.TicketStatusAbierto ||
			ticket.AssignedTo != nil ||
			ticket.OpenedAt.After(cutoff) {
			continue
		}
		result = append(result, *ticket)
	}
	sortTickets(result, func(a, b domain.Ticket) bool {
		if a.OpenedAt.Equal(b.OpenedAt) {
			return a.ID < b.ID
		}
		return a.OpenedAt.Before(b.OpenedAt)
	})
	return result, nil
}

func (f *fakeTicketRepo) Escalate(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.escalateErr[id]; err != nil {
		return false, err
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return false, nil
	}
	if ticket.Status == domain.TicketStatusEscalado || ticket.Status == domain.TicketStatusCerrado {
		return false, nil
	}
	ticket.Status = domain.TicketStatusEscalado
	ticket.EscalatedAt = &at
	return true, nil
}

func (f *fakeTicketRepo) AssignIfUnassigned(_ context.Context, id, agentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.assignErr[id]; err != nil {
		return false, err
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return false, nil
	}
	if ticket.AssignedTo != nil || ticket.Status != domain.TicketStatusAbierto {
		return false, nil
	}
	ticket.AssignedTo = &agentID
	return true, nil
}

func containsStatus(set []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func sortTickets(tickets []domain.Ticket, less func(a, b domain.Ticket) bool) {
	for i := 1; i < len(tickets); i++ {
		for j := i; j > 0 && less(tickets[j], tickets[j-1]); j-- {
			tickets[j], tickets[j-1] = tickets[j-1], tickets[j]
		}
	}
}

type fakeAgentRepo struct {
	mu     sync.Mutex
	agents map[string]*domain.Agent
	idle   []domain.Agent
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[string]*domain.Agent)}
}

func (f *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *agent
	f.agents[agent.ID] = &copied
	return nil
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agent, ok := f.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *agent
	return &copied, nil
}

func (f *fakeAgentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, agent := range f.agents {
		if agent.Email == email {
			copied := *agent
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAgentRepo) List(_ context.Context, activeOnly bool) ([]domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Agent
	for _, agent := range f.agents {
		if activeOnly && !agent.Active {
			continue
		}
		result = append(result, *agent)
	}
	return result, nil
}

func (f *fakeAgentRepo) ListIdleActive(_ context.Context) ([]domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Agent{}, f.idle...), nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes []domain.TicketNote
	err   error
}

func (f *fakeNoteRepo) Create(_ context.Context, note *domain.TicketNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	note.ID = fmt.Sprintf("note-%03d", len(f.notes)+1)
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeNoteRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.TicketNote
	for _, note := range f.notes {
		if note.TicketID == ticketID {
			result = append(result, note)
		}
	}
	return result, nil
}

func (f *fakeNoteRepo) byKind(kind domain.TicketNoteKind) []domain.TicketNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.TicketNote
	for _, note := range f.notes {
		if note.Kind == kind {
			result = append(result, note)
		}
	}
	return result
}

type fakeCutRepo struct {
	mu   sync.Mutex
	cuts map[string]*domain.SalesCut
	seq  int
}

func newFakeCutRepo() *fakeCutRepo {
	return &fakeCutRepo{cuts: make(map[string]*domain.SalesCut)}
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func (f *fakeCutRepo) GetOrCreateOpen(_ context.Context, date time.Time) (*domain.SalesCut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := dateKey(date)
	if cut, ok := f.cuts[key]; ok {
		copied := *cut
		return &copied, nil
	}
	f.seq++
	cut := &domain.SalesCut{
		ID:      fmt.Sprintf("cut-%03d", f.seq),
		CutDate: date,
		Status:  domain.SalesCutStatusOpen,
	}
	f.cuts[key] = cut
	copied := *cut
	return &copied, nil
}

func (f *fakeCutRepo) GetByDate(_ context.Context, date time.Time) (*domain.SalesCut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cut, ok := f.cuts[dateKey(date)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *cut
	return &copied, nil
}

func (f *fakeCutRepo) AddSale(_ context.Context, date time.Time, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cut, ok := f.cuts[dateKey(date)]
	if !ok || cut.Status != domain.SalesCutStatusOpen {
		return false, nil
	}
	cut.SalesCount++
	cut.SalesTotal += amount
	return true, nil
}

func (f *fakeCutRepo) AddPayment(_ context.Context, date time.Time, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cut, ok := f.cuts[dateKey(date)]
	if !ok || cut.Status != domain.SalesCutStatusOpen {
		return false, nil
	}
	cut.PaymentsCount++
	cut.PaymentsTotal += amount
	return true, nil
}

func (f *fakeCutRepo) Close(_ context.Context, date time.Time, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cut, ok := f.cuts[dateKey(date)]
	if !ok || cut.Status != domain.SalesCutStatusOpen {
		return false, nil
	}
	cut.Status = domain.SalesCutStatusClosed
	cut.ClosedAt = &at
	return true, nil
}

type fakeContractRepo struct {
	mu        sync.Mutex
	contracts map[string]*domain.Contract
	seq       int
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[string]*domain.Contract)}
}

func (f *fakeContractRepo) Create(_ context.Context, contract *domain.Contract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if contract.ID == "" {
		contract.ID = fmt.Sprintf("ctr-%03d", f.seq)
	}
	copied := *contract
	f.contracts[contract.ID] = &copied
	return nil
}

func (f *fakeContractRepo) GetByID(_ context.Context, id string) (*domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *contract
	return &copied, nil
}

func (f *fakeContractRepo) UpdateStatus(_ context.Context, id string, status domain.ContractStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	contract.Status = status
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []domain.Payment
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment.ID = fmt.Sprintf("pay-%03d", len(f.payments)+1)
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) ListByContract(_ context.Context, contractID string) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Payment
	for _, payment := range f.payments {
		if payment.ContractID == contractID {
			result = append(result, payment)
		}
	}
	return result, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []sentNotification
	fail  map[string]error
	every error
}

type sentNotification struct {
	Recipient string
	Kind      NotificationKind
	Payload   map[string]any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fail: make(map[string]error)}
}

func (f *fakeNotifier) Send(_ context.Context, recipient string, kind NotificationKind, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.every != nil {
		return f.every
	}
	if ticketID, ok := payload["ticket_id"].(string); ok {
		if err := f.fail[ticketID]; err != nil {
			return err
		}
	}
	f.sent = append(f.sent, sentNotification{Recipient: recipient, Kind: kind, Payload: payload})
	return nil
}

func (f *fakeNotifier) byKind(kind NotificationKind) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []sentNotification
	for _, n := range f.sent {
		if n.Kind == kind {
			result = append(result, n)
		}
	}
	return result
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (f *fakeDeduper) SeenBefore(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen[key] {
		return true, nil
	}
	f.seen[key] = true
	return false, nil
}

var errBoom = errors.New("boom")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
