package repo

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

type memoryState struct {
	nextID      int64
	orders      []domain.Order
	payments    []domain.Payment
	tickets     []domain.Ticket
	webhookLogs []domain.WebhookLog
}

func (s *memoryState) newID() string {
	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++
	return id
}

// MemoryStore keeps every record in process memory. Atomic units hold the
// write lock for their whole duration, so units never interleave. Mutations
// made before a failing unit returns are not undone.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{nextID: 1}}
}

func (m *MemoryStore) View(ctx context.Context, fn TxFunc) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(ctx, m.repos())
}

func (m *MemoryStore) Atomic(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.repos())
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &memoryState{nextID: 1}
	return nil
}

func (m *MemoryStore) Health(ctx context.Context) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]string{
		"status":       "up",
		"driver":       "memory",
		"orders":       strconv.Itoa(len(m.state.orders)),
		"payments":     strconv.Itoa(len(m.state.payments)),
		"tickets":      strconv.Itoa(len(m.state.tickets)),
		"webhook_logs": strconv.Itoa(len(m.state.webhookLogs)),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) repos() Repos {
	s := m.state
	return Repos{
		Orders:      memoryOrderRepo{s},
		Payments:    memoryPaymentRepo{s},
		Tickets:     memoryTicketRepo{s},
		WebhookLogs: memoryWebhookLogRepo{s},
	}
}

type memoryOrderRepo struct{ s *memoryState }

func (r memoryOrderRepo) FindById(ctx context.Context, id string) (*domain.Order, error) {
	i := slices.IndexFunc(r.s.orders, func(o domain.Order) bool { return o.ID == id })
	if i < 0 {
		return nil, nil
	}
	order := r.s.orders[i]
	return &order, nil
}

func (r memoryOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	order.ID = r.s.newID()
	r.s.orders = append(r.s.orders, *order)
	return nil
}

func (r memoryOrderRepo) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	i := slices.IndexFunc(r.s.orders, func(o domain.Order) bool { return o.ID == order.ID })
	if i < 0 {
		return ErrRecordNotFound
	}
	r.s.orders[i].Status = order.Status
	r.s.orders[i].PaymentStatus = order.PaymentStatus
	return nil
}

type memoryPaymentRepo struct{ s *memoryState }

func (r memoryPaymentRepo) FindById(ctx context.Context, id string) (*domain.Payment, error) {
	i := slices.IndexFunc(r.s.payments, func(p domain.Payment) bool { return p.ID == id })
	if i < 0 {
		return nil, nil
	}
	payment := r.s.payments[i]
	return &payment, nil
}

func (r memoryPaymentRepo) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	payment.ID = r.s.newID()
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

func (r memoryPaymentRepo) UpdatePaymentStatus(ctx context.Context, payment *domain.Payment) error {
	i := slices.IndexFunc(r.s.payments, func(p domain.Payment) bool { return p.ID == payment.ID })
	if i < 0 {
		return ErrRecordNotFound
	}
	r.s.payments[i].Status = payment.Status
	r.s.payments[i].ProcessedAt = payment.ProcessedAt
	return nil
}

func (r memoryPaymentRepo) FindUnsettled(ctx context.Context, limit int) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	for _, p := range r.s.payments {
		if len(payments) >= limit {
			break
		}
		if p.Status == domain.PaymentPending || p.Status == domain.PaymentProcessing {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

type memoryTicketRepo struct{ s *memoryState }

func (r memoryTicketRepo) FindByOrderId(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if t.OrderID == orderID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func (r memoryTicketRepo) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.s.newID()
	r.s.tickets = append(r.s.tickets, *ticket)
	return nil
}

func (r memoryTicketRepo) ConfirmHeldTickets(ctx context.Context, orderID string) (int64, error) {
	var n int64
	for i := range r.s.tickets {
		t := &r.s.tickets[i]
		if t.OrderID == orderID && t.Status == domain.TicketHeld {
			t.Status = domain.TicketConfirmed
			n++
		}
	}
	return n, nil
}

type memoryWebhookLogRepo struct{ s *memoryState }

func (r memoryWebhookLogRepo) FindByEventId(ctx context.Context, webhookEventID string) (*domain.WebhookLog, error) {
	i := slices.IndexFunc(r.s.webhookLogs, func(l domain.WebhookLog) bool { return l.WebhookEventID == webhookEventID })
	if i < 0 {
		return nil, nil
	}
	log := r.s.webhookLogs[i]
	return &log, nil
}

func (r memoryWebhookLogRepo) CreateWebhookLog(ctx context.Context, log *domain.WebhookLog) error {
	if existing, _ := r.FindByEventId(ctx, log.WebhookEventID); existing != nil {
		return ErrDuplicateEvent
	}
	log.ID = r.s.newID()
	r.s.webhookLogs = append(r.s.webhookLogs, *log)
	return nil
}

func (r memoryWebhookLogRepo) ListWebhookLogs(ctx context.Context) ([]domain.WebhookLog, error) {
	return append([]domain.WebhookLog{}, r.s.webhookLogs...), nil
}
