package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// memStore is the in-memory Store used by the engine tests. Atomically runs
// the callback directly: the engine validates every precondition before its
// first write, so the tested paths never need a rollback.
type memStore struct {
	users    map[string]*models.User
	products map[int64]*models.Product
	holdings map[uuid.UUID]*models.Holding
	txs      map[string]*models.Transaction
	txOrder  []string
	notifs   []*models.Notification
	team     []*models.TeamMember
	promos   map[string]*models.PromoCode
	window   WithdrawalWindow
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		products: make(map[int64]*models.Product),
		holdings: make(map[uuid.UUID]*models.Holding),
		txs:      make(map[string]*models.Transaction),
		promos:   make(map[string]*models.PromoCode),
		window:   WithdrawalWindow{Is24Hour: true},
	}
}

func (m *memStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) UserByPhone(ctx context.Context, phone string) (*models.User, error) {
	u, ok := m.users[phone]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UserForUpdate(ctx context.Context, phone string) (*models.User, error) {
	return m.UserByPhone(ctx, phone)
}

func (m *memStore) UserByInviteCode(ctx context.Context, code string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.InviteCode, code) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memStore) CreateUser(ctx context.Context, u *models.User) error {
	cp := *u
	m.users[u.Phone] = &cp
	return nil
}

func (m *memStore) SaveUser(ctx context.Context, u *models.User) error {
	cp := *u
	m.users[u.Phone] = &cp
	return nil
}

func (m *memStore) Product(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ReserveUnit(ctx context.Context, id int64) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, nil
	}
	if p.SoldCount >= p.TotalQuantity {
		return false, nil
	}
	p.SoldCount++
	return true, nil
}

func (m *memStore) ReleaseUnit(ctx context.Context, id int64) error {
	if p, ok := m.products[id]; ok && p.SoldCount > 0 {
		p.SoldCount--
	}
	return nil
}

func (m *memStore) Holdings(ctx context.Context, phone string) ([]models.Holding, error) {
	var out []models.Holding
	for _, h := range m.holdings {
		if h.UserPhone == phone {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *memStore) Holding(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	h, ok := m.holdings[id]
	if !ok {
		return nil, ErrHoldingNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memStore) CreateHolding(ctx context.Context, h *models.Holding) error {
	cp := *h
	m.holdings[h.ID] = &cp
	return nil
}

func (m *memStore) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	delete(m.holdings, id)
	return nil
}

func (m *memStore) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	cp := *t
	m.txs[t.ID] = &cp
	m.txOrder = append(m.txOrder, t.ID)
	return nil
}

func (m *memStore) Transaction(ctx context.Context, id string) (*models.Transaction, error) {
	t, ok := m.txs[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	cp := *t
	m.txs[t.ID] = &cp
	return nil
}

func (m *memStore) AppendNotification(ctx context.Context, n *models.Notification) error {
	cp := *n
	m.notifs = append(m.notifs, &cp)
	return nil
}

func (m *memStore) MarkNotificationsRead(ctx context.Context, phone string) error {
	for _, n := range m.notifs {
		if n.UserPhone == phone {
			n.Read = true
		}
	}
	return nil
}

func (m *memStore) AddTeamMember(ctx context.Context, tm *models.TeamMember) error {
	cp := *tm
	m.team = append(m.team, &cp)
	return nil
}

func (m *memStore) WithdrawalWindow(ctx context.Context) (WithdrawalWindow, error) {
	return m.window, nil
}

func (m *memStore) RedeemPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	p, ok := m.promos[strings.ToUpper(code)]
	if !ok || p.RemainingUses <= 0 {
		return nil, nil
	}
	p.RemainingUses--
	cp := *p
	return &cp, nil
}

// transactionsOf returns the user's ledger entries in append order.
func (m *memStore) transactionsOf(phone string) []*models.Transaction {
	var out []*models.Transaction
	for _, id := range m.txOrder {
		if t := m.txs[id]; t.UserPhone == phone {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) notificationsOf(phone string) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.notifs {
		if n.UserPhone == phone {
			out = append(out, n)
		}
	}
	return out
}

// fakeClock is a settable clock for deterministic time arithmetic.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }
