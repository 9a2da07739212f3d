package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// WithdrawalWindow is the configured time-of-day range (platform local time,
// fixed UTC offset) during which withdrawals are permitted.
type WithdrawalWindow struct {
	Is24Hour  bool
	StartHour int
	EndHour   int
}

// Store is the persistence surface the engine runs against. The production
// implementation is backed by Postgres (internal/storage); tests use an
// in-memory fake.
//
// Atomically runs fn against a Store whose writes commit or roll back as one
// unit. Every engine operation performs its whole read-modify-write cycle
// inside a single Atomically call, including multi-user mutations such as the
// referral cascade. Lookup methods return the package's NotFound sentinels.
type Store interface {
	Atomically(ctx context.Context, fn func(Store) error) error

	UserByPhone(ctx context.Context, phone string) (*models.User, error)
	// UserForUpdate locks the user row for the duration of the enclosing
	// transaction, serializing concurrent accrual and purchase passes.
	UserForUpdate(ctx context.Context, phone string) (*models.User, error)
	UserByInviteCode(ctx context.Context, code string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error

	Product(ctx context.Context, id int64) (*models.Product, error)
	// ReserveUnit atomically increments sold_count, failing the guard
	// sold_count < total_quantity; it reports whether a unit was reserved.
	ReserveUnit(ctx context.Context, id int64) (bool, error)
	// ReleaseUnit atomically decrements sold_count, floored at zero.
	ReleaseUnit(ctx context.Context, id int64) error

	Holdings(ctx context.Context, phone string) ([]models.Holding, error)
	Holding(ctx context.Context, id uuid.UUID) (*models.Holding, error)
	CreateHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, id uuid.UUID) error

	AppendTransaction(ctx context.Context, t *models.Transaction) error
	Transaction(ctx context.Context, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, t *models.Transaction) error

	AppendNotification(ctx context.Context, n *models.Notification) error
	MarkNotificationsRead(ctx context.Context, phone string) error

	AddTeamMember(ctx context.Context, m *models.TeamMember) error

	WithdrawalWindow(ctx context.Context) (WithdrawalWindow, error)
	// RedeemPromo decrements the remaining uses of the code and returns it;
	// nil when the code does not exist or is exhausted.
	RedeemPromo(ctx context.Context, code string) (*models.PromoCode, error)
}
