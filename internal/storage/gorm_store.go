// Package storage backs the ledger engine with PostgreSQL through GORM.
package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

var _ ledger.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically runs fn inside one database transaction. Nested calls reuse the
// already-open transaction, so every engine operation commits as one unit.
func (g *GormStore) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (g *GormStore) UserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).First(&u, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UserForUpdate takes a FOR UPDATE row lock, serializing concurrent
// read-modify-write cycles on the same account.
func (g *GormStore) UserForUpdate(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (g *GormStore) UserByInviteCode(ctx context.Context, code string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Where("UPPER(invite_code) = UPPER(?)", code).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (g *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return g.db.WithContext(ctx).Create(u).Error
}

func (g *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return g.db.WithContext(ctx).Save(u).Error
}

func (g *GormStore) Product(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ReserveUnit increments sold_count only while stock remains; the WHERE
// guard makes the check-and-increment a single atomic statement.
func (g *GormStore) ReserveUnit(ctx context.Context, id int64) (bool, error) {
	result := g.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND sold_count < total_quantity", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseUnit decrements sold_count, floored at zero.
func (g *GormStore) ReleaseUnit(ctx context.Context, id int64) error {
	return g.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND sold_count > 0", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count - 1")).Error
}

func (g *GormStore) Holdings(ctx context.Context, phone string) ([]models.Holding, error) {
	var hs []models.Holding
	err := g.db.WithContext(ctx).
		Where("user_phone = ?", phone).
		Order("purchased_at ASC").
		Find(&hs).Error
	return hs, err
}

func (g *GormStore) Holding(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	if err := g.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrHoldingNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (g *GormStore) CreateHolding(ctx context.Context, h *models.Holding) error {
	return g.db.WithContext(ctx).Create(h).Error
}

func (g *GormStore) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Delete(&models.Holding{}, "id = ?", id).Error
}

func (g *GormStore) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	return g.db.WithContext(ctx).Create(t).Error
}

func (g *GormStore) Transaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := g.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (g *GormStore) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	return g.db.WithContext(ctx).Save(t).Error
}

func (g *GormStore) AppendNotification(ctx context.Context, n *models.Notification) error {
	return g.db.WithContext(ctx).Create(n).Error
}

func (g *GormStore) MarkNotificationsRead(ctx context.Context, phone string) error {
	return g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_phone = ? AND read = false", phone).
		Update("read", true).Error
}

func (g *GormStore) AddTeamMember(ctx context.Context, m *models.TeamMember) error {
	return g.db.WithContext(ctx).Create(m).Error
}

// Site config keys read by the engine.
const (
	KeyWithdrawal24h       = "withdrawal_is_24h"
	KeyWithdrawalStartHour = "withdrawal_start_hour"
	KeyWithdrawalEndHour   = "withdrawal_end_hour"
	KeyReceiverWallet      = "receiver_wallet"
)

func (g *GormStore) WithdrawalWindow(ctx context.Context) (ledger.WithdrawalWindow, error) {
	// Defaults match the seeded site config.
	window := ledger.WithdrawalWindow{Is24Hour: false, StartHour: 10, EndHour: 18}

	var rows []models.SiteConfig
	err := g.db.WithContext(ctx).
		Where("key IN ?", []string{KeyWithdrawal24h, KeyWithdrawalStartHour, KeyWithdrawalEndHour}).
		Find(&rows).Error
	if err != nil {
		return window, err
	}
	for _, row := range rows {
		switch row.Key {
		case KeyWithdrawal24h:
			if v, err := strconv.ParseBool(row.Value); err == nil {
				window.Is24Hour = v
			}
		case KeyWithdrawalStartHour:
			if v, err := strconv.Atoi(row.Value); err == nil {
				window.StartHour = v
			}
		case KeyWithdrawalEndHour:
			if v, err := strconv.Atoi(row.Value); err == nil {
				window.EndHour = v
			}
		}
	}
	return window, nil
}

// RedeemPromo decrements the code's remaining uses with the same guarded
// atomic update pattern as inventory; nil means absent or exhausted.
func (g *GormStore) RedeemPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	result := g.db.WithContext(ctx).Model(&models.PromoCode{}).
		Where("UPPER(code) = UPPER(?) AND remaining_uses > 0", code).
		UpdateColumn("remaining_uses", gorm.Expr("remaining_uses - 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	var promo models.PromoCode
	if err := g.db.WithContext(ctx).First(&promo, "UPPER(code) = UPPER(?)", code).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}
