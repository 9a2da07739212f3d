package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kareemadel/istithmar-backend/internal/models"
)

// Income below one piaster is dropped rather than carried over.
const minIncomeEntry = 0.01

// AccrueIncome applies the income earned between the user's last accrual
// anchor and now, then advances the anchor. The anchor moves on every pass,
// earning or not, so the next pass never recomputes a stale interval. The
// row lock taken by UserForUpdate keeps concurrent passes from overlapping.
// Returns the total amount credited.
//
// Runs only at login (and 2FA verify) and from the background sweep. A pass
// too short to clear the per-holding minimum entry drops that income while
// still advancing the anchor, so it must not run on arbitrary read paths.
func (e *Engine) AccrueIncome(ctx context.Context, phone string) (float64, error) {
	var total float64
	err := e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		now := e.clock.Now()
		from := u.LastLogin
		if from.IsZero() {
			from = now
		}
		total, err = e.accrue(ctx, s, u, from, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// accrue computes income for [from, to] against the user's current holdings
// and commits it as a batch: one income entry per still-valid holding, one
// balance/totalRevenue bump. Expired holdings are skipped, not removed.
func (e *Engine) accrue(ctx context.Context, s Store, u *models.User, from, to time.Time) (float64, error) {
	hoursPassed := to.Sub(from).Hours()
	holdings, err := s.Holdings(ctx, u.Phone)
	if err != nil {
		return 0, err
	}

	u.LastLogin = to
	if hoursPassed <= 0 || len(holdings) == 0 {
		return 0, s.SaveUser(ctx, u)
	}

	var entries []*models.Transaction
	var total float64
	for i := range holdings {
		h := holdings[i]
		product, err := s.Product(ctx, h.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			continue // catalog entry deleted; the holding earns nothing
		}
		if err != nil {
			return 0, err
		}

		ageDays := to.Sub(h.PurchasedAt).Hours() / 24
		if ageDays > float64(product.Validity) {
			continue
		}

		earned := product.DailyIncome / 24 * hoursPassed
		if earned < minIncomeEntry {
			continue
		}

		id := h.ID
		entries = append(entries, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   u.Phone,
			Type:        models.TxIncome,
			Description: fmt.Sprintf("Income from %s", product.Title),
			Amount:      earned,
			HoldingID:   &id,
			CreatedAt:   to,
		})
		total += earned
	}

	if len(entries) == 0 {
		return 0, s.SaveUser(ctx, u)
	}

	for _, t := range entries {
		if err := s.AppendTransaction(ctx, t); err != nil {
			return 0, err
		}
	}
	u.Balance += total
	u.TotalRevenue += total
	return total, s.SaveUser(ctx, u)
}
