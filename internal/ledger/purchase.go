package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// Purchase buys one unit of the product for the user. The inventory
// reservation, the buyer's ledger mutation and the referral cascade commit
// as a single store transaction, so a failure at any step leaves nothing
// half-applied. Precondition order: product exists, per-user limit, balance,
// global inventory.
func (e *Engine) Purchase(ctx context.Context, phone string, productID int64) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		product, err := s.Product(ctx, productID)
		if err != nil {
			return err
		}

		if product.PurchaseLimit > 0 {
			holdings, err := s.Holdings(ctx, phone)
			if err != nil {
				return err
			}
			owned := 0
			for _, h := range holdings {
				if h.ProductID == productID {
					owned++
				}
			}
			if owned >= product.PurchaseLimit {
				return ErrLimitReached
			}
		}

		if u.Balance < product.Price {
			return ErrInsufficientBalance
		}

		reserved, err := s.ReserveUnit(ctx, productID)
		if err != nil {
			return err
		}
		if !reserved {
			return ErrSoldOut
		}

		now := e.clock.Now()
		balanceBefore := u.Balance
		u.Balance -= product.Price
		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   phone,
			Type:        models.TxPurchase,
			Description: fmt.Sprintf("Purchase of %s", product.Title),
			Amount:      -product.Price,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if err := s.CreateHolding(ctx, &models.Holding{
			ID:          uuid.New(),
			UserPhone:   phone,
			ProductID:   productID,
			PurchasedAt: now,
		}); err != nil {
			return err
		}
		if err := s.SaveUser(ctx, u); err != nil {
			return err
		}
		if err := e.notify(ctx, s, phone, "Purchase successful",
			fmt.Sprintf("You purchased %s successfully.", product.Title)); err != nil {
			return err
		}
		if err := e.notifyLowBalance(ctx, s, u, balanceBefore); err != nil {
			return err
		}

		return e.cascadeBonuses(ctx, s, u, product.Price)
	})
}

// cascadeBonuses walks up the referrer chain from the buyer for at most
// three levels, crediting each referrer's balance and level bonus counter.
// The walk exits early at the first missing link.
func (e *Engine) cascadeBonuses(ctx context.Context, s Store, buyer *models.User, price float64) error {
	defaults := [3]float64{e.cfg.Level1Rate, e.cfg.Level2Rate, e.cfg.Level3Rate}

	next := buyer.Referrer
	for level := 1; level <= 3 && next != nil; level++ {
		referrer, err := s.UserForUpdate(ctx, *next)
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		rate := defaults[level-1]
		if override, ok := referrer.CommissionRateOverride(level); ok {
			rate = override
		}
		bonus := price * rate

		referrer.Balance += bonus
		switch level {
		case 1:
			referrer.TeamBonusLv1 += bonus
		case 2:
			referrer.TeamBonusLv2 += bonus
		case 3:
			referrer.TeamBonusLv3 += bonus
		}

		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   referrer.Phone,
			Type:        models.TxReward,
			Description: fmt.Sprintf("Level %d team bonus from user %s", level, MaskPhone(buyer.Phone)),
			Amount:      bonus,
			CreatedAt:   e.clock.Now(),
		}); err != nil {
			return err
		}
		if err := s.SaveUser(ctx, referrer); err != nil {
			return err
		}
		if err := e.notify(ctx, s, referrer.Phone, fmt.Sprintf("Level %d team bonus", level),
			fmt.Sprintf("You earned a %.2f EGP bonus from a team member's investment.", bonus)); err != nil {
			return err
		}

		next = referrer.Referrer
	}
	return nil
}

// Sell disposes of one owned product instance at the flat buy-back rate,
// independent of income already earned or time held. No referral cascade.
func (e *Engine) Sell(ctx context.Context, phone string, holdingID uuid.UUID) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		holding, err := s.Holding(ctx, holdingID)
		if err != nil {
			return err
		}
		if holding.UserPhone != phone {
			return ErrHoldingNotFound
		}
		product, err := s.Product(ctx, holding.ProductID)
		if err != nil {
			return err
		}

		if err := s.ReleaseUnit(ctx, product.ID); err != nil {
			return err
		}

		sellPrice := product.Price * e.cfg.SellBackRate
		u.Balance += sellPrice
		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   phone,
			Type:        models.TxSell,
			Description: fmt.Sprintf("Sale of %s", product.Title),
			Amount:      sellPrice,
			CreatedAt:   e.clock.Now(),
		}); err != nil {
			return err
		}
		if err := s.DeleteHolding(ctx, holdingID); err != nil {
			return err
		}
		if err := s.SaveUser(ctx, u); err != nil {
			return err
		}
		return e.notify(ctx, s, phone, "Sale successful",
			fmt.Sprintf("You sold %s for %.2f EGP.", product.Title, sellPrice))
	})
}
