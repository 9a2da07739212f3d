package ledger

import (
	"context"
	"fmt"

	"github.com/kareemadel/istithmar-backend/internal/models"
)

// ApproveTransaction resolves a pending withdraw or recharge.
//
// Withdrawals were debited in full up front, so approval only flips the
// status. Recharge approval credits the requested amount plus any promo
// bonus attached to the request; the promo's remaining uses decrement at
// this point, not at request time.
func (e *Engine) ApproveTransaction(ctx context.Context, txID string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		t, err := s.Transaction(ctx, txID)
		if err != nil {
			return err
		}
		if t.Status != models.TxStatusPending {
			return ErrNotPending
		}

		switch t.Type {
		case models.TxWithdraw:
			t.Status = models.TxStatusCompleted
			if err := s.SaveTransaction(ctx, t); err != nil {
				return err
			}
			return e.notify(ctx, s, t.UserPhone, "Withdrawal approved",
				fmt.Sprintf("Your withdrawal of %.2f EGP was approved and sent to your wallet.", -t.Amount))

		case models.TxRecharge:
			u, err := s.UserForUpdate(ctx, t.UserPhone)
			if err != nil {
				return err
			}
			credit := t.Amount
			if t.PromoCode != "" {
				promo, err := s.RedeemPromo(ctx, t.PromoCode)
				if err != nil {
					return err
				}
				if promo != nil {
					bonus := t.Amount * promo.BonusPercent / 100
					credit += bonus
					if err := s.AppendTransaction(ctx, &models.Transaction{
						ID:          e.newTransactionID(),
						UserPhone:   u.Phone,
						Type:        models.TxReward,
						Description: fmt.Sprintf("Promo code bonus (%s)", promo.Code),
						Amount:      bonus,
						PromoCode:   promo.Code,
						CreatedAt:   e.clock.Now(),
					}); err != nil {
						return err
					}
					u.Balance += bonus
				}
			}
			u.Balance += t.Amount
			t.Status = models.TxStatusCompleted
			if err := s.SaveTransaction(ctx, t); err != nil {
				return err
			}
			if err := s.SaveUser(ctx, u); err != nil {
				return err
			}
			return e.notify(ctx, s, u.Phone, "Recharge successful",
				fmt.Sprintf("Your account was credited with %.2f EGP.", credit))

		default:
			return ErrNotPending
		}
	})
}

// RejectTransaction resolves a pending entry as rejected. A rejected
// withdrawal refunds the full debited amount; a rejected recharge never
// touched the balance. An optional reason is appended to the description and
// relayed to the user.
func (e *Engine) RejectTransaction(ctx context.Context, txID, reason string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		t, err := s.Transaction(ctx, txID)
		if err != nil {
			return err
		}
		if t.Status != models.TxStatusPending {
			return ErrNotPending
		}

		t.Status = models.TxStatusRejected
		if reason != "" {
			t.Description = fmt.Sprintf("%s (rejected: %s)", t.Description, reason)
		}
		if err := s.SaveTransaction(ctx, t); err != nil {
			return err
		}

		switch t.Type {
		case models.TxWithdraw:
			u, err := s.UserForUpdate(ctx, t.UserPhone)
			if err != nil {
				return err
			}
			refund := -t.Amount
			u.Balance += refund
			if err := s.SaveUser(ctx, u); err != nil {
				return err
			}
			msg := fmt.Sprintf("Your withdrawal request was rejected. %.2f EGP was returned to your balance.", refund)
			if reason != "" {
				msg += " Reason: " + reason
			}
			return e.notify(ctx, s, t.UserPhone, "Withdrawal rejected", msg)

		case models.TxRecharge:
			msg := "Your recharge request was rejected."
			if reason != "" {
				msg += " Reason: " + reason
			}
			return e.notify(ctx, s, t.UserPhone, "Recharge rejected", msg)

		default:
			return ErrNotPending
		}
	})
}
