package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/kareemadel/istithmar-backend/internal/models"
)

// RequestRecharge records a pending recharge for the requested amount. The
// balance is untouched until an admin approves the request; an optional promo
// code rides along on the entry and is redeemed at approval time.
func (e *Engine) RequestRecharge(ctx context.Context, phone string, amount float64, promoCode string) error {
	if amount <= 0 {
		return ErrAmountOutOfRange
	}
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserByPhone(ctx, phone)
		if err != nil {
			return err
		}
		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   u.Phone,
			Type:        models.TxRecharge,
			Description: "Recharge request",
			Amount:      amount,
			PromoCode:   promoCode,
			Status:      models.TxStatusPending,
			CreatedAt:   e.clock.Now(),
		}); err != nil {
			return err
		}
		return e.notify(ctx, s, u.Phone, "Recharge under review",
			fmt.Sprintf("Your recharge request for %.2f EGP was submitted and is under review.", amount))
	})
}

// DailyCheckIn credits the fixed daily reward once per calendar day
// (platform local date, not a rolling 24h window).
func (e *Engine) DailyCheckIn(ctx context.Context, phone string) (float64, error) {
	reward := e.cfg.CheckInReward
	err := e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		now := e.clock.Now()
		if u.LastCheckIn != nil && sameLocalDay(e.localTime(*u.LastCheckIn), e.localTime(now)) {
			return ErrAlreadyCheckedIn
		}

		u.Balance += reward
		checkIn := now
		u.LastCheckIn = &checkIn
		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   phone,
			Type:        models.TxReward,
			Description: "Daily check-in reward",
			Amount:      reward,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if err := s.SaveUser(ctx, u); err != nil {
			return err
		}
		return e.notify(ctx, s, phone, "Daily reward",
			fmt.Sprintf("You received your %.2f EGP daily check-in reward.", reward))
	})
	if err != nil {
		return 0, err
	}
	return reward, nil
}

// HasCheckedInToday reports whether the once-per-day reward was already
// claimed on the current platform-local date.
func (e *Engine) HasCheckedInToday(ctx context.Context, phone string) (bool, error) {
	u, err := e.store.UserByPhone(ctx, phone)
	if err != nil {
		return false, err
	}
	if u.LastCheckIn == nil {
		return false, nil
	}
	return sameLocalDay(e.localTime(*u.LastCheckIn), e.localTime(e.clock.Now())), nil
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
