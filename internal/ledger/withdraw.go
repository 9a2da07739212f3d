package ledger

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/kareemadel/istithmar-backend/internal/models"
)

// HashWithdrawalPassword is the one-way hash stored for withdrawal passwords.
func HashWithdrawalPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Withdraw debits the full amount and records a pending withdrawal. The fee
// is recorded for display only; nothing is escrowed separately. Precondition
// order: window, wallet linked, password set, password correct, amount range,
// balance.
func (e *Engine) Withdraw(ctx context.Context, phone string, amount float64, withdrawalPassword string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}

		window, err := s.WithdrawalWindow(ctx)
		if err != nil {
			return err
		}
		if !window.Is24Hour {
			hour := e.localTime(e.clock.Now()).Hour()
			if hour < window.StartHour || hour >= window.EndHour {
				return ErrOutsideWithdrawalWindow
			}
		}

		if !u.WalletLinked() {
			return ErrWalletNotLinked
		}
		if u.WithdrawalPassword == "" {
			return ErrPasswordNotSet
		}
		supplied := HashWithdrawalPassword(withdrawalPassword)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(u.WithdrawalPassword)) != 1 {
			return ErrInvalidCredential
		}

		if amount < e.cfg.MinWithdrawal || amount > e.cfg.MaxWithdrawal {
			return ErrAmountOutOfRange
		}
		if amount > u.Balance {
			return ErrInsufficientBalance
		}

		fee := amount * e.cfg.WithdrawalFeeRate
		balanceBefore := u.Balance
		u.Balance -= amount
		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   phone,
			Type:        models.TxWithdraw,
			Description: fmt.Sprintf("Withdrawal (fee %.2f EGP)", fee),
			Amount:      -amount,
			Fee:         fee,
			Status:      models.TxStatusPending,
			CreatedAt:   e.clock.Now(),
		}); err != nil {
			return err
		}
		if err := s.SaveUser(ctx, u); err != nil {
			return err
		}
		if err := e.notify(ctx, s, phone, "Withdrawal request",
			fmt.Sprintf("Your withdrawal request for %.2f EGP has been submitted.", amount)); err != nil {
			return err
		}
		return e.notifyLowBalance(ctx, s, u, balanceBefore)
	})
}

// LinkWallet stores the withdrawal wallet. A wallet can be linked exactly
// once per account.
func (e *Engine) LinkWallet(ctx context.Context, phone, walletType, ownerName, walletNumber string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		if u.WalletLinked() {
			return ErrWalletAlreadyLinked
		}
		u.WalletType = walletType
		u.WalletOwner = ownerName
		u.WalletNumber = walletNumber
		if err := s.SaveUser(ctx, u); err != nil {
			return err
		}
		return e.notify(ctx, s, phone, "Wallet linked",
			fmt.Sprintf("Your wallet (%s) was linked successfully and is ready to use.", walletType))
	})
}

// SetWithdrawalPassword sets the withdrawal password for the first time.
func (e *Engine) SetWithdrawalPassword(ctx context.Context, phone, password string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		if u.WithdrawalPassword != "" {
			return ErrPasswordAlreadySet
		}
		u.WithdrawalPassword = HashWithdrawalPassword(password)
		return s.SaveUser(ctx, u)
	})
}

// ResetWithdrawalPassword overwrites the stored hash unconditionally; the
// recovery flow is responsible for verifying the caller first.
func (e *Engine) ResetWithdrawalPassword(ctx context.Context, phone, password string) error {
	return e.store.Atomically(ctx, func(s Store) error {
		u, err := s.UserForUpdate(ctx, phone)
		if err != nil {
			return err
		}
		u.WithdrawalPassword = HashWithdrawalPassword(password)
		return s.SaveUser(ctx, u)
	})
}
