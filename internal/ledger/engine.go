// Package ledger is the account ledger and income-accrual engine: balance
// mutation, time-based income, the referral bonus cascade and withdrawal
// rules. Every balance delta is written in the same store transaction as a
// ledger entry carrying the identical signed amount.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/clock"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// Config holds the platform economics. Values mirror the production defaults;
// override through environment configuration.
type Config struct {
	WelcomeBonus        float64
	CheckInReward       float64
	LowBalanceThreshold float64

	MinWithdrawal     float64
	MaxWithdrawal     float64
	WithdrawalFeeRate float64

	SellBackRate float64

	// Default referral commission rates by level; a per-user
	// commission_rates override takes precedence when present.
	Level1Rate float64
	Level2Rate float64
	Level3Rate float64

	// UTCOffsetHours fixes the platform's local time (Egypt, UTC+2, no DST)
	// used by the withdrawal window and the check-in calendar.
	UTCOffsetHours int
}

func DefaultConfig() Config {
	return Config{
		WelcomeBonus:        100.00,
		CheckInReward:       5.00,
		LowBalanceThreshold: 50.00,
		MinWithdrawal:       100,
		MaxWithdrawal:       60000,
		WithdrawalFeeRate:   0.15,
		SellBackRate:        0.10,
		Level1Rate:          0.35,
		Level2Rate:          0.02,
		Level3Rate:          0.01,
		UTCOffsetHours:      2,
	}
}

type Engine struct {
	store Store
	clock clock.Clock
	cfg   Config
}

func New(store Store, clk clock.Clock, cfg Config) *Engine {
	return &Engine{store: store, clock: clk, cfg: cfg}
}

// localTime converts t to the platform's fixed-offset local time.
func (e *Engine) localTime(t time.Time) time.Time {
	return t.In(time.FixedZone("platform", e.cfg.UTCOffsetHours*3600))
}

// newTransactionID builds a time-derived id with a random six-digit suffix,
// e.g. T20250901143015482910.
func (e *Engine) newTransactionID() string {
	return fmt.Sprintf("T%s%06d", e.clock.Now().UTC().Format("20060102150405"), rand.Intn(1000000))
}

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newInviteCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = inviteAlphabet[rand.Intn(len(inviteAlphabet))]
	}
	return string(b)
}

// MaskPhone hides all but the last four digits. Bonus descriptions and the
// team roster both show phones this way.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "****" + phone[len(phone)-4:]
}

func (e *Engine) notify(ctx context.Context, s Store, phone, title, message string) error {
	return s.AppendNotification(ctx, &models.Notification{
		ID:        uuid.New(),
		UserPhone: phone,
		Title:     title,
		Message:   message,
		CreatedAt: e.clock.Now(),
	})
}

// notifyLowBalance appends a warning when the balance crossed below the
// threshold from at-or-above it.
func (e *Engine) notifyLowBalance(ctx context.Context, s Store, u *models.User, balanceBefore float64) error {
	if balanceBefore < e.cfg.LowBalanceThreshold || u.Balance >= e.cfg.LowBalanceThreshold {
		return nil
	}
	return e.notify(ctx, s, u.Phone, "Low balance",
		fmt.Sprintf("Your balance is low (%.2f EGP). Please recharge to keep investing.", u.Balance))
}

// User returns the user without mutating ledger state.
func (e *Engine) User(ctx context.Context, phone string) (*models.User, error) {
	return e.store.UserByPhone(ctx, phone)
}

// Register creates the account, credits the welcome bonus and records the
// new member at up to three levels of the referrer chain. passwordHash must
// already be hashed by the caller; the engine never sees raw login passwords.
func (e *Engine) Register(ctx context.Context, phone, passwordHash, referrerCode string) (*models.User, error) {
	var user *models.User
	err := e.store.Atomically(ctx, func(s Store) error {
		if _, err := s.UserByPhone(ctx, phone); err == nil {
			return ErrPhoneTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		var referrer *models.User
		code := strings.ToUpper(strings.TrimSpace(referrerCode))
		if code != "" {
			r, err := s.UserByInviteCode(ctx, code)
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidInviteCode
			}
			if err != nil {
				return err
			}
			referrer = r
		}

		now := e.clock.Now()
		user = &models.User{
			Phone:      phone,
			Password:   passwordHash,
			InviteCode: newInviteCode(),
			Balance:    e.cfg.WelcomeBonus,
			LastLogin:  now,
		}
		if referrer != nil {
			user.Referrer = &referrer.Phone
		}
		// Retry on the off chance the generated code collides.
		for i := 0; i < 5; i++ {
			if _, err := s.UserByInviteCode(ctx, user.InviteCode); errors.Is(err, ErrUserNotFound) {
				break
			} else if err != nil {
				return err
			}
			user.InviteCode = newInviteCode()
		}
		if err := s.CreateUser(ctx, user); err != nil {
			return err
		}

		if err := s.AppendTransaction(ctx, &models.Transaction{
			ID:          e.newTransactionID(),
			UserPhone:   phone,
			Type:        models.TxReward,
			Description: "Sign-up bonus",
			Amount:      e.cfg.WelcomeBonus,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if err := e.notify(ctx, s, phone, "Sign-up bonus",
			fmt.Sprintf("Welcome! You received a %.2f EGP sign-up bonus.", e.cfg.WelcomeBonus)); err != nil {
			return err
		}

		// Walk at most three hops up the chain; stop at the first missing link.
		current := referrer
		for level := 1; level <= 3 && current != nil; level++ {
			if err := s.AddTeamMember(ctx, &models.TeamMember{
				ReferrerPhone: current.Phone,
				MemberPhone:   phone,
				Level:         level,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			if current.Referrer == nil {
				break
			}
			next, err := s.UserByPhone(ctx, *current.Referrer)
			if errors.Is(err, ErrUserNotFound) {
				break
			}
			if err != nil {
				return err
			}
			current = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// MarkNotificationsRead flips all unread notifications to read in bulk.
func (e *Engine) MarkNotificationsRead(ctx context.Context, phone string) error {
	return e.store.MarkNotificationsRead(ctx, phone)
}
