package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/clock"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
)

// AccrualSweeper periodically credits holding income for users with an
// active session, so balances stay current even while the user idles on a
// page instead of re-logging in. A session counts as active while it holds
// at least one live refresh token.
type AccrualSweeper struct {
	db       *gorm.DB
	engine   *ledger.Engine
	clock    clock.Clock
	interval time.Duration
	cron     *cron.Cron
}

func NewAccrualSweeper(db *gorm.DB, engine *ledger.Engine, clk clock.Clock, interval time.Duration) *AccrualSweeper {
	return &AccrualSweeper{
		db:       db,
		engine:   engine,
		clock:    clk,
		interval: interval,
		cron:     cron.New(),
	}
}

func (s *AccrualSweeper) Start() error {
	spec := "@every " + s.interval.String()
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Accrual sweeper started", "interval", s.interval.String())
	return nil
}

func (s *AccrualSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Accrual sweeper stopped")
}

func (s *AccrualSweeper) sweep() {
	ctx := context.Background()
	now := s.clock.Now()

	var phones []string
	err := s.db.WithContext(ctx).
		Table("refresh_tokens").
		Distinct("refresh_tokens.user_phone").
		Joins("JOIN users ON users.phone = refresh_tokens.user_phone").
		Where("refresh_tokens.revoked = ?", false).
		Where("refresh_tokens.expires_at > ?", now).
		Where("users.last_login <= ?", now.Add(-s.interval)).
		Pluck("refresh_tokens.user_phone", &phones).Error
	if err != nil {
		slog.Error("Accrual sweep query failed", "error", err)
		return
	}

	for _, phone := range phones {
		if _, err := s.engine.AccrueIncome(ctx, phone); err != nil {
			slog.Error("Accrual sweep failed for user", "phone", phone, "error", err)
		}
	}
}
