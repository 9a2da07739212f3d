package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/kareemadel/istithmar-backend/internal/models"
)

var _ Store = (*memStore)(nil)

// 2025-06-01 08:00 UTC is 10:00 platform local time (UTC+2).
var testStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *memStore, *fakeClock) {
	store := newMemStore()
	clk := &fakeClock{now: testStart}
	return New(store, clk, DefaultConfig()), store, clk
}

func seedProduct(store *memStore, id int64, price, dailyIncome float64, validity, quantity, limit int) {
	store.products[id] = &models.Product{
		ID:            id,
		Title:         "Test Product",
		Price:         price,
		DailyIncome:   dailyIncome,
		Validity:      validity,
		TotalQuantity: quantity,
		PurchaseLimit: limit,
	}
}

func TestRegister_WelcomeBonus(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()

	u, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	assert.Equal(t, 100.00, u.Balance)
	assert.Len(t, u.InviteCode, 6)
	assert.Nil(t, u.Referrer)

	txs := store.transactionsOf("01011111111")
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxReward, txs[0].Type)
	assert.Equal(t, 100.00, txs[0].Amount)

	notifs := store.notificationsOf("01011111111")
	require.Len(t, notifs, 1)
	assert.Equal(t, "Sign-up bonus", notifs[0].Title)
}

func TestRegister_PhoneTaken(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)

	_, err = engine.Register(ctx, "01011111111", "hashed", "")
	assert.ErrorIs(t, err, ErrPhoneTaken)
}

func TestRegister_InvalidInviteCode(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "NOPE99")
	assert.ErrorIs(t, err, ErrInvalidInviteCode)
}

func TestRegister_TeamChain(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()

	a, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	b, err := engine.Register(ctx, "0100000000B", "hashed", a.InviteCode)
	require.NoError(t, err)
	c, err := engine.Register(ctx, "0100000000C", "hashed", b.InviteCode)
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000D", "hashed", c.InviteCode)
	require.NoError(t, err)

	level := func(referrer, member string) int {
		for _, tm := range store.team {
			if tm.ReferrerPhone == referrer && tm.MemberPhone == member {
				return tm.Level
			}
		}
		return 0
	}

	// D sits one hop below C, two below B, three below A.
	assert.Equal(t, 1, level("0100000000C", "0100000000D"))
	assert.Equal(t, 2, level("0100000000B", "0100000000D"))
	assert.Equal(t, 3, level("0100000000A", "0100000000D"))

	// A's fourth-level descendants are not recorded.
	assert.Equal(t, 1, level("0100000000A", "0100000000B"))
	assert.Equal(t, 2, level("0100000000A", "0100000000C"))
	assert.Equal(t, 0, level("0100000000D", "0100000000A"))
}

func TestAccrueIncome_FullDayEqualsDailyIncome(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 50, 24, 60, 10, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	clk.advance(24 * time.Hour)
	earned, err := engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.InDelta(t, 24.0, earned, 1e-9)

	u := store.users["01011111111"]
	assert.InDelta(t, 100-50+24, u.Balance, 1e-9)
	assert.InDelta(t, 24.0, u.TotalRevenue, 1e-9)
	assert.Equal(t, clk.now, u.LastLogin)
}

func TestAccrueIncome_ZeroWidthIsIdempotent(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 50, 24, 60, 10, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	clk.advance(12 * time.Hour)
	first, err := engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, first, 1e-9)

	// Same instant again: nothing further accrues.
	second, err := engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.Zero(t, second)
}

func TestAccrueIncome_ExpiryBoundary(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 50, 24, 1, 10, 0) // one-day validity

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	// Exactly at the validity boundary the holding still earns.
	clk.advance(24 * time.Hour)
	earned, err := engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.InDelta(t, 24.0, earned, 1e-9)

	// Past the boundary it earns nothing, but the anchor still advances.
	clk.advance(24 * time.Hour)
	earned, err = engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.Zero(t, earned)
	assert.Equal(t, clk.now, store.users["01011111111"].LastLogin)

	// The expired holding stays in place.
	holdings, err := store.Holdings(ctx, "01011111111")
	require.NoError(t, err)
	assert.Len(t, holdings, 1)
}

func TestAccrueIncome_DeletedProductEarnsNothing(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 50, 24, 60, 10, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	delete(store.products, 1)

	clk.advance(24 * time.Hour)
	earned, err := engine.AccrueIncome(ctx, "01011111111")
	require.NoError(t, err)
	assert.Zero(t, earned)
}

func TestAccrueIncome_TightPollingDropsFlooredIncome(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 50, 24, 60, 10, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	_, err = engine.Register(ctx, "01022222222", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01022222222", 1))

	// At 24/day a pass earns 0.01 only after 36s. 18s slices each fall
	// below the floor and advance the anchor with nothing credited, so a
	// client allowed to trigger accrual on every read would lose the lot.
	// This is why only login and the background sweep run a pass.
	var polled float64
	for i := 0; i < 100; i++ {
		clk.advance(18 * time.Second)
		earned, err := engine.AccrueIncome(ctx, "01011111111")
		require.NoError(t, err)
		polled += earned
	}
	assert.Zero(t, polled)

	// One coarse pass over the same 30 minutes credits the full amount.
	once, err := engine.AccrueIncome(ctx, "01022222222")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, once, 1e-9)
}

func TestPurchase_PerUserLimit(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 10, 1, 60, 100, 2)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)

	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))
	err = engine.Purchase(ctx, "01011111111", 1)
	assert.ErrorIs(t, err, ErrLimitReached)

	holdings, err := store.Holdings(ctx, "01011111111")
	require.NoError(t, err)
	assert.Len(t, holdings, 2)
}

func TestPurchase_InsufficientBalance(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 500, 1, 60, 100, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)

	err = engine.Purchase(ctx, "01011111111", 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 100.00, store.users["01011111111"].Balance)
	assert.Equal(t, 0, store.products[1].SoldCount)
}

func TestPurchase_SoldOut(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 10, 1, 60, 1, 0)

	_, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000B", "hashed", "")
	require.NoError(t, err)

	require.NoError(t, engine.Purchase(ctx, "0100000000A", 1))
	err = engine.Purchase(ctx, "0100000000B", 1)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, 1, store.products[1].SoldCount)

	// Selling the unit frees it for the other buyer.
	holdings, err := store.Holdings(ctx, "0100000000A")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.NoError(t, engine.Sell(ctx, "0100000000A", holdings[0].ID))
	assert.Equal(t, 0, store.products[1].SoldCount)
	require.NoError(t, engine.Purchase(ctx, "0100000000B", 1))
}

func TestPurchase_BonusCascade(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 100, 1, 60, 100, 0)

	a, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	b, err := engine.Register(ctx, "0100000000B", "hashed", a.InviteCode)
	require.NoError(t, err)
	c, err := engine.Register(ctx, "0100000000C", "hashed", b.InviteCode)
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000D", "hashed", c.InviteCode)
	require.NoError(t, err)

	require.NoError(t, engine.Purchase(ctx, "0100000000D", 1))

	// 35% / 2% / 1% of the 100 EGP price, on top of the 100 welcome bonus.
	assert.InDelta(t, 135.00, store.users["0100000000C"].Balance, 1e-9)
	assert.InDelta(t, 102.00, store.users["0100000000B"].Balance, 1e-9)
	assert.InDelta(t, 101.00, store.users["0100000000A"].Balance, 1e-9)

	assert.InDelta(t, 35.00, store.users["0100000000C"].TeamBonusLv1, 1e-9)
	assert.InDelta(t, 2.00, store.users["0100000000B"].TeamBonusLv2, 1e-9)
	assert.InDelta(t, 1.00, store.users["0100000000A"].TeamBonusLv3, 1e-9)

	// The buyer pays the full price; no bonus reflects back.
	assert.InDelta(t, 0.00, store.users["0100000000D"].Balance, 1e-9)
}

func TestPurchase_CommissionOverride(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 100, 1, 60, 100, 0)

	a, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000B", "hashed", a.InviteCode)
	require.NoError(t, err)

	store.users["0100000000A"].CommissionRates = datatypes.JSON([]byte(`{"lv1":0.5}`))

	require.NoError(t, engine.Purchase(ctx, "0100000000B", 1))
	assert.InDelta(t, 150.00, store.users["0100000000A"].Balance, 1e-9)
	assert.InDelta(t, 50.00, store.users["0100000000A"].TeamBonusLv1, 1e-9)
}

func TestPurchase_LowBalanceNotification(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 100, 1, 60, 100, 0)
	seedProduct(store, 2, 10, 1, 60, 100, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	store.users["01011111111"].Balance = 120

	lowBalanceCount := func() int {
		n := 0
		for _, notif := range store.notificationsOf("01011111111") {
			if notif.Title == "Low balance" {
				n++
			}
		}
		return n
	}

	// 120 -> 20 crosses the 50 EGP threshold.
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))
	assert.Equal(t, 1, lowBalanceCount())

	// 20 -> 10 is already below it; no repeat warning.
	require.NoError(t, engine.Purchase(ctx, "01011111111", 2))
	assert.Equal(t, 1, lowBalanceCount())
}

func TestSell_FlatBuyBackRate(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 80, 1, 60, 100, 0)

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "01011111111", 1))

	holdings, err := store.Holdings(ctx, "01011111111")
	require.NoError(t, err)
	require.Len(t, holdings, 1)

	require.NoError(t, engine.Sell(ctx, "01011111111", holdings[0].ID))

	// 100 - 80 + 8 (10% of the purchase price).
	assert.InDelta(t, 28.00, store.users["01011111111"].Balance, 1e-9)
	holdings, err = store.Holdings(ctx, "01011111111")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSell_OtherUsersHolding(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 10, 1, 60, 100, 0)

	_, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000B", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.Purchase(ctx, "0100000000A", 1))

	holdings, err := store.Holdings(ctx, "0100000000A")
	require.NoError(t, err)
	err = engine.Sell(ctx, "0100000000B", holdings[0].ID)
	assert.ErrorIs(t, err, ErrHoldingNotFound)
}

func withdrawReadyUser(t *testing.T, engine *Engine, store *memStore, phone string) {
	t.Helper()
	ctx := context.Background()
	_, err := engine.Register(ctx, phone, "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.LinkWallet(ctx, phone, "vodafone_cash", "Test Owner", "01099999999"))
	require.NoError(t, engine.SetWithdrawalPassword(ctx, phone, "secret123"))
	store.users[phone].Balance = 2000
}

func TestWithdraw_WindowEnforced(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()
	store.window = WithdrawalWindow{StartHour: 10, EndHour: 18}
	withdrawReadyUser(t, engine, store, "01011111111")

	// 06:00 UTC is 08:00 local, before the window opens.
	clk.now = time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	err := engine.Withdraw(ctx, "01011111111", 1000, "secret123")
	assert.ErrorIs(t, err, ErrOutsideWithdrawalWindow)

	// 10:00 UTC is 12:00 local, inside the window.
	clk.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, engine.Withdraw(ctx, "01011111111", 1000, "secret123"))
}

func TestWithdraw_DebitsFullAmountWithDisplayFee(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	withdrawReadyUser(t, engine, store, "01011111111")

	require.NoError(t, engine.Withdraw(ctx, "01011111111", 1000, "secret123"))

	// The full 1000 leaves the balance; the 15% fee is informational.
	assert.InDelta(t, 1000.00, store.users["01011111111"].Balance, 1e-9)

	txs := store.transactionsOf("01011111111")
	wd := txs[len(txs)-1]
	assert.Equal(t, models.TxWithdraw, wd.Type)
	assert.Equal(t, models.TxStatusPending, wd.Status)
	assert.InDelta(t, -1000.00, wd.Amount, 1e-9)
	assert.InDelta(t, 150.00, wd.Fee, 1e-9)
}

func TestWithdraw_LowBalanceNotification(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	withdrawReadyUser(t, engine, store, "01011111111")

	lowBalanceCount := func() int {
		n := 0
		for _, notif := range store.notificationsOf("01011111111") {
			if notif.Title == "Low balance" {
				n++
			}
		}
		return n
	}

	// 2000 -> 1000 stays above the 50 EGP threshold.
	require.NoError(t, engine.Withdraw(ctx, "01011111111", 1000, "secret123"))
	assert.Equal(t, 0, lowBalanceCount())

	// 1000 -> 40 crosses it.
	require.NoError(t, engine.Withdraw(ctx, "01011111111", 960, "secret123"))
	assert.Equal(t, 1, lowBalanceCount())
}

func TestWithdraw_Preconditions(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	withdrawReadyUser(t, engine, store, "01011111111")

	err := engine.Withdraw(ctx, "01011111111", 50, "secret123")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	err = engine.Withdraw(ctx, "01011111111", 70000, "secret123")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	err = engine.Withdraw(ctx, "01011111111", 1000, "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	err = engine.Withdraw(ctx, "01011111111", 3000, "secret123")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestWithdraw_RejectRefunds(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	withdrawReadyUser(t, engine, store, "01011111111")

	require.NoError(t, engine.Withdraw(ctx, "01011111111", 1000, "secret123"))
	txs := store.transactionsOf("01011111111")
	wd := txs[len(txs)-1]

	require.NoError(t, engine.RejectTransaction(ctx, wd.ID, "wallet mismatch"))

	assert.InDelta(t, 2000.00, store.users["01011111111"].Balance, 1e-9)
	rejected, err := store.Transaction(ctx, wd.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusRejected, rejected.Status)
	assert.Contains(t, rejected.Description, "wallet mismatch")

	// A resolved entry cannot be reviewed again.
	err = engine.ApproveTransaction(ctx, wd.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestWithdraw_ApproveKeepsDebit(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	withdrawReadyUser(t, engine, store, "01011111111")

	require.NoError(t, engine.Withdraw(ctx, "01011111111", 1000, "secret123"))
	txs := store.transactionsOf("01011111111")
	wd := txs[len(txs)-1]

	require.NoError(t, engine.ApproveTransaction(ctx, wd.ID))
	assert.InDelta(t, 1000.00, store.users["01011111111"].Balance, 1e-9)
	approved, err := store.Transaction(ctx, wd.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, approved.Status)
}

func TestLinkWallet_OnceOnly(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.LinkWallet(ctx, "01011111111", "vodafone_cash", "Owner", "01099999999"))

	err = engine.LinkWallet(ctx, "01011111111", "etisalat_cash", "Owner", "01098888888")
	assert.ErrorIs(t, err, ErrWalletAlreadyLinked)
}

func TestSetWithdrawalPassword_OnceOnly(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.SetWithdrawalPassword(ctx, "01011111111", "secret123"))

	err = engine.SetWithdrawalPassword(ctx, "01011111111", "another")
	assert.ErrorIs(t, err, ErrPasswordAlreadySet)

	// The recovery path may overwrite it.
	require.NoError(t, engine.ResetWithdrawalPassword(ctx, "01011111111", "another"))
}

func TestRecharge_ApprovalCreditsWithPromo(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	store.promos["BONUS10"] = &models.PromoCode{Code: "BONUS10", BonusPercent: 10, RemainingUses: 1}

	_, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000B", "hashed", "")
	require.NoError(t, err)

	require.NoError(t, engine.RequestRecharge(ctx, "0100000000A", 200, "BONUS10"))
	// Pending: nothing credited yet, promo untouched.
	assert.InDelta(t, 100.00, store.users["0100000000A"].Balance, 1e-9)
	assert.Equal(t, 1, store.promos["BONUS10"].RemainingUses)

	txs := store.transactionsOf("0100000000A")
	rc := txs[len(txs)-1]
	require.NoError(t, engine.ApproveTransaction(ctx, rc.ID))
	assert.InDelta(t, 320.00, store.users["0100000000A"].Balance, 1e-9)
	assert.Equal(t, 0, store.promos["BONUS10"].RemainingUses)

	// The exhausted code no longer grants a bonus.
	require.NoError(t, engine.RequestRecharge(ctx, "0100000000B", 200, "BONUS10"))
	txs = store.transactionsOf("0100000000B")
	rc = txs[len(txs)-1]
	require.NoError(t, engine.ApproveTransaction(ctx, rc.ID))
	assert.InDelta(t, 300.00, store.users["0100000000B"].Balance, 1e-9)
}

func TestRecharge_RejectLeavesBalance(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)
	require.NoError(t, engine.RequestRecharge(ctx, "01011111111", 500, ""))

	txs := store.transactionsOf("01011111111")
	rc := txs[len(txs)-1]
	require.NoError(t, engine.RejectTransaction(ctx, rc.ID, "no payment received"))
	assert.InDelta(t, 100.00, store.users["01011111111"].Balance, 1e-9)
}

func TestDailyCheckIn_OncePerLocalDay(t *testing.T) {
	engine, store, clk := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)

	reward, err := engine.DailyCheckIn(ctx, "01011111111")
	require.NoError(t, err)
	assert.Equal(t, 5.00, reward)
	assert.InDelta(t, 105.00, store.users["01011111111"].Balance, 1e-9)

	_, err = engine.DailyCheckIn(ctx, "01011111111")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	checked, err := engine.HasCheckedInToday(ctx, "01011111111")
	require.NoError(t, err)
	assert.True(t, checked)

	// 22:00 UTC the same evening is already 00:00 next day local; the
	// calendar flips even though fewer than 24 hours passed.
	clk.advance(14 * time.Hour)
	checked, err = engine.HasCheckedInToday(ctx, "01011111111")
	require.NoError(t, err)
	assert.False(t, checked)

	_, err = engine.DailyCheckIn(ctx, "01011111111")
	require.NoError(t, err)
	assert.InDelta(t, 110.00, store.users["01011111111"].Balance, 1e-9)
}

func TestMarkNotificationsRead(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Register(ctx, "01011111111", "hashed", "")
	require.NoError(t, err)

	require.NoError(t, engine.MarkNotificationsRead(ctx, "01011111111"))
	for _, n := range store.notificationsOf("01011111111") {
		assert.True(t, n.Read)
	}
}

// A registers, B joins with A's code and invests: A ends up with the welcome
// bonus plus the level-1 cut of B's purchase.
func TestReferralEndToEnd(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	seedProduct(store, 1, 200, 10, 60, 100, 0)

	a, err := engine.Register(ctx, "0100000000A", "hashed", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, "0100000000B", "hashed", a.InviteCode)
	require.NoError(t, err)

	require.NoError(t, engine.RequestRecharge(ctx, "0100000000B", 500, ""))
	txs := store.transactionsOf("0100000000B")
	require.NoError(t, engine.ApproveTransaction(ctx, txs[len(txs)-1].ID))

	require.NoError(t, engine.Purchase(ctx, "0100000000B", 1))

	assert.InDelta(t, 170.00, store.users["0100000000A"].Balance, 1e-9)
	assert.InDelta(t, 400.00, store.users["0100000000B"].Balance, 1e-9)
	assert.InDelta(t, 70.00, store.users["0100000000A"].TeamBonusLv1, 1e-9)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "****1111", MaskPhone("01011111111"))
	assert.Equal(t, "1234", MaskPhone("1234"))
}

func TestTransactionIDFormat(t *testing.T) {
	engine, _, _ := newTestEngine()

	id := engine.newTransactionID()
	require.Len(t, id, 21)
	assert.Equal(t, byte('T'), id[0])
	assert.Equal(t, "20250601", id[1:9])
}
