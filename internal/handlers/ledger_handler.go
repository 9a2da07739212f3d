package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/middleware"
)

// LedgerHandler serves the money-moving endpoints: purchases, sell-backs,
// withdrawals, recharges, daily check-in and wallet management.
type LedgerHandler struct {
	engine *ledger.Engine
}

func NewLedgerHandler(engine *ledger.Engine) *LedgerHandler {
	return &LedgerHandler{engine: engine}
}

func (h *LedgerHandler) Purchase(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.engine.Purchase(c.Context(), phone, req.ProductID); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Purchase successful"})
}

func (h *LedgerHandler) Sell(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SellRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	holdingID, err := uuid.Parse(req.HoldingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid holding id",
		})
	}

	if err := h.engine.Sell(c.Context(), phone, holdingID); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Holding sold"})
}

func (h *LedgerHandler) Withdraw(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.engine.Withdraw(c.Context(), phone, req.Amount, req.WithdrawalPassword); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Withdrawal submitted for review"})
}

func (h *LedgerHandler) Recharge(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.engine.RequestRecharge(c.Context(), phone, req.Amount, req.PromoCode); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Recharge submitted for review"})
}

func (h *LedgerHandler) CheckIn(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reward, err := h.engine.DailyCheckIn(c.Context(), phone)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(dto.CheckInResponse{Reward: reward, Message: "Check-in reward credited"})
}

func (h *LedgerHandler) CheckInStatus(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	checked, err := h.engine.HasCheckedInToday(c.Context(), phone)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(dto.CheckInStatusResponse{CheckedInToday: checked})
}

func (h *LedgerHandler) LinkWallet(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.LinkWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.WalletType == "" || req.OwnerName == "" || req.WalletNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Wallet type, owner name and wallet number are required",
		})
	}

	if err := h.engine.LinkWallet(c.Context(), phone, req.WalletType, req.OwnerName, req.WalletNumber); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Wallet linked"})
}

func (h *LedgerHandler) SetWithdrawalPassword(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.WithdrawalPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Withdrawal password must be at least 6 characters",
		})
	}

	if err := h.engine.SetWithdrawalPassword(c.Context(), phone, req.Password); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Withdrawal password set"})
}
