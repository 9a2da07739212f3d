package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// AdminHandler serves the review queue: pending recharges and withdrawals
// awaiting an approve/reject decision.
type AdminHandler struct {
	db     *gorm.DB
	engine *ledger.Engine
}

func NewAdminHandler(db *gorm.DB, engine *ledger.Engine) *AdminHandler {
	return &AdminHandler{db: db, engine: engine}
}

// PendingTransactions lists pending entries oldest first, optionally
// filtered by ?type=recharge|withdraw.
func (h *AdminHandler) PendingTransactions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	q := h.db.WithContext(c.Context()).
		Where("status = ?", models.TxStatusPending).
		Order("created_at ASC").
		Limit(limit)
	if txType := c.Query("type"); txType != "" {
		q = q.Where("type = ?", txType)
	}

	var txs []models.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch pending transactions",
		})
	}

	// The user phone is hidden from the owner's own history but the
	// reviewer needs it.
	result := make([]fiber.Map, 0, len(txs))
	for _, t := range txs {
		result = append(result, fiber.Map{
			"id":          t.ID,
			"user_phone":  t.UserPhone,
			"type":        t.Type,
			"description": t.Description,
			"amount":      t.Amount,
			"fee":         t.Fee,
			"promo_code":  t.PromoCode,
			"created_at":  t.CreatedAt,
		})
	}

	return c.JSON(result)
}

func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	txID := c.Params("id")
	if txID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Transaction id is required",
		})
	}

	if err := h.engine.ApproveTransaction(c.Context(), txID); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction approved"})
}

func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	txID := c.Params("id")
	if txID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Transaction id is required",
		})
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.engine.RejectTransaction(c.Context(), txID, req.Reason); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction rejected"})
}

// ListUsers is a paginated roster for the admin dashboard.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var users []models.User
	if err := h.db.WithContext(c.Context()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch users",
		})
	}

	return c.JSON(users)
}
