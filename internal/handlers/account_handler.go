package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/middleware"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

// AccountHandler serves the authenticated user's own account screens:
// profile, transaction history, holdings, notifications and referral team.
type AccountHandler struct {
	db     *gorm.DB
	engine *ledger.Engine
}

func NewAccountHandler(db *gorm.DB, engine *ledger.Engine) *AccountHandler {
	return &AccountHandler{db: db, engine: engine}
}

// Me returns the profile as of the last accrual pass. Income accrues at
// login and on the background sweep only; accruing here would let tight
// polling slice the interval below the minimum income entry and drop it.
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.engine.User(c.Context(), phone)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(user)
}

func (h *AccountHandler) Transactions(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	q := h.db.WithContext(c.Context()).
		Where("user_phone = ?", phone).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if txType := c.Query("type"); txType != "" {
		q = q.Where("type = ?", txType)
	}

	var txs []models.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch transactions",
		})
	}

	return c.JSON(txs)
}

func (h *AccountHandler) Holdings(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var holdings []models.Holding
	if err := h.db.WithContext(c.Context()).
		Where("user_phone = ?", phone).
		Order("purchased_at DESC").
		Find(&holdings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch holdings",
		})
	}

	// One product lookup per distinct product id.
	products := make(map[int64]*models.Product)
	result := make([]fiber.Map, 0, len(holdings))
	for _, hld := range holdings {
		product, seen := products[hld.ProductID]
		if !seen {
			var p models.Product
			if err := h.db.WithContext(c.Context()).First(&p, "id = ?", hld.ProductID).Error; err == nil {
				product = &p
			}
			products[hld.ProductID] = product
		}
		entry := fiber.Map{
			"id":           hld.ID,
			"product_id":   hld.ProductID,
			"purchased_at": hld.PurchasedAt,
		}
		if product != nil {
			entry["product"] = product
		}
		result = append(result, entry)
	}

	return c.JSON(result)
}

func (h *AccountHandler) Notifications(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var notifs []models.Notification
	if err := h.db.WithContext(c.Context()).
		Where("user_phone = ?", phone).
		Order("created_at DESC").
		Limit(100).
		Find(&notifs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch notifications",
		})
	}

	return c.JSON(notifs)
}

func (h *AccountHandler) MarkNotificationsRead(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.engine.MarkNotificationsRead(c.Context(), phone); err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Notifications marked as read"})
}

// Team lists the three referral levels with member phones masked and the
// accumulated bonus per level.
func (h *AccountHandler) Team(c *fiber.Ctx) error {
	phone, ok := middleware.UserPhone(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.engine.User(c.Context(), phone)
	if err != nil {
		return ledgerError(c, err)
	}

	var members []models.TeamMember
	if err := h.db.WithContext(c.Context()).
		Where("referrer_phone = ?", phone).
		Order("level ASC, created_at ASC").
		Find(&members).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch team",
		})
	}

	resp := dto.TeamResponse{
		Lv1: dto.TeamLevel{Members: []string{}, Bonus: user.TeamBonusLv1},
		Lv2: dto.TeamLevel{Members: []string{}, Bonus: user.TeamBonusLv2},
		Lv3: dto.TeamLevel{Members: []string{}, Bonus: user.TeamBonusLv3},
	}
	for _, m := range members {
		masked := ledger.MaskPhone(m.MemberPhone)
		switch m.Level {
		case 1:
			resp.Lv1.Members = append(resp.Lv1.Members, masked)
		case 2:
			resp.Lv2.Members = append(resp.Lv2.Members, masked)
		case 3:
			resp.Lv3.Members = append(resp.Lv3.Members, masked)
		}
	}

	return c.JSON(resp)
}
