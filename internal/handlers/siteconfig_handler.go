package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

type SiteConfigHandler struct {
	db *gorm.DB
}

func NewSiteConfigHandler(db *gorm.DB) *SiteConfigHandler {
	return &SiteConfigHandler{db: db}
}

// GetConfig returns all site configuration as a typed map (public).
func (h *SiteConfigHandler) GetConfig(c *fiber.Ctx) error {
	var configs []models.SiteConfig
	if err := h.db.WithContext(c.Context()).Find(&configs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch configuration",
		})
	}

	// Convert to map for easier consumption
	result := make(map[string]interface{})
	for _, cfg := range configs {
		var value interface{}
		switch cfg.Type {
		case "bool":
			value, _ = strconv.ParseBool(cfg.Value)
		case "int":
			value, _ = strconv.Atoi(cfg.Value)
		case "json":
			json.Unmarshal([]byte(cfg.Value), &value)
		default:
			value = cfg.Value
		}
		result[cfg.Key] = value
	}

	return c.JSON(result)
}

// SetConfigKey sets or updates a config key (admin only)
func (h *SiteConfigHandler) SetConfigKey(c *fiber.Ctx) error {
	key := c.Params("key", "")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	var payload dto.SiteConfigUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if payload.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Value is required",
		})
	}
	if payload.Type == "" {
		payload.Type = "string"
	}

	config := models.SiteConfig{Key: key, Value: payload.Value, Type: payload.Type}
	if err := h.db.WithContext(c.Context()).Save(&config).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update config",
		})
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config updated successfully",
		"config":  config,
	})
}

// DeleteConfigKey deletes a config key (admin only)
func (h *SiteConfigHandler) DeleteConfigKey(c *fiber.Ctx) error {
	key := c.Params("key", "")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	result := h.db.WithContext(c.Context()).Delete(&models.SiteConfig{}, "key = ?", key)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete config",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Config not found",
		})
	}

	return c.JSON(fiber.Map{"error": false, "message": "Config deleted successfully"})
}

// ListPromoCodes lists all promo codes (admin only).
func (h *SiteConfigHandler) ListPromoCodes(c *fiber.Ctx) error {
	var codes []models.PromoCode
	if err := h.db.WithContext(c.Context()).Order("created_at DESC").Find(&codes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch promo codes",
		})
	}
	return c.JSON(codes)
}

// UpsertPromoCode creates or replaces a promo code (admin only).
func (h *SiteConfigHandler) UpsertPromoCode(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code", "")))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Code parameter is required",
		})
	}

	var payload dto.PromoCodeUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if payload.BonusPercent <= 0 || payload.RemainingUses < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Bonus percent must be positive and remaining uses non-negative",
		})
	}

	promo := models.PromoCode{
		Code:          code,
		BonusPercent:  payload.BonusPercent,
		RemainingUses: payload.RemainingUses,
	}
	if err := h.db.WithContext(c.Context()).Save(&promo).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save promo code",
		})
	}

	return c.JSON(promo)
}

// DeletePromoCode removes a promo code (admin only).
func (h *SiteConfigHandler) DeletePromoCode(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code", "")))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Code parameter is required",
		})
	}

	result := h.db.WithContext(c.Context()).Delete(&models.PromoCode{}, "code = ?", code)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete promo code",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Promo code not found",
		})
	}

	return c.JSON(fiber.Map{"error": false, "message": "Promo code deleted successfully"})
}
