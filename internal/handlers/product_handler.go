package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/models"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.ProductCategory
	if err := h.db.WithContext(c.Context()).Order("id ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch categories",
		})
	}
	return c.JSON(categories)
}

// List returns the catalog, optionally filtered by ?category_id=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := h.db.WithContext(c.Context()).Order("id ASC")
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid category_id",
			})
		}
		q = q.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch products",
		})
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	var product models.Product
	if err := h.db.WithContext(c.Context()).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch product",
		})
	}
	return c.JSON(product)
}

// Create adds a catalog entry (admin only). IDs are assigned as max+1 so they
// stay small and stable for the mobile client.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Title == "" || req.Price <= 0 || req.DailyIncome < 0 || req.Validity <= 0 || req.TotalQuantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Title, price, daily income, validity and quantity are required",
		})
	}

	var product models.Product
	err := h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&models.Product{}).
			Select("COALESCE(MAX(id), 0)").
			Scan(&maxID).Error; err != nil {
			return err
		}
		product = models.Product{
			ID:            maxID + 1,
			CategoryID:    req.CategoryID,
			Title:         req.Title,
			Description:   req.Description,
			Price:         req.Price,
			DailyIncome:   req.DailyIncome,
			Validity:      req.Validity,
			TotalQuantity: req.TotalQuantity,
			PurchaseLimit: req.PurchaseLimit,
			IconURL:       req.IconURL,
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create product",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	var req dto.ProductUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	var product models.Product
	if err := h.db.WithContext(c.Context()).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch product",
		})
	}

	product.CategoryID = req.CategoryID
	product.Title = req.Title
	product.Description = req.Description
	product.Price = req.Price
	product.DailyIncome = req.DailyIncome
	product.Validity = req.Validity
	product.TotalQuantity = req.TotalQuantity
	product.PurchaseLimit = req.PurchaseLimit
	product.IconURL = req.IconURL

	if err := h.db.WithContext(c.Context()).Save(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update product",
		})
	}
	return c.JSON(product)
}

// Delete removes a catalog entry. Existing holdings keep their rows; income
// accrual simply skips holdings whose product is gone.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	result := h.db.WithContext(c.Context()).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete product",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Product not found",
		})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
