package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/verve/internal/middleware"
	"github.com/example/verve/internal/models"
	"github.com/example/verve/internal/utils"
)

// OrderHandler serves the authenticated user's order history.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders returns orders for the authenticated user, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.Context()).Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.WithContext(c.Context()).Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
