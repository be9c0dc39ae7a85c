package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/verve/internal/middleware"
	"github.com/example/verve/internal/models"
)

// CartHandler manages the authenticated user's cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

func (h *CartHandler) cartForUser(c *fiber.Ctx, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.WithContext(c.Context()).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := h.db.WithContext(c.Context()).Create(&cart).Error; err != nil {
			// A concurrent request may have created it first.
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
			if err := h.db.WithContext(c.Context()).Where("user_id = ?", userID).First(&cart).Error; err != nil {
				return nil, err
			}
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart returns the user's cart, creating an empty one on first access.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.cartForUser(c, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": cart})
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem puts a product into the cart or bumps its quantity.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil || req.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product or quantity")
	}

	var product models.Product
	if err := h.db.WithContext(c.Context()).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	cart, err := h.cartForUser(c, userID)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += req.Quantity
			if err := h.db.WithContext(c.Context()).Save(&cart.Items[i]).Error; err != nil {
				return err
			}
			return c.JSON(fiber.Map{"success": true, "data": cart})
		}
	}

	price := product.Price
	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  req.Quantity,
		Price:     &price,
	}
	if err := h.db.WithContext(c.Context()).Create(&item).Error; err != nil {
		return err
	}
	cart.Items = append(cart.Items, item)

	return c.JSON(fiber.Map{"success": true, "data": cart})
}

// RemoveItem drops a product from the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	cart, err := h.cartForUser(c, userID)
	if err != nil {
		return err
	}

	if err := h.db.WithContext(c.Context()).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
