package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/services"
	"github.com/northmart/backend-go/utils"
)

type CartHandler struct {
	carts *services.CartService
}

func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	cart, err := h.carts.GetCart(c.Request().Context(), userID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Cart retrieved successfully", map[string]interface{}{"cart": cart})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	cart, err := h.carts.AddToCart(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Item added to cart", map[string]interface{}{"cart": cart})
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	itemID, err := pathObjectID(c, "itemId")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid item ID"))
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	cart, err := h.carts.UpdateCartItem(c.Request().Context(), userID, itemID, req.Quantity)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Cart item updated successfully", map[string]interface{}{"cart": cart})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	itemID, err := pathObjectID(c, "itemId")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid item ID"))
	}

	cart, err := h.carts.RemoveFromCart(c.Request().Context(), userID, itemID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Item removed from cart", map[string]interface{}{"cart": cart})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	cart, err := h.carts.ClearCart(c.Request().Context(), userID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Cart cleared successfully", map[string]interface{}{"cart": cart})
}

// SyncCartPrices refreshes line-item prices to current catalog prices.
func (h *CartHandler) SyncCartPrices(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	cart, err := h.carts.SyncCartPrices(c.Request().Context(), userID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Cart prices synced successfully", map[string]interface{}{"cart": cart})
}
