package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/services"
	"github.com/northmart/backend-go/utils"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type CreateOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), userID, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusCreated, "Order created successfully", map[string]interface{}{"order": order})
}

func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	list, err := h.orders.GetUserOrders(c.Request().Context(), userID, orderFilterFromQuery(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Orders retrieved successfully", list)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid order ID"))
	}

	order, err := h.orders.GetOrder(c.Request().Context(), orderID, userID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Order retrieved successfully", map[string]interface{}{"order": order})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid order ID"))
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	order, err := h.orders.CancelOrder(c.Request().Context(), orderID, userID, req.Reason)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Order cancelled successfully", map[string]interface{}{"order": order})
}

// GetAllOrders is the admin listing across all users.
func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	list, err := h.orders.GetAllOrders(c.Request().Context(), orderFilterFromQuery(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Orders retrieved successfully", list)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid order ID"))
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
		Note   string             `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	order, err := h.orders.UpdateOrderStatus(c.Request().Context(), orderID, req.Status, req.Note)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Order status updated successfully", map[string]interface{}{"order": order})
}

func orderFilterFromQuery(c echo.Context) repository.OrderFilter {
	filter := repository.OrderFilter{
		Status: models.OrderStatus(c.QueryParam("status")),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return filter
}
