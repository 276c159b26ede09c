package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/services"
	"github.com/northmart/backend-go/utils"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid order ID"))
	}

	result, err := h.payments.CreatePaymentIntent(c.Request().Context(), orderID, userID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusCreated, "Payment intent created successfully", result)
}

func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	var req struct {
		PaymentID       string `json:"paymentId"`
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	paymentID, err := primitive.ObjectIDFromHex(req.PaymentID)
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid payment ID"))
	}

	payment, err := h.payments.ConfirmPayment(c.Request().Context(), paymentID, req.PaymentIntentID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Payment confirmed successfully", map[string]interface{}{"payment": payment})
}

// ProcessRefund is admin-only: refunds a succeeded payment and flips the
// order to refunded.
func (h *PaymentHandler) ProcessRefund(c echo.Context) error {
	var req struct {
		PaymentID string  `json:"paymentId"`
		Amount    float64 `json:"amount"`
		Reason    string  `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	paymentID, err := primitive.ObjectIDFromHex(req.PaymentID)
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid payment ID"))
	}

	payment, err := h.payments.ProcessRefund(c.Request().Context(), paymentID, req.Amount, req.Reason)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Refund processed successfully", map[string]interface{}{"payment": payment})
}

func (h *PaymentHandler) GetPaymentByOrder(c echo.Context) error {
	orderID, err := pathObjectID(c, "orderId")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid order ID"))
	}

	payment, err := h.payments.GetPaymentByOrder(c.Request().Context(), orderID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Payment retrieved successfully", map[string]interface{}{"payment": payment})
}

// Webhook receives provider-pushed payment events. The signature is
// verified before anything is applied; the body must be read raw for
// verification to work.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid webhook body"))
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.payments.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Webhook processed", nil)
}
