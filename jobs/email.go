package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/services"
)

// Mailer delivers a single message, best effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the process log instead of sending them.
// Wire a real SMTP or provider-backed Mailer in its place in production.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("email to %s: %s", to, subject)
	return nil
}

// EmailJobs holds the handlers for queued email deliveries.
type EmailJobs struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	mailer Mailer
}

func NewEmailJobs(users repository.UserRepository, orders repository.OrderRepository, mailer Mailer) *EmailJobs {
	return &EmailJobs{users: users, orders: orders, mailer: mailer}
}

// Register attaches the email handlers to the worker.
func (e *EmailJobs) Register(w *Worker) {
	w.Handle(services.JobOrderConfirmation, e.orderConfirmation)
	w.Handle(services.JobOrderShipped, e.orderShipped)
	w.Handle(services.JobWelcomeEmail, e.welcome)
}

func (e *EmailJobs) orderConfirmation(ctx context.Context, payload json.RawMessage) error {
	user, order, err := e.resolveOrder(ctx, payload)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Order confirmation - %s", order.OrderNumber)
	body := fmt.Sprintf("Hi %s, we received your order %s (%d item(s), total %.2f).",
		user.Name, order.OrderNumber, len(order.Items), order.Total)
	return e.mailer.Send(ctx, user.Email, subject, body)
}

func (e *EmailJobs) orderShipped(ctx context.Context, payload json.RawMessage) error {
	user, order, err := e.resolveOrder(ctx, payload)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your order %s has shipped", order.OrderNumber)
	body := fmt.Sprintf("Hi %s, order %s is on its way.", user.Name, order.OrderNumber)
	if order.TrackingNumber != "" {
		body += fmt.Sprintf(" Tracking number: %s.", order.TrackingNumber)
	}
	return e.mailer.Send(ctx, user.Email, subject, body)
}

func (e *EmailJobs) welcome(ctx context.Context, payload json.RawMessage) error {
	var p services.UserJobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	user, err := e.lookupUser(ctx, p.UserID)
	if err != nil {
		return err
	}

	return e.mailer.Send(ctx, user.Email, "Welcome to Northmart", fmt.Sprintf("Hi %s, welcome aboard.", user.Name))
}

func (e *EmailJobs) resolveOrder(ctx context.Context, payload json.RawMessage) (*models.User, *models.Order, error) {
	var p services.OrderJobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, nil, err
	}

	user, err := e.lookupUser(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}

	orderID, err := primitive.ObjectIDFromHex(p.OrderID)
	if err != nil {
		return nil, nil, err
	}
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return user, order, nil
}

func (e *EmailJobs) lookupUser(ctx context.Context, hexID string) (*models.User, error) {
	userID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, err
	}
	return e.users.GetByID(ctx, userID)
}
