package handlers

import (
	"log"
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/services"
	"github.com/northmart/backend-go/utils"
)

type AuthHandler struct {
	users     repository.UserRepository
	queue     services.JobEnqueuer
	jwtSecret string
}

func NewAuthHandler(users repository.UserRepository, queue services.JobEnqueuer, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, queue: queue, jwtSecret: jwtSecret}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	if !isValidEmail(req.Email) {
		return utils.Fail(c, utils.BadRequest("Invalid email format"))
	}
	if len(req.Password) < 8 {
		return utils.Fail(c, utils.BadRequest("Password must be at least 8 characters"))
	}

	ctx := c.Request().Context()
	if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
		return utils.Fail(c, utils.Conflict("Email already registered"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, err)
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      models.RoleCustomer,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.users.Insert(ctx, user); err != nil {
		return utils.Fail(c, err)
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(ctx, services.JobWelcomeEmail, services.UserJobPayload{UserID: user.ID.Hex()}); err != nil {
			log.Printf("failed to enqueue welcome email: %v", err)
		}
	}

	token, err := utils.GenerateJWT(h.jwtSecret, user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Fail(c, err)
	}

	return utils.Success(c, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return utils.Fail(c, utils.Unauthorized("Invalid email or password"))
	}
	if !user.IsActive {
		return utils.Fail(c, utils.Forbidden("User account is deactivated"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.Fail(c, utils.Unauthorized("Invalid email or password"))
	}

	token, err := utils.GenerateJWT(h.jwtSecret, user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Fail(c, err)
	}

	return utils.Success(c, http.StatusOK, "Logged in successfully", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return utils.Fail(c, utils.NotFound("User not found"))
	}
	return utils.Success(c, http.StatusOK, "Profile retrieved successfully", map[string]interface{}{"user": user})
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
