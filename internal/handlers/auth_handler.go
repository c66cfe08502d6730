package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"grosir/internal/apperror"
	"grosir/internal/services"
	"grosir/pkg/result"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	out         result.Writer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, out result.Writer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		out:         out,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return h.out.Send(c, nil, apperror.InvalidInput("Invalid request body"))
	}
	if err := h.validateRequest(req); err != nil {
		return h.out.Send(c, nil, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return h.out.Send(c, nil, err)
	}

	return h.out.Send(c, fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	}, nil)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return h.out.Send(c, nil, apperror.InvalidInput("Invalid request body"))
	}
	if err := h.validateRequest(req); err != nil {
		return h.out.Send(c, nil, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		if errors.Is(err, services.ErrInvalidCredentials) {
			return h.out.Send(c, nil, apperror.Unauthorized("Invalid username or password"))
		}
		return h.out.Send(c, nil, err)
	}

	return h.out.Send(c, fiber.Map{
		"message": "Login successful",
		"token":   token,
	}, nil)
}

func (h *AuthHandler) validateRequest(req interface{}) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.InvalidInput("Validation failed")
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return apperror.InvalidInput("Validation failed: " + strings.Join(messages, "; "))
}
