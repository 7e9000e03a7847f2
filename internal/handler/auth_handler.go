package handler

import (
	"errors"

	"stockcast-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
	frontendURL string
}

func NewAuthHandler(authService service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new email/password account
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, password, and name are required"})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 6 characters"})
	}

	response, err := h.authService.Signup(req.Email, req.Password, req.Name)
	if errors.Is(err, service.ErrUserExists) {
		return c.Status(400).JSON(fiber.Map{"error": "User already exists"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.Status(201).JSON(response)
}

// Login handles email/password authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Return 401 for authentication errors
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// GoogleURL returns the Google consent screen URL
// GET /api/v1/auth/google/url
func (h *AuthHandler) GoogleURL(c *fiber.Ctx) error {
	state := uuid.New().String()

	url, err := h.authService.GoogleAuthURL(state)
	if errors.Is(err, service.ErrOAuthNotConfigured) {
		return c.Status(503).JSON(fiber.Map{"error": "Google sign-in is not configured"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build Google auth URL"})
	}

	return c.JSON(fiber.Map{"url": url, "state": state})
}

// GoogleCallback exchanges the OAuth code and redirects to the frontend
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Redirect(h.frontendURL + "/auth/google/error")
	}

	response, err := h.authService.GoogleCallback(c.Context(), code)
	if err != nil {
		return c.Redirect(h.frontendURL + "/auth/google/error")
	}

	return c.Redirect(h.frontendURL + "/auth/google/callback?token=" + response.Token)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := h.authService.GetUser(userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}
