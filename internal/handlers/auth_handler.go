package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/identity"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	cookieTTL   time.Duration
}

func NewAuthHandler(authService *services.AuthService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, cookieTTL: cookieTTL}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields),
			errors.Is(err, services.ErrInvalidRole),
			errors.Is(err, services.ErrDuplicatePhone):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Registration failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Message: "Registered successfully",
		UserID:  user.ID,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	signed, err := h.authService.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Login failed",
		})
	}

	h.setTokenCookie(c, signed)
	return c.JSON(dto.LoginResponse{AccessToken: signed})
}

// GoogleLogin exchanges a verified Google ID token for an access token.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	signed, _, err := h.federatedLogin(c, models.ProviderGoogle)
	if err != nil {
		return h.federatedError(c, err)
	}

	h.setTokenCookie(c, signed)
	return c.JSON(dto.LoginResponse{AccessToken: signed})
}

// FirebaseLogin exchanges a verified Firebase ID token for an access token
// plus the resolved user record.
func (h *AuthHandler) FirebaseLogin(c *fiber.Ctx) error {
	signed, user, err := h.federatedLogin(c, models.ProviderFirebase)
	if err != nil {
		return h.federatedError(c, err)
	}

	h.setTokenCookie(c, signed)
	return c.JSON(dto.FederatedLoginResponse{
		AccessToken: signed,
		User:        services.UserResponse(user),
	})
}

var errMissingIDToken = errors.New("missing identity token")

func (h *AuthHandler) federatedLogin(c *fiber.Ctx, provider string) (string, *models.User, error) {
	var req dto.FederatedLoginRequest
	if err := c.BodyParser(&req); err != nil || req.IDToken == "" {
		return "", nil, errMissingIDToken
	}
	return h.authService.FederatedLogin(c.UserContext(), provider, req.IDToken)
}

func (h *AuthHandler) federatedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errMissingIDToken):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing identity token",
		})
	case errors.Is(err, services.ErrFederatedDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Federated login is temporarily unavailable",
		})
	case errors.Is(err, services.ErrInvalidAssertion):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid identity token",
		})
	case errors.Is(err, identity.ErrLinkConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Account already linked to a different identity",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Login failed",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}

	return c.JSON(fiber.Map{"user": services.UserResponse(user)})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrDuplicatePhone):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Phone number already in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{"user": services.UserResponse(user)})
}

// setTokenCookie mirrors the access token into an HttpOnly cookie, the
// first credential source the auth gate checks.
func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, signed string) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    signed,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}
