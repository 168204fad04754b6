package loads

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
)

type LoadHandler struct {
	loadService *LoadService
}

func NewLoadHandler(loadService *LoadService) *LoadHandler {
	return &LoadHandler{loadService: loadService}
}

// Create handles POST /loads - customer posts a new load.
func (h *LoadHandler) Create(c *fiber.Ctx) error {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateLoadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	load, err := h.loadService.Create(c.UserContext(), customerID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidLoad) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create load",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(load)
}

// List handles GET /loads - browse open loads with optional city filters.
func (h *LoadHandler) List(c *fiber.Ctx) error {
	resp, err := h.loadService.ListOpen(
		c.UserContext(),
		c.Query("pickupCity"),
		c.Query("dropCity"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list loads",
		})
	}
	return c.JSON(resp)
}

// ListMine handles GET /loads/mine - the customer's own loads.
func (h *LoadHandler) ListMine(c *fiber.Ctx) error {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	result, err := h.loadService.ListByCustomer(c.UserContext(), customerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list loads",
		})
	}
	return c.JSON(fiber.Map{"loads": result})
}

// Get handles GET /loads/:id.
func (h *LoadHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid load id",
		})
	}

	load, err := h.loadService.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrLoadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Load not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load",
		})
	}
	return c.JSON(load)
}

// Cancel handles DELETE /loads/:id - customer withdraws an open load.
func (h *LoadHandler) Cancel(c *fiber.Ctx) error {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid load id",
		})
	}

	if err := h.loadService.Cancel(c.UserContext(), customerID, id); err != nil {
		switch {
		case errors.Is(err, ErrLoadNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Load not found",
			})
		case errors.Is(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrNotOpen):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to cancel load",
		})
	}

	return c.JSON(fiber.Map{"message": "Load cancelled"})
}
