package trucks

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
)

type TruckHandler struct {
	truckService *TruckService
}

func NewTruckHandler(truckService *TruckService) *TruckHandler {
	return &TruckHandler{truckService: truckService}
}

// Create handles POST /trucks - driver registers a truck.
func (h *TruckHandler) Create(c *fiber.Ctx) error {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateTruckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	truck, err := h.truckService.Create(c.UserContext(), driverID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTruck), errors.Is(err, ErrUnknownTruckType):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrDuplicateTruck):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register truck",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(truck)
}

// List handles GET /trucks - browse trucks with optional filters.
func (h *TruckHandler) List(c *fiber.Ctx) error {
	result, err := h.truckService.List(
		c.UserContext(),
		c.Query("city"),
		c.QueryBool("available", false),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list trucks",
		})
	}
	return c.JSON(fiber.Map{"trucks": result})
}

// ListMine handles GET /trucks/mine - the driver's own fleet.
func (h *TruckHandler) ListMine(c *fiber.Ctx) error {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	result, err := h.truckService.ListByDriver(c.UserContext(), driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list trucks",
		})
	}
	return c.JSON(fiber.Map{"trucks": result})
}

// SetAvailability handles PUT /trucks/:id/availability.
func (h *TruckHandler) SetAvailability(c *fiber.Ctx) error {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid truck id",
		})
	}

	var req SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	truck, err := h.truckService.SetAvailability(c.UserContext(), driverID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTruckNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Truck not found",
			})
		case errors.Is(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update truck",
		})
	}

	return c.JSON(truck)
}
