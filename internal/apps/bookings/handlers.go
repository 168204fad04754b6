package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/loads"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/trucks"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
)

type BookingHandler struct {
	bookingService *BookingService
}

func NewBookingHandler(bookingService *BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /bookings - driver books an open load.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil || req.LoadID == uuid.Nil || req.TruckID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "loadId and truckId are required",
		})
	}

	booking, err := h.bookingService.Create(c.UserContext(), driverID, &req)
	if err != nil {
		switch {
		case errors.Is(err, loads.ErrLoadNotFound), errors.Is(err, trucks.ErrTruckNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrNotYourTruck):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrLoadUnavailable), errors.Is(err, ErrTruckUnavailable):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create booking",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

// List handles GET /bookings - each side of the marketplace sees its own.
func (h *BookingHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	role, err := middleware.GetRole(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	result, err := h.bookingService.List(c.UserContext(), userID, role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list bookings",
		})
	}
	return c.JSON(fiber.Map{"bookings": result})
}

// UpdateStatus handles PUT /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid booking id",
		})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	booking, err := h.bookingService.UpdateStatus(c.UserContext(), driverID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Booking not found",
			})
		case errors.Is(err, ErrNotYourBooking):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update booking",
		})
	}

	return c.JSON(booking)
}

// Bilty handles GET /bookings/:id/bilty - consignment note download.
// The route accepts ?token= because the frontend opens it via window.open.
func (h *BookingHandler) Bilty(c *fiber.Ctx) error {
	return h.download(c, "bilty", h.bookingService.Bilty)
}

// Invoice handles GET /bookings/:id/invoice - freight invoice download.
func (h *BookingHandler) Invoice(c *fiber.Ctx) error {
	return h.download(c, "invoice", h.bookingService.Invoice)
}

func (h *BookingHandler) download(c *fiber.Ctx, kind string, render func(ctx context.Context, b *Booking) ([]byte, error)) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	role, _ := middleware.GetRole(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid booking id",
		})
	}

	booking, err := h.bookingService.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Booking not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load booking",
		})
	}

	if !booking.CanAccess(userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	doc, err := render(c.UserContext(), booking)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to generate document",
		})
	}

	filename := fmt.Sprintf("%s-%s.txt", kind, shortID(booking))
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
