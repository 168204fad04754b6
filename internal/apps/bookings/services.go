package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/loads"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/trucks"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrLoadUnavailable   = errors.New("load is not open for booking")
	ErrTruckUnavailable  = errors.New("truck is not available")
	ErrNotYourTruck      = errors.New("you can only book with your own truck")
	ErrNotYourBooking    = errors.New("you can only manage your own bookings")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// Create books an open load with one of the driver's available trucks.
// Load and truck state flips happen as conditional updates inside one
// transaction so two drivers racing on the same load cannot both win.
func (s *BookingService) Create(ctx context.Context, driverID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	var booking Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var load loads.Load
		if err := tx.First(&load, "id = ?", req.LoadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loads.ErrLoadNotFound
			}
			return fmt.Errorf("loading load: %w", err)
		}

		var truck trucks.Truck
		if err := tx.First(&truck, "id = ?", req.TruckID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return trucks.ErrTruckNotFound
			}
			return fmt.Errorf("loading truck: %w", err)
		}
		if truck.DriverID != driverID {
			return ErrNotYourTruck
		}

		res := tx.Model(&loads.Load{}).
			Where("id = ? AND status = ?", load.ID, loads.StatusOpen).
			Update("status", loads.StatusBooked)
		if res.Error != nil {
			return fmt.Errorf("booking load: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrLoadUnavailable
		}

		res = tx.Model(&trucks.Truck{}).
			Where("id = ? AND available = ?", truck.ID, true).
			Update("available", false)
		if res.Error != nil {
			return fmt.Errorf("reserving truck: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTruckUnavailable
		}

		booking = Booking{
			ID:         uuid.New(),
			LoadID:     load.ID,
			TruckID:    truck.ID,
			CustomerID: load.CustomerID,
			DriverID:   driverID,
			FromCity:   load.PickupCity,
			ToCity:     load.DropCity,
			Status:     StatusPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// List returns the bookings visible to a user: their own side of the
// marketplace, or everything for admins.
func (s *BookingService) List(ctx context.Context, userID uuid.UUID, role string) ([]Booking, error) {
	q := s.db.WithContext(ctx).Model(&Booking{})
	switch role {
	case models.RoleCustomer:
		q = q.Where("customer_id = ?", userID)
	case models.RoleDriver:
		q = q.Where("driver_id = ?", userID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var result []Booking
	if err := q.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return result, nil
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := s.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("loading booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatus advances a booking along pending -> in-transit -> delivered.
// Delivery frees the truck and closes the load.
func (s *BookingService) UpdateStatus(ctx context.Context, driverID, id uuid.UUID, status string) (*Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.DriverID != driverID {
		return nil, ErrNotYourBooking
	}
	if !validTransition(booking.Status, status) {
		return nil, ErrInvalidTransition
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(booking).Update("status", status).Error; err != nil {
			return fmt.Errorf("updating booking: %w", err)
		}
		if status != StatusDelivered {
			return nil
		}

		if err := tx.Model(&loads.Load{}).Where("id = ?", booking.LoadID).
			Update("status", loads.StatusClosed).Error; err != nil {
			return fmt.Errorf("closing load: %w", err)
		}
		if err := tx.Model(&trucks.Truck{}).Where("id = ?", booking.TruckID).
			Update("available", true).Error; err != nil {
			return fmt.Errorf("releasing truck: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = status
	return booking, nil
}

func validTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusInTransit
	case StatusInTransit:
		return to == StatusDelivered
	}
	return false
}

// CanAccess reports whether a user may read a booking (and download its
// documents): the two parties plus admins.
func (b *Booking) CanAccess(userID uuid.UUID, role string) bool {
	return role == models.RoleAdmin || b.CustomerID == userID || b.DriverID == userID
}
