package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle: a driver books an open load, moves it in-transit and
// finally marks it delivered, which frees the truck and closes the load.
const (
	StatusPending   = "pending"
	StatusInTransit = "in-transit"
	StatusDelivered = "delivered"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LoadID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"load_id"`
	TruckID    uuid.UUID `gorm:"type:uuid;not null;index" json:"truck_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	DriverID   uuid.UUID `gorm:"type:uuid;not null;index" json:"driver_id"`
	FromCity   string    `gorm:"size:100;not null" json:"from"`
	ToCity     string    `gorm:"size:100;not null" json:"to"`
	Status     string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateBookingRequest struct {
	LoadID  uuid.UUID `json:"loadId"`
	TruckID uuid.UUID `json:"truckId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
