package loads

import (
	"time"

	"github.com/google/uuid"
)

// Load lifecycle. A load is open until a driver books it; closed loads are
// cancelled by the customer or completed through a delivered booking.
const (
	StatusOpen   = "open"
	StatusBooked = "booked"
	StatusClosed = "closed"
)

type Load struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Material   string    `gorm:"size:255;not null" json:"material"`
	WeightKg   int       `gorm:"not null" json:"weight_kg"`
	PickupCity string    `gorm:"size:100;not null;index" json:"pickup_city"`
	DropCity   string    `gorm:"size:100;not null;index" json:"drop_city"`
	PickupDate time.Time `json:"pickup_date"`
	Status     string    `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateLoadRequest struct {
	Material   string    `json:"material"`
	WeightKg   int       `json:"weightKg"`
	PickupCity string    `json:"pickupCity"`
	DropCity   string    `json:"dropCity"`
	PickupDate time.Time `json:"pickupDate"`
}

type LoadListResponse struct {
	Loads []Load `json:"loads"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
