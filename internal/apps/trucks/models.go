package trucks

import (
	"time"

	"github.com/google/uuid"
)

var TruckTypes = []string{"open", "container", "trailer", "tanker", "tipper", "lcv"}

type Truck struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DriverID       uuid.UUID `gorm:"type:uuid;not null;index" json:"driver_id"`
	RegistrationNo string    `gorm:"size:20;not null;uniqueIndex" json:"registration_no"`
	TruckType      string    `gorm:"size:20;not null" json:"truck_type"`
	CapacityKg     int       `gorm:"not null" json:"capacity_kg"`
	CurrentCity    string    `gorm:"size:100;index" json:"current_city"`
	Available      bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateTruckRequest struct {
	RegistrationNo string `json:"registrationNo"`
	TruckType      string `json:"truckType"`
	CapacityKg     int    `json:"capacityKg"`
	CurrentCity    string `json:"currentCity"`
}

type SetAvailabilityRequest struct {
	Available   bool   `json:"available"`
	CurrentCity string `json:"currentCity"`
}
