package trucks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidTruck     = errors.New("registration number, type and capacity are required")
	ErrUnknownTruckType = errors.New("unknown truck type")
	ErrDuplicateTruck   = errors.New("truck already registered")
	ErrTruckNotFound    = errors.New("truck not found")
	ErrNotOwner         = errors.New("you can only manage your own trucks")
)

type TruckService struct {
	db *gorm.DB
}

func NewTruckService(db *gorm.DB) *TruckService {
	return &TruckService{db: db}
}

func (s *TruckService) Create(ctx context.Context, driverID uuid.UUID, req *CreateTruckRequest) (*Truck, error) {
	regNo := strings.ToUpper(strings.ReplaceAll(req.RegistrationNo, " ", ""))
	if regNo == "" || req.TruckType == "" || req.CapacityKg <= 0 {
		return nil, ErrInvalidTruck
	}

	validType := false
	for _, t := range TruckTypes {
		if t == req.TruckType {
			validType = true
			break
		}
	}
	if !validType {
		return nil, ErrUnknownTruckType
	}

	var n int64
	s.db.WithContext(ctx).Model(&Truck{}).Where("registration_no = ?", regNo).Count(&n)
	if n > 0 {
		return nil, ErrDuplicateTruck
	}

	truck := Truck{
		ID:             uuid.New(),
		DriverID:       driverID,
		RegistrationNo: regNo,
		TruckType:      req.TruckType,
		CapacityKg:     req.CapacityKg,
		CurrentCity:    req.CurrentCity,
		Available:      true,
	}

	if err := s.db.WithContext(ctx).Create(&truck).Error; err != nil {
		// two drivers racing on the same registration number
		s.db.WithContext(ctx).Model(&Truck{}).Where("registration_no = ?", regNo).Count(&n)
		if n > 0 {
			return nil, ErrDuplicateTruck
		}
		return nil, fmt.Errorf("failed to create truck: %w", err)
	}
	return &truck, nil
}

func (s *TruckService) List(ctx context.Context, city string, onlyAvailable bool) ([]Truck, error) {
	q := s.db.WithContext(ctx).Model(&Truck{})
	if city != "" {
		q = q.Where("current_city = ?", city)
	}
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}

	var result []Truck
	if err := q.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list trucks: %w", err)
	}
	return result, nil
}

func (s *TruckService) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]Truck, error) {
	var result []Truck
	err := s.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("created_at DESC").Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list driver trucks: %w", err)
	}
	return result, nil
}

func (s *TruckService) Get(ctx context.Context, id uuid.UUID) (*Truck, error) {
	var truck Truck
	if err := s.db.WithContext(ctx).First(&truck, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTruckNotFound
		}
		return nil, fmt.Errorf("failed to load truck: %w", err)
	}
	return &truck, nil
}

// SetAvailability marks a truck free or busy and optionally moves it to a
// new city. Only the owning driver may change it.
func (s *TruckService) SetAvailability(ctx context.Context, driverID, id uuid.UUID, req *SetAvailabilityRequest) (*Truck, error) {
	truck, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if truck.DriverID != driverID {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{"available": req.Available}
	if req.CurrentCity != "" {
		updates["current_city"] = req.CurrentCity
	}
	if err := s.db.WithContext(ctx).Model(truck).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update truck: %w", err)
	}

	return s.Get(ctx, id)
}
