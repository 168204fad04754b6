package loads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidLoad  = errors.New("material, weight and both cities are required")
	ErrLoadNotFound = errors.New("load not found")
	ErrNotOwner     = errors.New("you can only manage your own loads")
	ErrNotOpen      = errors.New("load is no longer open")
)

type LoadService struct {
	db *gorm.DB
}

func NewLoadService(db *gorm.DB) *LoadService {
	return &LoadService{db: db}
}

func (s *LoadService) Create(ctx context.Context, customerID uuid.UUID, req *CreateLoadRequest) (*Load, error) {
	if req.Material == "" || req.WeightKg <= 0 || req.PickupCity == "" || req.DropCity == "" {
		return nil, ErrInvalidLoad
	}

	load := Load{
		ID:         uuid.New(),
		CustomerID: customerID,
		Material:   req.Material,
		WeightKg:   req.WeightKg,
		PickupCity: req.PickupCity,
		DropCity:   req.DropCity,
		PickupDate: req.PickupDate,
		Status:     StatusOpen,
	}

	if err := s.db.WithContext(ctx).Create(&load).Error; err != nil {
		return nil, fmt.Errorf("failed to create load: %w", err)
	}
	return &load, nil
}

// ListOpen returns open loads for drivers to browse, optionally filtered by
// pickup and drop city.
func (s *LoadService) ListOpen(ctx context.Context, pickupCity, dropCity string, page, limit int) (*LoadListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := s.db.WithContext(ctx).Model(&Load{}).Where("status = ?", StatusOpen)
	if pickupCity != "" {
		q = q.Where("pickup_city = ?", pickupCity)
	}
	if dropCity != "" {
		q = q.Where("drop_city = ?", dropCity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count loads: %w", err)
	}

	var result []Load
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}

	return &LoadListResponse{Loads: result, Total: total, Page: page, Limit: limit}, nil
}

func (s *LoadService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Load, error) {
	var result []Load
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at DESC").Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer loads: %w", err)
	}
	return result, nil
}

func (s *LoadService) Get(ctx context.Context, id uuid.UUID) (*Load, error) {
	var load Load
	if err := s.db.WithContext(ctx).First(&load, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoadNotFound
		}
		return nil, fmt.Errorf("failed to load: %w", err)
	}
	return &load, nil
}

// Cancel closes an open load. Only the posting customer may cancel, and
// booked loads have to go through the booking lifecycle instead.
func (s *LoadService) Cancel(ctx context.Context, customerID, id uuid.UUID) error {
	load, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if load.CustomerID != customerID {
		return ErrNotOwner
	}
	if load.Status != StatusOpen {
		return ErrNotOpen
	}

	return s.db.WithContext(ctx).Model(load).Update("status", StatusClosed).Error
}
