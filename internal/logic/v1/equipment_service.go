package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/middleware"
)

// EquipmentService implements inventory management.
type EquipmentService struct {
	equipment domain.EquipmentRepository
	deps      Deps
}

// NewEquipmentService creates a new EquipmentService.
func NewEquipmentService(equipment domain.EquipmentRepository, deps Deps) *EquipmentService {
	return &EquipmentService{equipment: equipment, deps: deps.withDefaults()}
}

// List returns items matching filter.
func (s *EquipmentService) List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	ctx, span := middleware.StartSpan(ctx, "equipment.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("filter.category", filter.Category),
		attribute.String("filter.status", string(filter.Status)),
	))
	defer span.End()

	items, err := s.equipment.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// Get returns one item.
func (s *EquipmentService) Get(ctx context.Context, id string) (*domain.Equipment, error) {
	item, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query equipment %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("get equipment %s: %w", id, ErrEquipmentNotFound)
	}
	return item, nil
}

// Create adds an item. Condition defaults to Good and status to available.
func (s *EquipmentService) Create(ctx context.Context, req domain.CreateEquipmentRequest) (*domain.Equipment, error) {
	ctx, span := middleware.StartSpan(ctx, "equipment.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("category", req.Category),
	))
	defer span.End()

	now := s.deps.Clock.Now()
	item := domain.Equipment{
		ID:        s.deps.NewID(),
		Name:      req.Name,
		Category:  req.Category,
		Serial:    req.Serial,
		Condition: req.Condition,
		Status:    req.Status,
		Location:  req.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Condition == "" {
		item.Condition = domain.ConditionGood
	}
	if item.Status == "" {
		item.Status = domain.EquipmentAvailable
	}

	if err := s.equipment.Create(ctx, item); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert equipment: %w", err)
	}
	span.SetAttributes(attribute.String("equipment.id", item.ID))
	return &item, nil
}

// Update applies a partial update.
func (s *EquipmentService) Update(ctx context.Context, id string, req domain.UpdateEquipmentRequest) (*domain.Equipment, error) {
	patch := domain.EquipmentPatch{
		Name:      req.Name,
		Category:  req.Category,
		Serial:    req.Serial,
		Condition: req.Condition,
		Status:    req.Status,
		Location:  req.Location,
	}
	item, err := s.equipment.Update(ctx, id, patch, s.deps.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("update equipment %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("update equipment %s: %w", id, ErrEquipmentNotFound)
	}
	return item, nil
}

// Delete removes an item and its bookings.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	deleted, err := s.equipment.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete equipment %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete equipment %s: %w", id, ErrEquipmentNotFound)
	}
	return nil
}
