package domain

import (
	"context"
	"time"
)

// EquipmentCondition grades the physical state of an item.
type EquipmentCondition string

const (
	ConditionNew  EquipmentCondition = "New"
	ConditionGood EquipmentCondition = "Good"
	ConditionFair EquipmentCondition = "Fair"
	ConditionPoor EquipmentCondition = "Poor"
)

// EquipmentStatus is the availability of an item.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentReserved    EquipmentStatus = "reserved"
	EquipmentOut         EquipmentStatus = "out"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

// Equipment is one loanable item.
type Equipment struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	Category  string             `json:"category"`
	Serial    string             `json:"serial"`
	Condition EquipmentCondition `json:"condition"`
	Status    EquipmentStatus    `json:"status"`
	Location  string             `json:"location"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// EquipmentFilter narrows List. Empty fields match everything.
type EquipmentFilter struct {
	Category string
	Status   EquipmentStatus
}

// EquipmentPatch carries the fields of a partial equipment update.
type EquipmentPatch struct {
	Name      *string
	Category  *string
	Serial    *string
	Condition *EquipmentCondition
	Status    *EquipmentStatus
	Location  *string
}

// CreateEquipmentRequest is the body of POST /equipment.
type CreateEquipmentRequest struct {
	Name      string             `json:"name" binding:"required"`
	Category  string             `json:"category" binding:"required"`
	Serial    string             `json:"serial"`
	Condition EquipmentCondition `json:"condition" binding:"omitempty,oneof=New Good Fair Poor"`
	Status    EquipmentStatus    `json:"status" binding:"omitempty,oneof=available reserved out maintenance"`
	Location  string             `json:"location"`
}

// UpdateEquipmentRequest is the body of PATCH /equipment/:id.
type UpdateEquipmentRequest struct {
	Name      *string             `json:"name" binding:"omitempty,min=1"`
	Category  *string             `json:"category" binding:"omitempty,min=1"`
	Serial    *string             `json:"serial"`
	Condition *EquipmentCondition `json:"condition" binding:"omitempty,oneof=New Good Fair Poor"`
	Status    *EquipmentStatus    `json:"status" binding:"omitempty,oneof=available reserved out maintenance"`
	Location  *string             `json:"location"`
}

// EquipmentRepository defines the data-access contract for equipment.
type EquipmentRepository interface {
	// List returns items matching filter ordered by name.
	List(ctx context.Context, filter EquipmentFilter) ([]Equipment, error)

	// GetByID returns (nil, nil) when no item is found.
	GetByID(ctx context.Context, id string) (*Equipment, error)

	Create(ctx context.Context, e Equipment) error

	// Update returns (nil, nil) when no item is found.
	Update(ctx context.Context, id string, patch EquipmentPatch, at time.Time) (*Equipment, error)

	// Delete removes the item and its bookings. Returns false when no item
	// was found.
	Delete(ctx context.Context, id string) (bool, error)

	// SetStatus overwrites the availability of an item.
	SetStatus(ctx context.Context, id string, status EquipmentStatus, at time.Time) error
}
