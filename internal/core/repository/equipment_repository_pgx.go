package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

const equipmentColumns = `id, name, category, serial, condition, status, location, created_at, updated_at`

// PgxEquipmentRepository implements domain.EquipmentRepository using pgxpool.
type PgxEquipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository creates a new PgxEquipmentRepository.
func NewEquipmentRepository(pool *pgxpool.Pool) *PgxEquipmentRepository {
	return &PgxEquipmentRepository{pool: pool}
}

func scanEquipment(row pgx.Row) (*domain.Equipment, error) {
	var e domain.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Category, &e.Serial, &e.Condition, &e.Status,
		&e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns items matching filter ordered by name.
func (r *PgxEquipmentRepository) List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	var where []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + equipmentColumns + ` FROM equipment`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Equipment, error) {
		e, err := scanEquipment(row)
		if err != nil {
			return domain.Equipment{}, err
		}
		return *e, nil
	})
}

// GetByID returns (nil, nil) when no item is found.
func (r *PgxEquipmentRepository) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	return scanEquipment(r.pool.QueryRow(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id))
}

// Create inserts a new item.
func (r *PgxEquipmentRepository) Create(ctx context.Context, e domain.Equipment) error {
	query := `
		INSERT INTO equipment (id, name, category, serial, condition, status, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, e.ID, e.Name, e.Category, e.Serial, e.Condition, e.Status,
		e.Location, e.CreatedAt, e.UpdatedAt)
	return err
}

// Update applies patch. Returns (nil, nil) when no item is found.
func (r *PgxEquipmentRepository) Update(ctx context.Context, id string, patch domain.EquipmentPatch, at time.Time) (*domain.Equipment, error) {
	var s setClause
	if patch.Name != nil {
		s.add("name", *patch.Name)
	}
	if patch.Category != nil {
		s.add("category", *patch.Category)
	}
	if patch.Serial != nil {
		s.add("serial", *patch.Serial)
	}
	if patch.Condition != nil {
		s.add("condition", *patch.Condition)
	}
	if patch.Status != nil {
		s.add("status", *patch.Status)
	}
	if patch.Location != nil {
		s.add("location", *patch.Location)
	}
	s.add("updated_at", at)

	query, args := s.statement("equipment", id, equipmentColumns)
	return scanEquipment(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes the item and, by cascade, its bookings.
func (r *PgxEquipmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatus overwrites the availability of an item.
func (r *PgxEquipmentRepository) SetStatus(ctx context.Context, id string, status domain.EquipmentStatus, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE equipment SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	return err
}
