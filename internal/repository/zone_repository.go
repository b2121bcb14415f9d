package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-service/internal/domain"
)

// ZoneRepository reads zone records.
type ZoneRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Zone, error)
	List(ctx context.Context) ([]domain.Zone, error)
}

type zoneRepository struct {
	pool *pgxpool.Pool
}

// NewZoneRepository instantiates repository.
func NewZoneRepository(pool *pgxpool.Pool) ZoneRepository {
	return &zoneRepository{pool: pool}
}

func (r *zoneRepository) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	const query = `SELECT id, name, active, created_at FROM zones WHERE id=$1`
	var zone domain.Zone
	if err := r.pool.QueryRow(ctx, query, id).Scan(&zone.ID, &zone.Name, &zone.Active, &zone.CreatedAt); err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepository) List(ctx context.Context) ([]domain.Zone, error) {
	const query = `SELECT id, name, active, created_at FROM zones ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Zone
	for rows.Next() {
		var zone domain.Zone
		if err := rows.Scan(&zone.ID, &zone.Name, &zone.Active, &zone.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, zone)
	}
	return result, rows.Err()
}
