package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-service/internal/audit"
)

// auditLogRepository is the postgres-backed audit sink.
type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository returns an append-only audit sink.
func NewAuditLogRepository(pool *pgxpool.Pool) audit.Sink {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, details)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		details,
	)
	return err
}
