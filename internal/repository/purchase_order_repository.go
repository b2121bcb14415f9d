package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-service/internal/domain"
)

// PurchaseOrderRepository stores procurement requests.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrderRequest) error
	GetPendingByTicket(ctx context.Context, ticketID int64) (*domain.PurchaseOrderRequest, error)
	Approve(ctx context.Context, po *domain.PurchaseOrderRequest) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.PurchaseOrderRequest, error)
}

type purchaseOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseOrderRepository instantiates repository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) PurchaseOrderRepository {
	return &purchaseOrderRepository{pool: pool}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrderRequest) error {
	const query = `
        INSERT INTO purchase_orders (ticket_id, amount, description, status, requested_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		po.TicketID,
		po.Amount,
		po.Description,
		po.Status,
		po.RequestedByID,
	).Scan(&po.ID, &po.CreatedAt)
}

func (r *purchaseOrderRepository) GetPendingByTicket(ctx context.Context, ticketID int64) (*domain.PurchaseOrderRequest, error) {
	const query = `
        SELECT id, ticket_id, amount, description, status, po_number, requested_by_id, approved_by_id, approved_at, created_at
        FROM purchase_orders WHERE ticket_id=$1 AND status=$2 ORDER BY created_at DESC LIMIT 1`
	var po domain.PurchaseOrderRequest
	if err := r.pool.QueryRow(ctx, query, ticketID, domain.PurchaseOrderPending).Scan(
		&po.ID,
		&po.TicketID,
		&po.Amount,
		&po.Description,
		&po.Status,
		&po.PONumber,
		&po.RequestedByID,
		&po.ApprovedByID,
		&po.ApprovedAt,
		&po.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) Approve(ctx context.Context, po *domain.PurchaseOrderRequest) error {
	const query = `
        UPDATE purchase_orders SET status=$1, po_number=$2, approved_by_id=$3, approved_at=$4
        WHERE id=$5`
	_, err := r.pool.Exec(ctx, query, po.Status, po.PONumber, po.ApprovedByID, po.ApprovedAt, po.ID)
	return err
}

func (r *purchaseOrderRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.PurchaseOrderRequest, error) {
	const query = `
        SELECT id, ticket_id, amount, description, status, po_number, requested_by_id, approved_by_id, approved_at, created_at
        FROM purchase_orders WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrderRequest
	for rows.Next() {
		var po domain.PurchaseOrderRequest
		if err := rows.Scan(
			&po.ID,
			&po.TicketID,
			&po.Amount,
			&po.Description,
			&po.Status,
			&po.PONumber,
			&po.RequestedByID,
			&po.ApprovedByID,
			&po.ApprovedAt,
			&po.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, po)
	}
	return result, rows.Err()
}
