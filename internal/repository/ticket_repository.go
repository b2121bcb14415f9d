package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-service/internal/domain"
)

// ErrStatusConflict signals that a conditional transition write found the
// ticket in a different status than expected (concurrent writer won).
var ErrStatusConflict = errors.New("ticket status changed concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CustomerID   *int64
	ZoneID       *int64
	ZoneIDs      []int64
	AssignedToID *int64
	OwnerID      *int64
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// SaveTransition persists the mutated ticket and appends the history
	// entry in one transaction. The ticket row update is conditional on the
	// status it held when loaded; ErrStatusConflict is returned when a
	// concurrent transition got there first.
	SaveTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, entry *domain.StatusHistoryEntry) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, customer_id, zone_id, owner_id,
               assigned_to_id, sub_owner_id, created_at, updated_at, last_status_change,
               resolved_at, time_in_status, total_time_open`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (title, description, status, priority, customer_id, zone_id, owner_id,
                             assigned_to_id, sub_owner_id, last_status_change, time_in_status, total_time_open)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),0,0)
        RETURNING id, created_at, updated_at, last_status_change`
	if err := tx.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CustomerID,
		ticket.ZoneID,
		ticket.OwnerID,
		ticket.AssignedToID,
		ticket.SubOwnerID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt, &ticket.LastStatusChange); err != nil {
		return err
	}

	if initial != nil {
		initial.TicketID = ticket.ID
		if err := insertHistory(ctx, tx, initial); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CustomerID,
		&ticket.ZoneID,
		&ticket.OwnerID,
		&ticket.AssignedToID,
		&ticket.SubOwnerID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.LastStatusChange,
		&ticket.ResolvedAt,
		&ticket.TimeInStatus,
		&ticket.TotalTimeOpen,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) SaveTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, entry *domain.StatusHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET status=$1, assigned_to_id=$2, sub_owner_id=$3, last_status_change=$4,
            resolved_at=$5, time_in_status=$6, total_time_open=$7, updated_at=NOW()
        WHERE id=$8 AND status=$9`
	cmd, err := tx.Exec(ctx, query,
		ticket.Status,
		ticket.AssignedToID,
		ticket.SubOwnerID,
		ticket.LastStatusChange,
		ticket.ResolvedAt,
		ticket.TimeInStatus,
		ticket.TotalTimeOpen,
		ticket.ID,
		expectedStatus,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, status, changed_by_id, changed_at, notes, time_in_status, total_time_open)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return tx.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.ChangedByID,
		entry.ChangedAt,
		entry.Notes,
		entry.TimeInStatus,
		entry.TotalTimeOpen,
	).Scan(&entry.ID)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.ZoneID != nil {
		args = append(args, *filter.ZoneID)
		clauses = append(clauses, fmt.Sprintf("zone_id=$%d", len(args)))
	}
	if len(filter.ZoneIDs) > 0 {
		placeholders := make([]string, len(filter.ZoneIDs))
		for i, id := range filter.ZoneIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("zone_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CustomerID,
			&ticket.ZoneID,
			&ticket.OwnerID,
			&ticket.AssignedToID,
			&ticket.SubOwnerID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.LastStatusChange,
			&ticket.ResolvedAt,
			&ticket.TimeInStatus,
			&ticket.TotalTimeOpen,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
