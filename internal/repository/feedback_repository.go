package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-service/internal/domain"
)

// FeedbackRepository stores closure feedback records.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.TicketFeedback) error
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.TicketFeedback) error {
	const query = `
        INSERT INTO ticket_feedback (ticket_id, submitted_by_id, feedback, rating)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		feedback.TicketID,
		feedback.SubmittedByID,
		feedback.Feedback,
		feedback.Rating,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}
