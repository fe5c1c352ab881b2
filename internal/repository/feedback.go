package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amlwatch/aml-backend/internal/domain"
)

const feedbackColumns = `id, customer_id, suggestions, rating, created_at`

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, customer_id, suggestions, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fb.ID, fb.CustomerID, fb.Suggestions, fb.Rating, fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.CustomerID, &fb.Suggestions, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return out, nil
}
