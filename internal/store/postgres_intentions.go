/**
 * @description
 * PostgreSQL implementation of the extraction intention portion of the
 * Repository. Intentions map to the `ai_intentions` table; the structured
 * candidate payload is stored as jsonb.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cashtide/wallet-service/internal/domain"
)

// CreateIntention inserts a pending intention and fills in generated fields.
func (r *PostgresRepository) CreateIntention(ctx context.Context, intention *domain.ExtractionIntention) error {
	payload, err := json.Marshal(intention.Payload)
	if err != nil {
		return fmt.Errorf("marshal extraction payload: %w", err)
	}
	query := `
		INSERT INTO ai_intentions (user_id, wallet_id, intent_type, status, original_content, extracted_data, page_url, captured_at)
		VALUES ($1, $2, 'extension_extraction', $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		intention.OwnerID, intention.WalletID, intention.Status,
		intention.Excerpt, payload, intention.SourceURL, intention.CapturedAt,
	).Scan(&intention.ID, &intention.CreatedAt)
}

// FindIntentionByID retrieves an intention scoped to its owner. A wrong owner
// is indistinguishable from a missing record, which is intentional.
func (r *PostgresRepository) FindIntentionByID(ctx context.Context, intentionID, ownerID uuid.UUID) (*domain.ExtractionIntention, error) {
	var intention domain.ExtractionIntention
	var payload []byte
	query := `
		SELECT id, user_id, wallet_id, status, original_content, extracted_data, page_url, captured_at, processed_at, created_at
		FROM ai_intentions
		WHERE id = $1 AND user_id = $2
	`
	err := r.db.QueryRow(ctx, query, intentionID, ownerID).Scan(
		&intention.ID, &intention.OwnerID, &intention.WalletID, &intention.Status,
		&intention.Excerpt, &payload, &intention.SourceURL, &intention.CapturedAt,
		&intention.ProcessedAt, &intention.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrIntentionNotFound
		}
		return nil, err
	}
	if len(payload) > 0 {
		intention.Payload = &domain.ExtractionPayload{}
		if err := json.Unmarshal(payload, intention.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal extraction payload: %w", err)
		}
	}
	return &intention, nil
}

// CompleteIntention performs the conditional pending -> completed transition.
// The WHERE clause on status makes the update a compare-and-set: of two
// racing confirms, exactly one observes RowsAffected() == 1.
func (r *PostgresRepository) CompleteIntention(ctx context.Context, intentionID uuid.UUID, processedAt time.Time) (bool, error) {
	query := `
		UPDATE ai_intentions
		SET status = $2, processed_at = $3
		WHERE id = $1 AND status = $4
	`
	result, err := r.db.Exec(ctx, query, intentionID, domain.IntentionCompleted, processedAt, domain.IntentionPending)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// FindStalePendingIntentions returns intentions pending review since before
// the cutoff, for the periodic nag sweep.
func (r *PostgresRepository) FindStalePendingIntentions(ctx context.Context, cutoff time.Time) ([]domain.PendingReviewReminder, error) {
	query := `
		SELECT id, user_id, created_at
		FROM ai_intentions
		WHERE intent_type = 'extension_extraction' AND status = $1 AND created_at < $2
	`
	rows, err := r.db.Query(ctx, query, domain.IntentionPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.PendingReviewReminder
	for rows.Next() {
		var rem domain.PendingReviewReminder
		if err := rows.Scan(&rem.IntentionID, &rem.OwnerID, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
