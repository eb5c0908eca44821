/**
 * @description
 * PostgreSQL implementation of the ledger entry portion of the Repository:
 * transactions, subscriptions, and free trials.
 *
 * @notes
 * - Numeric amount columns are selected as `amount::text` and parsed into
 *   shopspring decimals; inserts pass the decimal's string form. This keeps
 *   money values exact without registering a custom pgx codec.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
)

const transactionColumns = `id, wallet_id, type, amount::text, currency, notes, url_reference, date, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amount string
	err := row.Scan(&tx.ID, &tx.WalletID, &tx.Kind, &amount, &tx.Currency, &tx.Notes, &tx.URLReference, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction inserts a ledger entry and fills in generated fields.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (wallet_id, type, amount, currency, notes, url_reference, date)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		tx.WalletID, tx.Kind, tx.Amount.String(), tx.Currency, tx.Notes, tx.URLReference, tx.Date,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

// FindTransactionByID retrieves a transaction by its primary key.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.db.QueryRow(ctx, query, transactionID))
}

// FindTransactionsByWallet lists a wallet's transactions newest-first.
func (r *PostgresRepository) FindTransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE wallet_id = $1 ORDER BY date DESC`
	rows, err := r.db.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amount string
		if err := rows.Scan(&tx.ID, &tx.WalletID, &tx.Kind, &amount, &tx.Currency, &tx.Notes, &tx.URLReference, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, err
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// UpdateTransaction applies a partial update and returns the updated row.
func (r *PostgresRepository) UpdateTransaction(ctx context.Context, transactionID uuid.UUID, patch domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	var amount *string
	if patch.Amount != nil {
		s := patch.Amount.String()
		amount = &s
	}
	query := `
		UPDATE transactions
		SET type = COALESCE($2, type),
		    amount = COALESCE($3::numeric, amount),
		    currency = COALESCE($4, currency),
		    notes = COALESCE($5, notes),
		    url_reference = COALESCE($6, url_reference),
		    date = COALESCE($7, date),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRow(ctx, query,
		transactionID, patch.Kind, amount, patch.Currency, patch.Notes, patch.URLReference, patch.Date))
}

// DeleteTransaction removes a transaction row.
func (r *PostgresRepository) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

const subscriptionColumns = `id, wallet_id, name, amount::text, currency, interval_type, start_date, end_date, notes, status, created_at, updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	var amount string
	err := row.Scan(&sub.ID, &sub.WalletID, &sub.Name, &amount, &sub.Currency, &sub.IntervalType, &sub.StartDate, &sub.EndDate, &sub.Notes, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription inserts a subscription and fills in generated fields.
func (r *PostgresRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (wallet_id, name, amount, currency, interval_type, start_date, end_date, notes, status)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		sub.WalletID, sub.Name, sub.Amount.String(), sub.Currency, sub.IntervalType,
		sub.StartDate, sub.EndDate, sub.Notes, sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

// FindSubscriptionByID retrieves a subscription by its primary key.
func (r *PostgresRepository) FindSubscriptionByID(ctx context.Context, subscriptionID uuid.UUID) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, subscriptionID))
}

// FindSubscriptionsByWallet lists a wallet's subscriptions.
func (r *PostgresRepository) FindSubscriptionsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE wallet_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		var amount string
		if err := rows.Scan(&sub.ID, &sub.WalletID, &sub.Name, &amount, &sub.Currency, &sub.IntervalType, &sub.StartDate, &sub.EndDate, &sub.Notes, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		if sub.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// UpdateSubscription applies a partial update and returns the updated row.
func (r *PostgresRepository) UpdateSubscription(ctx context.Context, subscriptionID uuid.UUID, patch domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	var amount *string
	if patch.Amount != nil {
		s := patch.Amount.String()
		amount = &s
	}
	query := `
		UPDATE subscriptions
		SET name = COALESCE($2, name),
		    amount = COALESCE($3::numeric, amount),
		    currency = COALESCE($4, currency),
		    interval_type = COALESCE($5, interval_type),
		    start_date = COALESCE($6, start_date),
		    end_date = COALESCE($7, end_date),
		    notes = COALESCE($8, notes),
		    status = COALESCE($9, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subscriptionColumns
	return scanSubscription(r.db.QueryRow(ctx, query,
		subscriptionID, patch.Name, amount, patch.Currency, patch.IntervalType,
		patch.StartDate, patch.EndDate, patch.Notes, patch.Status))
}

// DeleteSubscription removes a subscription row.
func (r *PostgresRepository) DeleteSubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// FindSubscriptionsRenewingBefore returns active subscriptions whose end_date
// falls on or before the cutoff, with the wallet owner joined for notification.
func (r *PostgresRepository) FindSubscriptionsRenewingBefore(ctx context.Context, cutoff time.Time) ([]domain.SubscriptionReminder, error) {
	query := `
		SELECT s.id, s.wallet_id, s.name, s.amount::text, s.currency, s.interval_type,
		       s.start_date, s.end_date, s.notes, s.status, s.created_at, s.updated_at,
		       w.user_id
		FROM subscriptions s
		JOIN wallets w ON w.id = s.wallet_id
		WHERE s.status = 'active' AND s.end_date IS NOT NULL AND s.end_date <= $1
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.SubscriptionReminder
	for rows.Next() {
		var rem domain.SubscriptionReminder
		var amount string
		if err := rows.Scan(&rem.Subscription.ID, &rem.Subscription.WalletID, &rem.Subscription.Name, &amount,
			&rem.Subscription.Currency, &rem.Subscription.IntervalType, &rem.Subscription.StartDate,
			&rem.Subscription.EndDate, &rem.Subscription.Notes, &rem.Subscription.Status,
			&rem.Subscription.CreatedAt, &rem.Subscription.UpdatedAt, &rem.OwnerID); err != nil {
			return nil, err
		}
		if rem.Subscription.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

const freeTrialColumns = `id, wallet_id, name, start_date, end_date, notes, status, related_subscription_id, created_at, updated_at`

func scanFreeTrial(row pgx.Row) (*domain.FreeTrial, error) {
	var trial domain.FreeTrial
	err := row.Scan(&trial.ID, &trial.WalletID, &trial.Name, &trial.StartDate, &trial.EndDate, &trial.Notes, &trial.Status, &trial.RelatedSubscriptionID, &trial.CreatedAt, &trial.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrFreeTrialNotFound
		}
		return nil, err
	}
	return &trial, nil
}

// CreateFreeTrial inserts a free trial and fills in generated fields.
func (r *PostgresRepository) CreateFreeTrial(ctx context.Context, trial *domain.FreeTrial) error {
	query := `
		INSERT INTO free_trials (wallet_id, name, start_date, end_date, notes, status, related_subscription_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		trial.WalletID, trial.Name, trial.StartDate, trial.EndDate, trial.Notes, trial.Status, trial.RelatedSubscriptionID,
	).Scan(&trial.ID, &trial.CreatedAt, &trial.UpdatedAt)
}

// FindFreeTrialByID retrieves a free trial by its primary key.
func (r *PostgresRepository) FindFreeTrialByID(ctx context.Context, trialID uuid.UUID) (*domain.FreeTrial, error) {
	query := `SELECT ` + freeTrialColumns + ` FROM free_trials WHERE id = $1`
	return scanFreeTrial(r.db.QueryRow(ctx, query, trialID))
}

// FindFreeTrialsByWallet lists a wallet's free trials, ones expiring soonest first.
func (r *PostgresRepository) FindFreeTrialsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.FreeTrial, error) {
	query := `SELECT ` + freeTrialColumns + ` FROM free_trials WHERE wallet_id = $1 ORDER BY end_date ASC`
	rows, err := r.db.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []domain.FreeTrial
	for rows.Next() {
		var trial domain.FreeTrial
		if err := rows.Scan(&trial.ID, &trial.WalletID, &trial.Name, &trial.StartDate, &trial.EndDate, &trial.Notes, &trial.Status, &trial.RelatedSubscriptionID, &trial.CreatedAt, &trial.UpdatedAt); err != nil {
			return nil, err
		}
		trials = append(trials, trial)
	}
	return trials, rows.Err()
}

// UpdateFreeTrial applies a partial update and returns the updated row.
func (r *PostgresRepository) UpdateFreeTrial(ctx context.Context, trialID uuid.UUID, patch domain.UpdateFreeTrialRequest) (*domain.FreeTrial, error) {
	query := `
		UPDATE free_trials
		SET name = COALESCE($2, name),
		    start_date = COALESCE($3, start_date),
		    end_date = COALESCE($4, end_date),
		    notes = COALESCE($5, notes),
		    status = COALESCE($6, status),
		    related_subscription_id = COALESCE($7, related_subscription_id),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + freeTrialColumns
	return scanFreeTrial(r.db.QueryRow(ctx, query,
		trialID, patch.Name, patch.StartDate, patch.EndDate, patch.Notes, patch.Status, patch.RelatedSubscriptionID))
}

// DeleteFreeTrial removes a free trial row.
func (r *PostgresRepository) DeleteFreeTrial(ctx context.Context, trialID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM free_trials WHERE id = $1`, trialID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrFreeTrialNotFound
	}
	return nil
}

// FindFreeTrialsExpiringBefore returns active trials ending on or before the
// cutoff, with the wallet owner joined for notification.
func (r *PostgresRepository) FindFreeTrialsExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.FreeTrialReminder, error) {
	query := `
		SELECT t.id, t.wallet_id, t.name, t.start_date, t.end_date, t.notes, t.status,
		       t.related_subscription_id, t.created_at, t.updated_at, w.user_id
		FROM free_trials t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE t.status = 'active' AND t.end_date <= $1
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.FreeTrialReminder
	for rows.Next() {
		var rem domain.FreeTrialReminder
		if err := rows.Scan(&rem.Trial.ID, &rem.Trial.WalletID, &rem.Trial.Name, &rem.Trial.StartDate,
			&rem.Trial.EndDate, &rem.Trial.Notes, &rem.Trial.Status, &rem.Trial.RelatedSubscriptionID,
			&rem.Trial.CreatedAt, &rem.Trial.UpdatedAt, &rem.OwnerID); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
