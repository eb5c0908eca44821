/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface
 * for users, wallets, and wallet shares. It contains the SQL queries used to
 * interact with the `users`, `wallets`, and `shared_wallets` tables.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashtide/wallet-service/internal/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrShareNotFound        = errors.New("shared wallet not found")
	ErrShareExists          = errors.New("wallet is already shared with this user")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrFreeTrialNotFound    = errors.New("free trial not found")
	ErrIntentionNotFound    = errors.New("extraction record not found")
)

const pgUniqueViolation = "23505"

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUserByID retrieves a user by their internal UUID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, name FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, name FROM users WHERE lower(btrim(email)) = lower(btrim($1))`
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateWallet inserts a new wallet row and fills in the generated fields.
func (r *PostgresRepository) CreateWallet(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, name, description, primary_currency, currencies)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		wallet.OwnerID, wallet.Name, wallet.Description, wallet.PrimaryCurrency, wallet.Currencies,
	).Scan(&wallet.ID, &wallet.CreatedAt, &wallet.UpdatedAt)
}

const walletColumns = `id, user_id, name, description, primary_currency, currencies, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.PrimaryCurrency, &w.Currencies, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

// FindWalletByID retrieves a wallet by its primary key.
func (r *PostgresRepository) FindWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, walletID))
}

// FindWalletsByOwner retrieves all wallets owned directly by a user.
func (r *PostgresRepository) FindWalletsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.PrimaryCurrency, &w.Currencies, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// FindEarliestWalletByOwner returns the owner's oldest wallet. It backs the
// default wallet rule for captures submitted without a wallet id.
func (r *PostgresRepository) FindEarliestWalletByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`
	return scanWallet(r.db.QueryRow(ctx, query, ownerID))
}

// FindWalletsSharedWith retrieves wallets reachable through an accepted share,
// annotated with the caller's permission level.
func (r *PostgresRepository) FindWalletsSharedWith(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `
		SELECT w.id, w.user_id, w.name, w.description, w.primary_currency, w.currencies,
		       w.created_at, w.updated_at, sw.permission_level
		FROM shared_wallets sw
		JOIN wallets w ON w.id = sw.wallet_id
		WHERE sw.user_id = $1 AND sw.accepted = true
		ORDER BY w.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		var level domain.PermissionLevel
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.PrimaryCurrency, &w.Currencies, &w.CreatedAt, &w.UpdatedAt, &level); err != nil {
			return nil, err
		}
		w.Shared = true
		w.PermissionLevel = &level
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// UpdateWallet applies a metadata patch and returns the updated row.
func (r *PostgresRepository) UpdateWallet(ctx context.Context, walletID uuid.UUID, patch domain.UpdateWalletRequest) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    primary_currency = COALESCE($4, primary_currency),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + walletColumns
	return scanWallet(r.db.QueryRow(ctx, query, walletID, patch.Name, patch.Description, patch.PrimaryCurrency))
}

// DeleteWallet removes a wallet. Foreign keys on transactions, subscriptions,
// free_trials, ai_intentions and shared_wallets are declared ON DELETE CASCADE.
func (r *PostgresRepository) DeleteWallet(ctx context.Context, walletID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, walletID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

const shareColumns = `id, wallet_id, user_id, invited_by, permission_level, accepted, accepted_at, created_at`

func scanShare(row pgx.Row) (*domain.WalletShare, error) {
	var s domain.WalletShare
	err := row.Scan(&s.ID, &s.WalletID, &s.UserID, &s.InvitedBy, &s.Level, &s.Accepted, &s.AcceptedAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateShare inserts a new share row. The unique index on
// (wallet_id, user_id) enforces the one-share-per-pair invariant; a
// violation surfaces as ErrShareExists.
func (r *PostgresRepository) CreateShare(ctx context.Context, share *domain.WalletShare) error {
	query := `
		INSERT INTO shared_wallets (wallet_id, user_id, invited_by, permission_level, accepted)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, accepted, created_at
	`
	err := r.db.QueryRow(ctx, query, share.WalletID, share.UserID, share.InvitedBy, share.Level).
		Scan(&share.ID, &share.Accepted, &share.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrShareExists
		}
		return err
	}
	return nil
}

// FindShareByID retrieves a share by its primary key.
func (r *PostgresRepository) FindShareByID(ctx context.Context, shareID uuid.UUID) (*domain.WalletShare, error) {
	return scanShare(r.db.QueryRow(ctx, `SELECT `+shareColumns+` FROM shared_wallets WHERE id = $1`, shareID))
}

// FindAcceptedShare retrieves the accepted share for (wallet, user), if any.
func (r *PostgresRepository) FindAcceptedShare(ctx context.Context, walletID, userID uuid.UUID) (*domain.WalletShare, error) {
	query := `SELECT ` + shareColumns + ` FROM shared_wallets WHERE wallet_id = $1 AND user_id = $2 AND accepted = true`
	return scanShare(r.db.QueryRow(ctx, query, walletID, userID))
}

// AcceptShare marks the share accepted and stamps accepted_at.
func (r *PostgresRepository) AcceptShare(ctx context.Context, shareID uuid.UUID, acceptedAt time.Time) (*domain.WalletShare, error) {
	query := `
		UPDATE shared_wallets
		SET accepted = true, accepted_at = $2
		WHERE id = $1
		RETURNING ` + shareColumns
	return scanShare(r.db.QueryRow(ctx, query, shareID, acceptedAt))
}

// UpdateShareLevel changes the permission tier of an existing share.
func (r *PostgresRepository) UpdateShareLevel(ctx context.Context, shareID uuid.UUID, level domain.PermissionLevel) (*domain.WalletShare, error) {
	query := `
		UPDATE shared_wallets
		SET permission_level = $2
		WHERE id = $1
		RETURNING ` + shareColumns
	return scanShare(r.db.QueryRow(ctx, query, shareID, level))
}

// DeleteShare removes a share row unconditionally.
func (r *PostgresRepository) DeleteShare(ctx context.Context, shareID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM shared_wallets WHERE id = $1`, shareID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrShareNotFound
	}
	return nil
}

// FindPendingSharesForUser returns the caller's invitation inbox: shares
// addressed to them that have not been accepted, with the wallet name joined.
func (r *PostgresRepository) FindPendingSharesForUser(ctx context.Context, userID uuid.UUID) ([]domain.WalletShare, error) {
	query := `
		SELECT sw.id, sw.wallet_id, sw.user_id, sw.invited_by, sw.permission_level,
		       sw.accepted, sw.accepted_at, sw.created_at, w.name
		FROM shared_wallets sw
		JOIN wallets w ON w.id = sw.wallet_id
		WHERE sw.user_id = $1 AND sw.accepted = false
		ORDER BY sw.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domain.WalletShare
	for rows.Next() {
		var s domain.WalletShare
		if err := rows.Scan(&s.ID, &s.WalletID, &s.UserID, &s.InvitedBy, &s.Level, &s.Accepted, &s.AcceptedAt, &s.CreatedAt, &s.WalletName); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}
