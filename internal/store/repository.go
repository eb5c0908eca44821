/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the wallet-service. By defining an interface,
 * we decouple the application's business logic from the specific database
 * implementation (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
// Single-row operations are assumed atomic; there are no multi-row
// transactions in this service.
type Repository interface {
	// User methods
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Wallet methods
	CreateWallet(ctx context.Context, wallet *domain.Wallet) error
	FindWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	FindWalletsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
	// FindEarliestWalletByOwner returns the owner's oldest wallet by
	// created_at. This is the documented default target for captures that
	// do not name a wallet.
	FindEarliestWalletByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	FindWalletsSharedWith(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	UpdateWallet(ctx context.Context, walletID uuid.UUID, patch domain.UpdateWalletRequest) (*domain.Wallet, error)
	// DeleteWallet removes the wallet; the schema cascades the delete to
	// its transactions, subscriptions, free trials and shares.
	DeleteWallet(ctx context.Context, walletID uuid.UUID) error

	// Wallet share methods
	CreateShare(ctx context.Context, share *domain.WalletShare) error
	FindShareByID(ctx context.Context, shareID uuid.UUID) (*domain.WalletShare, error)
	// FindAcceptedShare returns the share only when accepted = true.
	FindAcceptedShare(ctx context.Context, walletID, userID uuid.UUID) (*domain.WalletShare, error)
	AcceptShare(ctx context.Context, shareID uuid.UUID, acceptedAt time.Time) (*domain.WalletShare, error)
	UpdateShareLevel(ctx context.Context, shareID uuid.UUID, level domain.PermissionLevel) (*domain.WalletShare, error)
	DeleteShare(ctx context.Context, shareID uuid.UUID) error
	FindPendingSharesForUser(ctx context.Context, userID uuid.UUID) ([]domain.WalletShare, error)

	// Transaction methods
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	FindTransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID uuid.UUID, patch domain.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error

	// Subscription methods
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	FindSubscriptionByID(ctx context.Context, subscriptionID uuid.UUID) (*domain.Subscription, error)
	FindSubscriptionsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID uuid.UUID, patch domain.UpdateSubscriptionRequest) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID uuid.UUID) error
	FindSubscriptionsRenewingBefore(ctx context.Context, cutoff time.Time) ([]domain.SubscriptionReminder, error)

	// Free trial methods
	CreateFreeTrial(ctx context.Context, trial *domain.FreeTrial) error
	FindFreeTrialByID(ctx context.Context, trialID uuid.UUID) (*domain.FreeTrial, error)
	FindFreeTrialsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.FreeTrial, error)
	UpdateFreeTrial(ctx context.Context, trialID uuid.UUID, patch domain.UpdateFreeTrialRequest) (*domain.FreeTrial, error)
	DeleteFreeTrial(ctx context.Context, trialID uuid.UUID) error
	FindFreeTrialsExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.FreeTrialReminder, error)

	// Extraction intention methods
	CreateIntention(ctx context.Context, intention *domain.ExtractionIntention) error
	FindIntentionByID(ctx context.Context, intentionID, ownerID uuid.UUID) (*domain.ExtractionIntention, error)
	// CompleteIntention transitions the intention from pending to completed
	// as a single conditional update and reports whether this call won the
	// transition. A false return means the status had already flipped.
	CompleteIntention(ctx context.Context, intentionID uuid.UUID, processedAt time.Time) (bool, error)
	FindStalePendingIntentions(ctx context.Context, cutoff time.Time) ([]domain.PendingReviewReminder, error)
}
