/**
 * @description
 * Ledger entry operations: transactions, subscriptions, and free trials.
 * Authorization is always resolved against the entry's wallet: reads need the
 * read tier, mutations the write tier. Entry IDs are only meaningful in
 * combination with a wallet the caller can access.
 */

package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/domain"
)

// --- Transactions ---

// CreateTransaction records a manual ledger entry in the wallet.
func (s *Service) CreateTransaction(ctx context.Context, userID, walletID uuid.UUID, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := validateCreateTransaction(&req); err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	tx := &domain.Transaction{
		WalletID:     walletID,
		Kind:         req.Kind,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Notes:        req.Notes,
		URLReference: req.URLReference,
		Date:         date,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions returns the wallet's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID, walletID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionRead); err != nil {
		return nil, err
	}
	return s.repo.FindTransactionsByWallet(ctx, walletID)
}

// UpdateTransaction patches a transaction in place.
func (s *Service) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, patch domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := validateUpdateTransaction(&patch); err != nil {
		return nil, err
	}
	tx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, tx.WalletID, domain.PermissionWrite); err != nil {
		return nil, err
	}
	return s.repo.UpdateTransaction(ctx, transactionID, patch)
}

// DeleteTransaction removes a transaction.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	tx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if _, err := s.requireWalletAccess(ctx, userID, tx.WalletID, domain.PermissionWrite); err != nil {
		return err
	}
	return s.repo.DeleteTransaction(ctx, transactionID)
}

// --- Subscriptions ---

// CreateSubscription records a recurring commitment in the wallet.
func (s *Service) CreateSubscription(ctx context.Context, userID, walletID uuid.UUID, req domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := validateCreateSubscription(&req); err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		WalletID:     walletID,
		Name:         req.Name,
		Amount:       req.Amount,
		Currency:     req.Currency,
		IntervalType: req.IntervalType,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Notes:        req.Notes,
		Status:       "active",
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns the wallet's subscriptions.
func (s *Service) ListSubscriptions(ctx context.Context, userID, walletID uuid.UUID) ([]domain.Subscription, error) {
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionRead); err != nil {
		return nil, err
	}
	return s.repo.FindSubscriptionsByWallet(ctx, walletID)
}

// UpdateSubscription patches a subscription in place.
func (s *Service) UpdateSubscription(ctx context.Context, userID, subscriptionID uuid.UUID, patch domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	if err := validateUpdateSubscription(&patch); err != nil {
		return nil, err
	}
	sub, err := s.repo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, sub.WalletID, domain.PermissionWrite); err != nil {
		return nil, err
	}
	return s.repo.UpdateSubscription(ctx, subscriptionID, patch)
}

// DeleteSubscription removes a subscription.
func (s *Service) DeleteSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	sub, err := s.repo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if _, err := s.requireWalletAccess(ctx, userID, sub.WalletID, domain.PermissionWrite); err != nil {
		return err
	}
	return s.repo.DeleteSubscription(ctx, subscriptionID)
}

// --- Free trials ---

// CreateFreeTrial records a trial period in the wallet.
func (s *Service) CreateFreeTrial(ctx context.Context, userID, walletID uuid.UUID, req domain.CreateFreeTrialRequest) (*domain.FreeTrial, error) {
	if err := validateCreateFreeTrial(&req); err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	trial := &domain.FreeTrial{
		WalletID:              walletID,
		Name:                  req.Name,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Notes:                 req.Notes,
		Status:                "active",
		RelatedSubscriptionID: req.RelatedSubscriptionID,
	}
	if err := s.repo.CreateFreeTrial(ctx, trial); err != nil {
		return nil, err
	}
	return trial, nil
}

// ListFreeTrials returns the wallet's free trials, soonest ending first.
func (s *Service) ListFreeTrials(ctx context.Context, userID, walletID uuid.UUID) ([]domain.FreeTrial, error) {
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionRead); err != nil {
		return nil, err
	}
	return s.repo.FindFreeTrialsByWallet(ctx, walletID)
}

// UpdateFreeTrial patches a free trial in place.
func (s *Service) UpdateFreeTrial(ctx context.Context, userID, trialID uuid.UUID, patch domain.UpdateFreeTrialRequest) (*domain.FreeTrial, error) {
	if err := validateUpdateFreeTrial(&patch); err != nil {
		return nil, err
	}
	trial, err := s.repo.FindFreeTrialByID(ctx, trialID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, trial.WalletID, domain.PermissionWrite); err != nil {
		return nil, err
	}
	return s.repo.UpdateFreeTrial(ctx, trialID, patch)
}

// DeleteFreeTrial removes a free trial.
func (s *Service) DeleteFreeTrial(ctx context.Context, userID, trialID uuid.UUID) error {
	trial, err := s.repo.FindFreeTrialByID(ctx, trialID)
	if err != nil {
		return err
	}
	if _, err := s.requireWalletAccess(ctx, userID, trial.WalletID, domain.PermissionWrite); err != nil {
		return err
	}
	return s.repo.DeleteFreeTrial(ctx, trialID)
}
