/**
 * @description
 * Wallet CRUD and the converted summary. Reads require the read tier,
 * settings changes the admin tier, and deletion stays with the owner:
 * deleting a wallet cascades to every entry and grant, which is not a power
 * a grant should confer.
 */

package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
)

// CreateWallet creates a wallet owned by the caller.
func (s *Service) CreateWallet(ctx context.Context, ownerID uuid.UUID, req domain.CreateWalletRequest) (*domain.Wallet, error) {
	if err := validateCreateWallet(&req); err != nil {
		return nil, err
	}
	wallet := &domain.Wallet{
		OwnerID:         ownerID,
		Name:            req.Name,
		Description:     req.Description,
		PrimaryCurrency: req.PrimaryCurrency,
		Currencies:      req.Currencies,
	}
	if err := s.repo.CreateWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListWallets returns the caller's owned wallets followed by wallets shared
// with them, the shared ones annotated with the caller's tier.
func (s *Service) ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	owned, err := s.repo.FindWalletsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.repo.FindWalletsSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(owned, shared...), nil
}

// GetWallet returns a single wallet the caller can at least read.
func (s *Service) GetWallet(ctx context.Context, userID, walletID uuid.UUID) (*domain.Wallet, error) {
	access, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionRead)
	if err != nil {
		return nil, err
	}
	return access.Wallet, nil
}

// UpdateWallet changes wallet metadata. Requires the admin tier.
func (s *Service) UpdateWallet(ctx context.Context, userID, walletID uuid.UUID, patch domain.UpdateWalletRequest) (*domain.Wallet, error) {
	if err := validateUpdateWallet(&patch); err != nil {
		return nil, err
	}
	if _, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionAdmin); err != nil {
		return nil, err
	}
	return s.repo.UpdateWallet(ctx, walletID, patch)
}

// DeleteWallet removes a wallet and, by cascade, everything in it. Owner
// only.
func (s *Service) DeleteWallet(ctx context.Context, userID, walletID uuid.UUID) error {
	access, err := s.ResolveWalletAccess(ctx, userID, walletID)
	if err != nil {
		return err
	}
	if access.Decision != AccessOwner {
		if access.Decision == AccessDenied {
			return ErrAccessDenied
		}
		return ErrNotWalletOwner
	}
	return s.repo.DeleteWallet(ctx, walletID)
}

// WalletSummary totals the wallet's transactions converted into its primary
// currency. A missing rate source or a failed lookup degrades to rate 1
// rather than failing the summary.
func (s *Service) WalletSummary(ctx context.Context, userID, walletID uuid.UUID) (*domain.WalletSummary, error) {
	access, err := s.requireWalletAccess(ctx, userID, walletID, domain.PermissionRead)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.FindTransactionsByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	target := access.Wallet.PrimaryCurrency
	summary := &domain.WalletSummary{
		WalletID:     walletID,
		Currency:     target,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, tx := range transactions {
		summary.TransactionCount++
		amount := s.convert(ctx, tx.Amount, tx.Currency, target)
		switch tx.Kind {
		case domain.EntryIncome:
			summary.TotalIncome = summary.TotalIncome.Add(amount)
		case domain.EntryExpense, domain.EntrySubscription:
			summary.TotalExpense = summary.TotalExpense.Add(amount)
		}
	}
	return summary, nil
}

func (s *Service) convert(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to || s.rates == nil {
		return amount
	}
	rate, err := s.rates.Rate(ctx, from, to)
	if err != nil || rate <= 0 {
		return amount
	}
	return amount.Mul(decimal.NewFromFloat(rate))
}
