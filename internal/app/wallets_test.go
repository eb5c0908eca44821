package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
)

type walletsRepoStub struct {
	store.Repository

	wallet       *domain.Wallet
	transactions []domain.Transaction
	deleteCalled bool
}

func (s *walletsRepoStub) FindWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	if s.wallet == nil || s.wallet.ID != walletID {
		return nil, store.ErrWalletNotFound
	}
	w := *s.wallet
	return &w, nil
}

func (s *walletsRepoStub) FindAcceptedShare(ctx context.Context, walletID, userID uuid.UUID) (*domain.WalletShare, error) {
	return nil, store.ErrShareNotFound
}

func (s *walletsRepoStub) FindTransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	return s.transactions, nil
}

func (s *walletsRepoStub) DeleteWallet(ctx context.Context, walletID uuid.UUID) error {
	s.deleteCalled = true
	return nil
}

type ratesStub struct {
	rate float64
	err  error
}

func (r *ratesStub) Rate(ctx context.Context, from, to string) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.rate, nil
}

func TestWalletSummary_ConvertsIntoPrimaryCurrency(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &walletsRepoStub{
		wallet: wallet,
		transactions: []domain.Transaction{
			{Kind: domain.EntryIncome, Amount: decimal.RequireFromString("100"), Currency: "USD"},
			{Kind: domain.EntryExpense, Amount: decimal.RequireFromString("10"), Currency: "EUR"},
			{Kind: domain.EntrySubscription, Amount: decimal.RequireFromString("5"), Currency: "USD"},
			{Kind: domain.EntryTransfer, Amount: decimal.RequireFromString("40"), Currency: "USD"},
		},
	}
	svc := NewService(repo, nil, &ratesStub{rate: 2}, nil)

	summary, err := svc.WalletSummary(context.Background(), ownerID, wallet.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TransactionCount != 4 {
		t.Fatalf("expected 4 transactions counted, got %d", summary.TransactionCount)
	}
	if !summary.TotalIncome.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected income 100, got %s", summary.TotalIncome)
	}
	// 10 EUR at rate 2 plus the 5 USD subscription; transfers count neither way.
	if !summary.TotalExpense.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected expense 25, got %s", summary.TotalExpense)
	}
}

func TestWalletSummary_RateFailureDegradesToIdentity(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &walletsRepoStub{
		wallet: wallet,
		transactions: []domain.Transaction{
			{Kind: domain.EntryExpense, Amount: decimal.RequireFromString("10"), Currency: "EUR"},
		},
	}
	svc := NewService(repo, nil, &ratesStub{err: errors.New("rates down")}, nil)

	summary, err := svc.WalletSummary(context.Background(), ownerID, wallet.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.TotalExpense.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected unconverted amount on rate failure, got %s", summary.TotalExpense)
	}
}

func TestDeleteWallet_OwnerOnly(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &walletsRepoStub{wallet: wallet}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if err := svc.DeleteWallet(ctx, uuid.New(), wallet.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for stranger, got %v", err)
	}
	if repo.deleteCalled {
		t.Fatal("stranger must not delete")
	}
	if err := svc.DeleteWallet(ctx, ownerID, wallet.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.deleteCalled {
		t.Fatal("expected delete to reach the repository")
	}
}
