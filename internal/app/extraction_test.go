package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
)

type extractionRepoStub struct {
	store.Repository

	wallet        *domain.Wallet
	acceptedShare *domain.WalletShare
	earliest      *domain.Wallet
	intention     *domain.ExtractionIntention

	createdIntention *domain.ExtractionIntention
	createdTxs       []*domain.Transaction
	createTxErrAfter int // fail CreateTransaction once this many succeeded; 0 disables

	completeCalls  int
	completeResult bool
}

func (s *extractionRepoStub) FindWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	if s.wallet == nil || s.wallet.ID != walletID {
		return nil, store.ErrWalletNotFound
	}
	w := *s.wallet
	return &w, nil
}

func (s *extractionRepoStub) FindAcceptedShare(ctx context.Context, walletID, userID uuid.UUID) (*domain.WalletShare, error) {
	if s.acceptedShare == nil || s.acceptedShare.WalletID != walletID || s.acceptedShare.UserID != userID {
		return nil, store.ErrShareNotFound
	}
	return s.acceptedShare, nil
}

func (s *extractionRepoStub) FindEarliestWalletByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	if s.earliest == nil || s.earliest.OwnerID != ownerID {
		return nil, store.ErrWalletNotFound
	}
	w := *s.earliest
	return &w, nil
}

func (s *extractionRepoStub) CreateIntention(ctx context.Context, intention *domain.ExtractionIntention) error {
	intention.ID = uuid.New()
	intention.CreatedAt = time.Now()
	s.createdIntention = intention
	return nil
}

func (s *extractionRepoStub) FindIntentionByID(ctx context.Context, intentionID, ownerID uuid.UUID) (*domain.ExtractionIntention, error) {
	if s.intention == nil || s.intention.ID != intentionID || s.intention.OwnerID != ownerID {
		return nil, store.ErrIntentionNotFound
	}
	in := *s.intention
	return &in, nil
}

func (s *extractionRepoStub) CompleteIntention(ctx context.Context, intentionID uuid.UUID, processedAt time.Time) (bool, error) {
	s.completeCalls++
	return s.completeResult, nil
}

func (s *extractionRepoStub) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	if s.createTxErrAfter > 0 && len(s.createdTxs) >= s.createTxErrAfter {
		return errors.New("insert failed")
	}
	tx.ID = uuid.New()
	s.createdTxs = append(s.createdTxs, tx)
	return nil
}

type extractorStub struct {
	gotContent string
	gotURL     string
	payload    *domain.ExtractionPayload
	err        error
}

func (e *extractorStub) Extract(ctx context.Context, content, pageURL string) (*domain.ExtractionPayload, error) {
	e.gotContent = content
	e.gotURL = pageURL
	if e.err != nil {
		return nil, e.err
	}
	return e.payload, nil
}

type lockStub struct {
	acquired bool
	released bool
	grant    bool
}

func (l *lockStub) Acquire(ctx context.Context, intentionID string) (bool, error) {
	l.acquired = true
	return l.grant, nil
}

func (l *lockStub) Release(ctx context.Context, intentionID string) { l.released = true }

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCaptureExtraction_TruncatesContentAndStoresExcerpt(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{wallet: wallet}
	extractor := &extractorStub{payload: &domain.ExtractionPayload{Entries: []domain.ExtractionEntry{}}}
	svc := NewService(repo, extractor, nil, nil)

	longContent := strings.Repeat("x", 6000)
	result, err := svc.CaptureExtraction(context.Background(), ownerID, domain.CaptureRequest{
		PageContent: longContent,
		PageURL:     "https://shop.example/receipt",
		WalletID:    &wallet.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(extractor.gotContent) != 4000 {
		t.Fatalf("expected extractor to receive 4000 chars, got %d", len(extractor.gotContent))
	}
	if len(repo.createdIntention.Excerpt) != 1000 {
		t.Fatalf("expected a 1000-char excerpt, got %d", len(repo.createdIntention.Excerpt))
	}
	if repo.createdIntention.Status != domain.IntentionPending {
		t.Fatalf("expected pending status, got %s", repo.createdIntention.Status)
	}
	if result.WalletID != wallet.ID || result.IntentionID != repo.createdIntention.ID {
		t.Fatalf("unexpected capture result: %+v", result)
	}
}

func TestCaptureExtraction_DefaultsToEarliestWallet(t *testing.T) {
	ownerID := uuid.New()
	earliest := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "EUR"}
	repo := &extractionRepoStub{earliest: earliest}
	extractor := &extractorStub{payload: &domain.ExtractionPayload{}}
	svc := NewService(repo, extractor, nil, nil)

	result, err := svc.CaptureExtraction(context.Background(), ownerID, domain.CaptureRequest{
		PageContent: "Netflix subscription $15.99/month",
		PageURL:     "https://netflix.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.WalletID != earliest.ID {
		t.Fatalf("expected earliest wallet %s, got %s", earliest.ID, result.WalletID)
	}
}

func TestCaptureExtraction_Rejections(t *testing.T) {
	ownerID := uuid.New()
	granteeID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{
		wallet:        wallet,
		acceptedShare: &domain.WalletShare{WalletID: wallet.ID, UserID: granteeID, Level: domain.PermissionRead, Accepted: true},
	}
	extractor := &extractorStub{payload: &domain.ExtractionPayload{}}
	svc := NewService(repo, extractor, nil, nil)
	ctx := context.Background()

	if _, err := svc.CaptureExtraction(ctx, ownerID, domain.CaptureRequest{PageURL: "https://x"}); !errors.Is(err, ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent, got %v", err)
	}
	if _, err := svc.CaptureExtraction(ctx, ownerID, domain.CaptureRequest{PageContent: "x"}); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("expected ErrMissingURL, got %v", err)
	}
	// A read-tier grantee may not capture into the wallet.
	if _, err := svc.CaptureExtraction(ctx, granteeID, domain.CaptureRequest{PageContent: "x", PageURL: "https://x", WalletID: &wallet.ID}); !errors.Is(err, ErrReadOnlyAccess) {
		t.Fatalf("expected ErrReadOnlyAccess, got %v", err)
	}

	extractor.err = errors.New("model timeout")
	if _, err := svc.CaptureExtraction(ctx, ownerID, domain.CaptureRequest{PageContent: "x", PageURL: "https://x", WalletID: &wallet.ID}); err == nil || !strings.Contains(err.Error(), "model timeout") {
		t.Fatalf("expected extractor error passthrough, got %v", err)
	}
}

func newPendingIntention(ownerID uuid.UUID, walletID uuid.UUID, entries []domain.ExtractionEntry) *domain.ExtractionIntention {
	return &domain.ExtractionIntention{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		WalletID:  walletID,
		Status:    domain.IntentionPending,
		SourceURL: "https://shop.example/receipt",
		Payload:   &domain.ExtractionPayload{Entries: entries},
	}
}

func TestConfirmExtraction_CommitsValidAndReportsSkipped(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	entries := []domain.ExtractionEntry{
		{Kind: domain.EntryExpense, Name: "Coffee beans", Amount: decimalPtr("18.50"), Currency: "eur", Date: "2026-08-01", Notes: "whole bean"},
		{Kind: domain.EntrySubscription, Name: "Streaming", Amount: decimalPtr("9.99")},
		{Kind: domain.EntryExpense, Name: "", Amount: decimalPtr("5")},
		{Kind: "mystery", Name: "Unknown", Amount: decimalPtr("5")},
		{Kind: domain.EntryExpense, Name: "No amount"},
		{Kind: domain.EntryExpense, Name: "Refund", Amount: decimalPtr("-4")},
	}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, entries),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Committed) != 2 {
		t.Fatalf("expected 2 committed entries, got %d", len(result.Committed))
	}
	if len(result.Skipped) != 4 {
		t.Fatalf("expected 4 skipped entries, got %d", len(result.Skipped))
	}

	first := result.Committed[0]
	if first.Currency != "EUR" {
		t.Fatalf("expected normalized currency EUR, got %s", first.Currency)
	}
	if first.Date.Format("2006-01-02") != "2026-08-01" {
		t.Fatalf("expected parsed date, got %s", first.Date)
	}
	if first.Notes != "whole bean" {
		t.Fatalf("expected entry notes preserved, got %q", first.Notes)
	}
	if first.URLReference != repo.intention.SourceURL {
		t.Fatalf("expected source url reference, got %q", first.URLReference)
	}

	second := result.Committed[1]
	if second.Currency != "USD" {
		t.Fatalf("expected wallet primary currency default, got %s", second.Currency)
	}
	if second.Notes != "Streaming - Extracted from https://shop.example/receipt" {
		t.Fatalf("unexpected default notes: %q", second.Notes)
	}
	if second.Date.IsZero() {
		t.Fatal("expected dateless entry to default to now")
	}
}

func TestConfirmExtraction_OverrideReplacesCapturedPayload(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	captured := []domain.ExtractionEntry{
		{Kind: domain.EntryExpense, Name: "Service X", Amount: decimalPtr("9.99")},
		{Kind: domain.EntryExpense, Name: "Service Y", Amount: decimalPtr("4.00")},
	}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, captured),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)

	// The reviewer kept one entry and edited its amount.
	override := &domain.ExtractionPayload{Entries: []domain.ExtractionEntry{
		{Kind: domain.EntryExpense, Name: "Service X", Amount: decimalPtr("12.49")},
	}}
	result, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Committed) != 1 || len(result.Skipped) != 0 {
		t.Fatalf("expected only the reviewed entry committed, got %d/%d", len(result.Committed), len(result.Skipped))
	}
	if !result.Committed[0].Amount.Equal(decimal.RequireFromString("12.49")) {
		t.Fatalf("expected the edited amount, got %s", result.Committed[0].Amount)
	}
}

func TestConfirmExtraction_EmptyOverrideCommitsNothing(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	captured := []domain.ExtractionEntry{
		{Kind: domain.EntrySubscription, Name: "Service X", Amount: decimalPtr("9.99")},
	}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, captured),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)

	// Rejecting every candidate is a valid confirm: the intention
	// completes and nothing reaches the ledger.
	override := &domain.ExtractionPayload{Entries: []domain.ExtractionEntry{}}
	result, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Committed) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("expected nothing committed or skipped, got %d/%d", len(result.Committed), len(result.Skipped))
	}
	if len(repo.createdTxs) != 0 {
		t.Fatalf("empty override must not write entries, wrote %d", len(repo.createdTxs))
	}
	if repo.completeCalls != 1 {
		t.Fatalf("expected the intention to complete, flips=%d", repo.completeCalls)
	}
}

func TestConfirmExtraction_OverrideWithoutEntriesIsInvalid(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, []domain.ExtractionEntry{}),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, &domain.ExtractionPayload{})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for an override without an entry list, got %v", err)
	}
	if repo.completeCalls != 0 {
		t.Fatal("an invalid override must not reach the status flip")
	}
}

func TestConfirmExtraction_StatusFlipHappensBeforeCommits(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	entries := []domain.ExtractionEntry{
		{Kind: domain.EntryExpense, Name: "Coffee", Amount: decimalPtr("4.50")},
	}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, entries),
		completeResult: false, // another confirm already won
	}
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, nil)
	if !errors.Is(err, ErrIntentionProcessed) {
		t.Fatalf("expected ErrIntentionProcessed when the flip is lost, got %v", err)
	}
	if repo.completeCalls != 1 {
		t.Fatalf("expected exactly one flip attempt, got %d", repo.completeCalls)
	}
	if len(repo.createdTxs) != 0 {
		t.Fatalf("losing confirm must not write entries, wrote %d", len(repo.createdTxs))
	}
}

func TestConfirmExtraction_Guards(t *testing.T) {
	ownerID := uuid.New()
	granteeID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{
		wallet:         wallet,
		acceptedShare:  &domain.WalletShare{WalletID: wallet.ID, UserID: granteeID, Level: domain.PermissionRead, Accepted: true},
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.ConfirmExtraction(ctx, ownerID, uuid.New(), nil); !errors.Is(err, store.ErrIntentionNotFound) {
		t.Fatalf("expected ErrIntentionNotFound, got %v", err)
	}

	repo.intention = newPendingIntention(ownerID, wallet.ID, nil)
	repo.intention.Status = domain.IntentionCompleted
	if _, err := svc.ConfirmExtraction(ctx, ownerID, repo.intention.ID, nil); !errors.Is(err, ErrIntentionProcessed) {
		t.Fatalf("expected ErrIntentionProcessed for completed intention, got %v", err)
	}

	// Another user's intention reads as missing, even with a valid ID.
	repo.intention = newPendingIntention(uuid.New(), wallet.ID, nil)
	if _, err := svc.ConfirmExtraction(ctx, ownerID, repo.intention.ID, nil); !errors.Is(err, store.ErrIntentionNotFound) {
		t.Fatalf("expected ErrIntentionNotFound for foreign intention, got %v", err)
	}

	// Write access is re-checked at confirm time.
	repo.intention = newPendingIntention(granteeID, wallet.ID, nil)
	if _, err := svc.ConfirmExtraction(ctx, granteeID, repo.intention.ID, nil); !errors.Is(err, ErrReadOnlyAccess) {
		t.Fatalf("expected ErrReadOnlyAccess for read grantee, got %v", err)
	}

	repo.intention = newPendingIntention(ownerID, wallet.ID, nil)
	repo.intention.Payload = nil
	if _, err := svc.ConfirmExtraction(ctx, ownerID, repo.intention.ID, nil); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestConfirmExtraction_LockDeniedShortCircuits(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, []domain.ExtractionEntry{}),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)
	lock := &lockStub{grant: false}
	svc.SetConfirmLock(lock)

	_, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, nil)
	if !errors.Is(err, ErrConfirmInProgress) {
		t.Fatalf("expected ErrConfirmInProgress, got %v", err)
	}
	if repo.completeCalls != 0 {
		t.Fatal("a denied lock must not reach the status flip")
	}
}

func TestConfirmExtraction_LockReleasedAfterCommit(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	repo := &extractionRepoStub{
		wallet:         wallet,
		intention:      newPendingIntention(ownerID, wallet.ID, []domain.ExtractionEntry{}),
		completeResult: true,
	}
	svc := NewService(repo, nil, nil, nil)
	lock := &lockStub{grant: true}
	svc.SetConfirmLock(lock)

	result, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Committed) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("expected empty result for empty payload, got %+v", result)
	}
	if !lock.acquired || !lock.released {
		t.Fatal("expected the lock to be acquired and released")
	}
}

func TestConfirmExtraction_StorageFailureSkipsEntry(t *testing.T) {
	ownerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: ownerID, PrimaryCurrency: "USD"}
	entries := []domain.ExtractionEntry{
		{Kind: domain.EntryExpense, Name: "First", Amount: decimalPtr("1")},
		{Kind: domain.EntryExpense, Name: "Second", Amount: decimalPtr("2")},
	}
	repo := &extractionRepoStub{
		wallet:           wallet,
		intention:        newPendingIntention(ownerID, wallet.ID, entries),
		completeResult:   true,
		createTxErrAfter: 1,
	}
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.ConfirmExtraction(context.Background(), ownerID, repo.intention.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Committed) != 1 || len(result.Skipped) != 1 {
		t.Fatalf("expected 1 committed and 1 skipped, got %d/%d", len(result.Committed), len(result.Skipped))
	}
	if result.Skipped[0].Reason != "storage error" {
		t.Fatalf("unexpected skip reason: %q", result.Skipped[0].Reason)
	}
}
