/**
 * @description
 * Extraction intention pipeline: capture page content into a pending
 * intention, report its status, and confirm it into real ledger entries.
 *
 * Confirm is the hardened path. The status flip is a conditional update
 * executed before any entry is written, so of two racing confirms exactly
 * one commits; an optional distributed lock in front of it keeps the loser
 * from doing wasted work. Per-entry validation never aborts the whole
 * confirm: bad candidates are reported back as skipped.
 */

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
)

// CaptureExtraction runs the extraction collaborator over the submitted page
// content and stores the result as a pending intention for review. When the
// request names no wallet, the owner's earliest-created wallet is the
// documented default target.
func (s *Service) CaptureExtraction(ctx context.Context, userID uuid.UUID, req domain.CaptureRequest) (*domain.CaptureResult, error) {
	if req.PageContent == "" {
		return nil, ErrMissingContent
	}
	if req.PageURL == "" {
		return nil, ErrMissingURL
	}
	if s.extractor == nil {
		return nil, ErrExtractorUnavailable
	}

	var wallet *domain.Wallet
	if req.WalletID != nil {
		access, err := s.requireWalletAccess(ctx, userID, *req.WalletID, domain.PermissionWrite)
		if err != nil {
			return nil, err
		}
		wallet = access.Wallet
	} else {
		var err error
		wallet, err = s.repo.FindEarliestWalletByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	content := truncate(req.PageContent, s.contentLimit)
	payload, err := s.extractor.Extract(ctx, content, req.PageURL)
	if err != nil {
		return nil, err
	}

	intention := &domain.ExtractionIntention{
		OwnerID:    userID,
		WalletID:   wallet.ID,
		Status:     domain.IntentionPending,
		Excerpt:    truncate(req.PageContent, s.excerptLimit),
		Payload:    payload,
		SourceURL:  req.PageURL,
		CapturedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateIntention(ctx, intention); err != nil {
		return nil, err
	}

	return &domain.CaptureResult{
		IntentionID: intention.ID,
		WalletID:    wallet.ID,
		Payload:     payload,
	}, nil
}

// GetExtractionStatus returns the caller's intention, including its payload
// and processed timestamp. Intentions belonging to other users read as
// missing.
func (s *Service) GetExtractionStatus(ctx context.Context, userID, intentionID uuid.UUID) (*domain.ExtractionIntention, error) {
	return s.repo.FindIntentionByID(ctx, intentionID, userID)
}

// ConfirmExtraction commits a pending intention's candidate entries into the
// target wallet. A non-nil override replaces the captured payload wholesale,
// so the reviewer can edit or drop candidates before commit; an override with
// an empty entry list completes the intention committing nothing. The caller
// must still hold the write tier at confirm time; access granted at capture
// does not carry over. Each entry is validated independently and committed or
// reported as skipped; the intention completes either way.
func (s *Service) ConfirmExtraction(ctx context.Context, userID, intentionID uuid.UUID, override *domain.ExtractionPayload) (*domain.ConfirmResult, error) {
	intention, err := s.repo.FindIntentionByID(ctx, intentionID, userID)
	if err != nil {
		return nil, err
	}
	if intention.Status != domain.IntentionPending {
		return nil, ErrIntentionProcessed
	}
	access, err := s.requireWalletAccess(ctx, userID, intention.WalletID, domain.PermissionWrite)
	if err != nil {
		return nil, err
	}
	payload := intention.Payload
	if override != nil {
		payload = override
	}
	if payload == nil || payload.Entries == nil {
		return nil, ErrInvalidPayload
	}

	if s.confirmLock != nil {
		ok, err := s.confirmLock.Acquire(ctx, intentionID.String())
		if err == nil && !ok {
			return nil, ErrConfirmInProgress
		}
		if err == nil {
			defer s.confirmLock.Release(ctx, intentionID.String())
		}
	}

	// Flip the status first. Losing the conditional update means another
	// confirm already committed these entries.
	won, err := s.repo.CompleteIntention(ctx, intentionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrIntentionProcessed
	}

	result := &domain.ConfirmResult{IntentionID: intentionID}
	for _, entry := range payload.Entries {
		tx, reason := s.buildTransaction(intention, access.Wallet, entry)
		if reason != "" {
			result.Skipped = append(result.Skipped, domain.SkippedEntry{Entry: entry, Reason: reason})
			continue
		}
		if err := s.repo.CreateTransaction(ctx, tx); err != nil {
			result.Skipped = append(result.Skipped, domain.SkippedEntry{Entry: entry, Reason: "storage error"})
			continue
		}
		result.Committed = append(result.Committed, tx)
	}
	return result, nil
}

// buildTransaction validates a single candidate entry and shapes it into a
// transaction, or returns the reason it must be skipped.
func (s *Service) buildTransaction(intention *domain.ExtractionIntention, wallet *domain.Wallet, entry domain.ExtractionEntry) (*domain.Transaction, string) {
	if !entry.Kind.Valid() {
		return nil, "missing or unknown entry kind"
	}
	if entry.Name == "" {
		return nil, "missing name"
	}
	if len(entry.Name) > maxNameLen {
		return nil, "name too long"
	}
	if entry.Amount == nil {
		return nil, "missing amount"
	}
	if entry.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, "amount must be positive"
	}

	currency := wallet.PrimaryCurrency
	if entry.Currency != "" {
		if c, err := normalizeCurrency(entry.Currency); err == nil {
			currency = c
		}
	}

	date := time.Now().UTC()
	if entry.Date != "" {
		if parsed, err := time.Parse("2006-01-02", entry.Date); err == nil {
			date = parsed
		}
	}

	notes := entry.Notes
	if notes == "" {
		notes = fmt.Sprintf("%s - Extracted from %s", entry.Name, intention.SourceURL)
	}

	return &domain.Transaction{
		WalletID:     wallet.ID,
		Kind:         entry.Kind,
		Amount:       *entry.Amount,
		Currency:     currency,
		Notes:        truncate(notes, maxNotesLen),
		URLReference: intention.SourceURL,
		Date:         date,
	}, ""
}

// truncate clips s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
