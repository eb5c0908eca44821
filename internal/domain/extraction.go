/**
 * @description
 * Models for the extraction intention pipeline: machine-extracted candidate
 * ledger entries captured from a web page, held for human review, and
 * committed into a wallet on confirmation.
 *
 * @notes
 * - An intention moves pending -> completed exactly once and never reverts.
 * - ExtractionEntry.Amount deliberately uses decimal.Decimal: the upstream
 *   model emits amounts as either JSON numbers or strings, and decimal
 *   accepts both forms during unmarshalling.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intention statuses.
const (
	IntentionPending   = "pending"
	IntentionCompleted = "completed"
)

// ExtractionEntry is one candidate ledger entry produced by the extraction
// collaborator. All fields except Kind, Name and Amount are optional.
type ExtractionEntry struct {
	Kind     EntryKind        `json:"kind"`
	Name     string           `json:"name"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty"`
	Notes    string           `json:"notes,omitempty"`
	Date     string           `json:"date,omitempty"` // YYYY-MM-DD when present
}

// ExtractionPayload is the structured result of one capture.
type ExtractionPayload struct {
	Entries []ExtractionEntry `json:"entries"`
}

// ExtractionIntention is a pending-review record of machine-extracted
// candidate entries. It maps to the `ai_intentions` table.
type ExtractionIntention struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"user_id"`
	WalletID    uuid.UUID          `json:"wallet_id"`
	Status      string             `json:"status"`
	Excerpt     string             `json:"original_content"`
	Payload     *ExtractionPayload `json:"extracted_data"`
	SourceURL   string             `json:"page_url"`
	CapturedAt  time.Time          `json:"extraction_timestamp"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CaptureRequest is the DTO for a capture submission.
type CaptureRequest struct {
	PageContent string     `json:"page_content"`
	PageURL     string     `json:"page_url"`
	WalletID    *uuid.UUID `json:"wallet_id,omitempty"`
}

// CaptureResult is returned to the caller for human review.
type CaptureResult struct {
	IntentionID uuid.UUID          `json:"extraction_id"`
	WalletID    uuid.UUID          `json:"wallet_id"`
	Payload     *ExtractionPayload `json:"extracted_data"`
}

// ConfirmRequest is the DTO for a confirm submission. ConfirmedData, when
// present, replaces the captured payload as the set of entries to commit.
type ConfirmRequest struct {
	ConfirmedData *ExtractionPayload `json:"confirmed_data,omitempty"`
}

// SkippedEntry records one candidate entry dropped during confirm, with the
// reason it failed validation.
type SkippedEntry struct {
	Entry  ExtractionEntry `json:"entry"`
	Reason string          `json:"reason"`
}

// ConfirmResult summarizes a confirm call: the entries committed to the
// ledger and the ones skipped by per-entry validation.
type ConfirmResult struct {
	IntentionID uuid.UUID      `json:"extraction_id"`
	Committed   []*Transaction `json:"committed"`
	Skipped     []SkippedEntry `json:"skipped"`
}
