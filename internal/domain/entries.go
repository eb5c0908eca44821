/**
 * @description
 * Ledger entry models: transactions, subscriptions, and free trials. Every
 * entry belongs to exactly one wallet and has no independent lifecycle;
 * deleting the wallet cascades to its entries.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind classifies a transaction row.
type EntryKind string

const (
	EntryIncome       EntryKind = "income"
	EntryExpense      EntryKind = "expense"
	EntryTransfer     EntryKind = "transfer"
	EntrySubscription EntryKind = "subscription"
	EntryFreeTrial    EntryKind = "free_trial"
)

var knownEntryKinds = map[EntryKind]bool{
	EntryIncome:       true,
	EntryExpense:      true,
	EntryTransfer:     true,
	EntrySubscription: true,
	EntryFreeTrial:    true,
}

// Valid reports whether the kind is one of the accepted entry kinds.
func (k EntryKind) Valid() bool { return knownEntryKinds[k] }

// Transaction is a single ledger entry in a wallet. It maps to the
// `transactions` table.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	WalletID     uuid.UUID       `json:"wallet_id"`
	Kind         EntryKind       `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Notes        string          `json:"notes"`
	URLReference string          `json:"url_reference,omitempty"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateTransactionRequest is the DTO for manual transaction creation.
type CreateTransactionRequest struct {
	Kind         EntryKind       `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Notes        string          `json:"notes"`
	URLReference string          `json:"url_reference"`
	Date         *time.Time      `json:"date,omitempty"`
}

// UpdateTransactionRequest carries optional transaction changes.
type UpdateTransactionRequest struct {
	Kind         *EntryKind       `json:"type,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	URLReference *string          `json:"url_reference,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
}

// Subscription is a recurring commitment tracked against a wallet.
type Subscription struct {
	ID           uuid.UUID       `json:"id"`
	WalletID     uuid.UUID       `json:"wallet_id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	IntervalType string          `json:"interval_type"` // weekly, monthly, yearly
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	Notes        string          `json:"notes"`
	Status       string          `json:"status"` // active, cancelled, expired
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateSubscriptionRequest is the DTO for subscription creation.
type CreateSubscriptionRequest struct {
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	IntervalType string          `json:"interval_type"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	Notes        string          `json:"notes"`
}

// UpdateSubscriptionRequest carries optional subscription changes.
type UpdateSubscriptionRequest struct {
	Name         *string          `json:"name,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	IntervalType *string          `json:"interval_type,omitempty"`
	StartDate    *time.Time       `json:"start_date,omitempty"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Status       *string          `json:"status,omitempty"`
}

// FreeTrial tracks a trial period so the user is warned before it converts.
type FreeTrial struct {
	ID                    uuid.UUID  `json:"id"`
	WalletID              uuid.UUID  `json:"wallet_id"`
	Name                  string     `json:"name"`
	StartDate             time.Time  `json:"start_date"`
	EndDate               time.Time  `json:"end_date"`
	Notes                 string     `json:"notes"`
	Status                string     `json:"status"` // active, expired, converted, cancelled
	RelatedSubscriptionID *uuid.UUID `json:"related_subscription_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// CreateFreeTrialRequest is the DTO for free-trial creation.
type CreateFreeTrialRequest struct {
	Name                  string     `json:"name"`
	StartDate             time.Time  `json:"start_date"`
	EndDate               time.Time  `json:"end_date"`
	Notes                 string     `json:"notes"`
	RelatedSubscriptionID *uuid.UUID `json:"related_subscription_id,omitempty"`
}

// UpdateFreeTrialRequest carries optional free-trial changes.
type UpdateFreeTrialRequest struct {
	Name                  *string    `json:"name,omitempty"`
	StartDate             *time.Time `json:"start_date,omitempty"`
	EndDate               *time.Time `json:"end_date,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
	Status                *string    `json:"status,omitempty"`
	RelatedSubscriptionID *uuid.UUID `json:"related_subscription_id,omitempty"`
}
