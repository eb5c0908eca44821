/**
 * @description
 * This file defines the core domain models for the wallet-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Monetary amounts use shopspring/decimal rather than floats so that
 *   values like 19.99 survive round-trips through validation and storage.
 * - Using distinct types for API requests and database models keeps the
 *   web layer decoupled from the persistence layer.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PermissionLevel is the tier granted to a shared-wallet user.
// Levels are totally ordered: read < write < admin.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

var permissionRank = map[PermissionLevel]int{
	PermissionRead:  1,
	PermissionWrite: 2,
	PermissionAdmin: 3,
}

// Valid reports whether the level is one of the three known tiers.
func (p PermissionLevel) Valid() bool {
	_, ok := permissionRank[p]
	return ok
}

// AtLeast reports whether p satisfies a minimum required level.
func (p PermissionLevel) AtLeast(min PermissionLevel) bool {
	return permissionRank[p] >= permissionRank[min]
}

// User is the subset of user data this service needs.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// Wallet is the owned financial container. It maps to the `wallets` table.
type Wallet struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PrimaryCurrency string    `json:"primary_currency"`
	Currencies      []string  `json:"currencies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Populated only when the wallet reached the caller through a share.
	Shared          bool             `json:"shared,omitempty"`
	PermissionLevel *PermissionLevel `json:"permission_level,omitempty"`
}

// WalletShare is a delegated, tiered access grant from a wallet owner to
// another user. It maps to the `shared_wallets` table. At most one row may
// exist per (wallet_id, user_id) pair.
type WalletShare struct {
	ID         uuid.UUID       `json:"id"`
	WalletID   uuid.UUID       `json:"wallet_id"`
	UserID     uuid.UUID       `json:"user_id"`
	InvitedBy  uuid.UUID       `json:"invited_by"`
	Level      PermissionLevel `json:"permission_level"`
	Accepted   bool            `json:"accepted"`
	AcceptedAt *time.Time      `json:"accepted_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`

	// WalletName is joined in for the invitation inbox.
	WalletName string `json:"wallet_name,omitempty"`
}

// CreateWalletRequest is the DTO for wallet creation.
type CreateWalletRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PrimaryCurrency string   `json:"primary_currency"`
	Currencies      []string `json:"currencies"`
}

// UpdateWalletRequest carries optional wallet metadata changes.
type UpdateWalletRequest struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	PrimaryCurrency *string `json:"primary_currency,omitempty"`
}

// ShareWalletRequest is the DTO for inviting another user to a wallet.
type ShareWalletRequest struct {
	Email string          `json:"email"`
	Level PermissionLevel `json:"permission_level"`
}

// WalletSummary aggregates a wallet's transactions converted into its
// primary currency.
type WalletSummary struct {
	WalletID         uuid.UUID       `json:"wallet_id"`
	Currency         string          `json:"currency"`
	TransactionCount int             `json:"transaction_count"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
}
