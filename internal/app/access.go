/**
 * @description
 * Wallet access resolution. Every wallet-scoped operation funnels through a
 * single resolver that classifies the caller as owner, accepted grantee, or
 * denied, and exposes the effective permission tier. Pending (unaccepted)
 * shares confer no access at all.
 */

package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
)

// AccessDecision classifies the relationship between a caller and a wallet.
type AccessDecision int

const (
	AccessDenied AccessDecision = iota
	AccessGrantee
	AccessOwner
)

// WalletAccess is the outcome of resolving a caller against a wallet.
type WalletAccess struct {
	Decision AccessDecision
	// Level is the grantee's permission tier. Unset for owners, who hold
	// every capability implicitly.
	Level  domain.PermissionLevel
	Wallet *domain.Wallet
}

// AtLeast reports whether the access satisfies the given minimum tier.
// Ownership satisfies every tier.
func (a *WalletAccess) AtLeast(min domain.PermissionLevel) bool {
	switch a.Decision {
	case AccessOwner:
		return true
	case AccessGrantee:
		return a.Level.AtLeast(min)
	default:
		return false
	}
}

// ResolveWalletAccess loads the wallet and determines the caller's standing.
// Ownership is checked before shares, so an owner's decision never depends on
// the share table. Returns store.ErrWalletNotFound when the wallet does not
// exist; a denied caller gets a WalletAccess with Decision == AccessDenied,
// not an error, so callers can choose how to surface it.
func (s *Service) ResolveWalletAccess(ctx context.Context, userID, walletID uuid.UUID) (*WalletAccess, error) {
	wallet, err := s.repo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	if wallet.OwnerID == userID {
		return &WalletAccess{Decision: AccessOwner, Wallet: wallet}, nil
	}

	share, err := s.repo.FindAcceptedShare(ctx, walletID, userID)
	if err != nil {
		if errors.Is(err, store.ErrShareNotFound) {
			return &WalletAccess{Decision: AccessDenied, Wallet: wallet}, nil
		}
		return nil, err
	}

	wallet.Shared = true
	level := share.Level
	wallet.PermissionLevel = &level
	return &WalletAccess{Decision: AccessGrantee, Level: share.Level, Wallet: wallet}, nil
}

// requireWalletAccess resolves access and enforces a minimum tier, mapping
// shortfalls to the service error taxonomy: ErrAccessDenied when the caller
// has no standing, ErrReadOnlyAccess when the tier is too low.
func (s *Service) requireWalletAccess(ctx context.Context, userID, walletID uuid.UUID, min domain.PermissionLevel) (*WalletAccess, error) {
	access, err := s.ResolveWalletAccess(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	if access.Decision == AccessDenied {
		return nil, ErrAccessDenied
	}
	if !access.AtLeast(min) {
		return nil, ErrReadOnlyAccess
	}
	return access, nil
}
