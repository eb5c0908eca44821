/**
 * @description
 * Sharing grant lifecycle: inviting a user to a wallet, accepting or
 * declining the invitation, changing a grant's tier, and revoking a grant.
 * Invitations are created unaccepted and confer no access until the invitee
 * accepts. Only the wallet owner manages grants; the grantee may additionally
 * decline or leave.
 */

package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/domain"
)

// ShareWallet invites the user identified by email to the wallet at the
// requested tier. The invitee must already hold an account; there is no
// invite-by-email onboarding flow here.
func (s *Service) ShareWallet(ctx context.Context, ownerID, walletID uuid.UUID, req domain.ShareWalletRequest) (*domain.WalletShare, error) {
	if !req.Level.Valid() {
		return nil, errInvalidPermissionLevel
	}

	access, err := s.ResolveWalletAccess(ctx, ownerID, walletID)
	if err != nil {
		return nil, err
	}
	switch access.Decision {
	case AccessOwner:
	case AccessGrantee:
		return nil, ErrNotWalletOwner
	default:
		// A stranger probing wallet IDs learns nothing.
		return nil, ErrAccessDenied
	}

	invitee, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if invitee.ID == ownerID {
		return nil, ErrSelfShare
	}

	share := &domain.WalletShare{
		WalletID:  walletID,
		UserID:    invitee.ID,
		InvitedBy: ownerID,
		Level:     req.Level,
		Accepted:  false,
	}
	if err := s.repo.CreateShare(ctx, share); err != nil {
		return nil, err
	}

	s.notify(ctx, "notification.wallet_invite", map[string]interface{}{
		"share_id":    share.ID,
		"wallet_id":   walletID,
		"wallet_name": access.Wallet.Name,
		"invitee_id":  invitee.ID,
		"invited_by":  ownerID,
		"level":       share.Level,
	})
	return share, nil
}

// RespondToInvitation resolves a pending invitation. Accepting flips the
// grant active and records the acceptance time; declining deletes the row so
// the owner may re-invite later. Only the invitee may respond, and only while
// the invitation is still pending.
func (s *Service) RespondToInvitation(ctx context.Context, userID, shareID uuid.UUID, accept bool) (*domain.WalletShare, error) {
	share, err := s.repo.FindShareByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.UserID != userID {
		return nil, ErrNotInvitee
	}
	if share.Accepted {
		return nil, ErrShareResolved
	}

	if !accept {
		if err := s.repo.DeleteShare(ctx, shareID); err != nil {
			return nil, err
		}
		s.notify(ctx, "notification.wallet_invite_declined", map[string]interface{}{
			"share_id":   shareID,
			"wallet_id":  share.WalletID,
			"invited_by": share.InvitedBy,
			"invitee_id": userID,
		})
		return share, nil
	}

	accepted, err := s.repo.AcceptShare(ctx, shareID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "notification.wallet_invite_accepted", map[string]interface{}{
		"share_id":   shareID,
		"wallet_id":  accepted.WalletID,
		"invited_by": accepted.InvitedBy,
		"invitee_id": userID,
	})
	return accepted, nil
}

// UpdateShareLevel changes an existing grant's tier. Owner only. The change
// takes effect on the grantee's next operation; tightening a tier never
// needs the grantee's consent.
func (s *Service) UpdateShareLevel(ctx context.Context, callerID, shareID uuid.UUID, level domain.PermissionLevel) (*domain.WalletShare, error) {
	if !level.Valid() {
		return nil, errInvalidPermissionLevel
	}
	share, err := s.repo.FindShareByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.repo.FindWalletByID(ctx, share.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet.OwnerID != callerID {
		return nil, ErrNotWalletOwner
	}
	return s.repo.UpdateShareLevel(ctx, shareID, level)
}

// RevokeShare removes a grant in any state. The wallet owner may revoke, and
// the grantee may leave (or withdraw from a pending invitation) themselves.
func (s *Service) RevokeShare(ctx context.Context, callerID, shareID uuid.UUID) error {
	share, err := s.repo.FindShareByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.UserID != callerID {
		wallet, err := s.repo.FindWalletByID(ctx, share.WalletID)
		if err != nil {
			return err
		}
		if wallet.OwnerID != callerID {
			return ErrNotWalletOwner
		}
	}
	return s.repo.DeleteShare(ctx, shareID)
}

// ListPendingInvitations returns the caller's unresolved invitations, newest
// first, with wallet names attached for display.
func (s *Service) ListPendingInvitations(ctx context.Context, userID uuid.UUID) ([]domain.WalletShare, error) {
	return s.repo.FindPendingSharesForUser(ctx, userID)
}
