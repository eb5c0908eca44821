package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
)

type sharingRepoStub struct {
	store.Repository

	wallet       *domain.Wallet
	userByEmail  map[string]*domain.User
	share        *domain.WalletShare
	createdShare *domain.WalletShare
	createErr    error

	acceptCalled bool
	deleteCalled bool
	updatedLevel domain.PermissionLevel
}

func (s *sharingRepoStub) FindWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	if s.wallet == nil || s.wallet.ID != walletID {
		return nil, store.ErrWalletNotFound
	}
	w := *s.wallet
	return &w, nil
}

func (s *sharingRepoStub) FindAcceptedShare(ctx context.Context, walletID, userID uuid.UUID) (*domain.WalletShare, error) {
	return nil, store.ErrShareNotFound
}

func (s *sharingRepoStub) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.userByEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *sharingRepoStub) CreateShare(ctx context.Context, share *domain.WalletShare) error {
	if s.createErr != nil {
		return s.createErr
	}
	share.ID = uuid.New()
	s.createdShare = share
	return nil
}

func (s *sharingRepoStub) FindShareByID(ctx context.Context, shareID uuid.UUID) (*domain.WalletShare, error) {
	if s.share == nil || s.share.ID != shareID {
		return nil, store.ErrShareNotFound
	}
	sh := *s.share
	return &sh, nil
}

func (s *sharingRepoStub) AcceptShare(ctx context.Context, shareID uuid.UUID, acceptedAt time.Time) (*domain.WalletShare, error) {
	s.acceptCalled = true
	accepted := *s.share
	accepted.Accepted = true
	accepted.AcceptedAt = &acceptedAt
	return &accepted, nil
}

func (s *sharingRepoStub) DeleteShare(ctx context.Context, shareID uuid.UUID) error {
	s.deleteCalled = true
	return nil
}

func (s *sharingRepoStub) UpdateShareLevel(ctx context.Context, shareID uuid.UUID, level domain.PermissionLevel) (*domain.WalletShare, error) {
	s.updatedLevel = level
	updated := *s.share
	updated.Level = level
	return &updated, nil
}

type publisherStub struct {
	routingKeys []string
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func TestShareWallet_CreatesPendingGrantAndNotifies(t *testing.T) {
	ownerID := uuid.New()
	walletID := uuid.New()
	invitee := &domain.User{ID: uuid.New(), Email: "friend@example.com"}
	repo := &sharingRepoStub{
		wallet:      &domain.Wallet{ID: walletID, OwnerID: ownerID, Name: "Household"},
		userByEmail: map[string]*domain.User{invitee.Email: invitee},
	}
	publisher := &publisherStub{}
	svc := NewService(repo, nil, nil, publisher)

	share, err := svc.ShareWallet(context.Background(), ownerID, walletID, domain.ShareWalletRequest{
		Email: invitee.Email,
		Level: domain.PermissionWrite,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share.Accepted {
		t.Fatal("expected a new grant to start unaccepted")
	}
	if share.UserID != invitee.ID || share.InvitedBy != ownerID || share.Level != domain.PermissionWrite {
		t.Fatalf("unexpected share: %+v", share)
	}
	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != "notification.wallet_invite" {
		t.Fatalf("expected an invite notification, got %v", publisher.routingKeys)
	}
}

func TestShareWallet_Rejections(t *testing.T) {
	ownerID := uuid.New()
	strangerID := uuid.New()
	walletID := uuid.New()
	owner := &domain.User{ID: ownerID, Email: "owner@example.com"}
	invitee := &domain.User{ID: uuid.New(), Email: "friend@example.com"}
	repo := &sharingRepoStub{
		wallet:      &domain.Wallet{ID: walletID, OwnerID: ownerID},
		userByEmail: map[string]*domain.User{owner.Email: owner, invitee.Email: invitee},
	}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.ShareWallet(ctx, strangerID, walletID, domain.ShareWalletRequest{Email: invitee.Email, Level: domain.PermissionRead}); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for stranger, got %v", err)
	}
	if _, err := svc.ShareWallet(ctx, ownerID, walletID, domain.ShareWalletRequest{Email: "nobody@example.com", Level: domain.PermissionRead}); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.ShareWallet(ctx, ownerID, walletID, domain.ShareWalletRequest{Email: owner.Email, Level: domain.PermissionRead}); !errors.Is(err, ErrSelfShare) {
		t.Fatalf("expected ErrSelfShare, got %v", err)
	}
	if _, err := svc.ShareWallet(ctx, ownerID, walletID, domain.ShareWalletRequest{Email: invitee.Email, Level: "superuser"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bogus level, got %v", err)
	}

	repo.createErr = store.ErrShareExists
	if _, err := svc.ShareWallet(ctx, ownerID, walletID, domain.ShareWalletRequest{Email: invitee.Email, Level: domain.PermissionRead}); !errors.Is(err, store.ErrShareExists) {
		t.Fatalf("expected ErrShareExists on duplicate, got %v", err)
	}
}

func TestRespondToInvitation_Accept(t *testing.T) {
	inviteeID := uuid.New()
	repo := &sharingRepoStub{
		share: &domain.WalletShare{ID: uuid.New(), WalletID: uuid.New(), UserID: inviteeID, InvitedBy: uuid.New(), Level: domain.PermissionRead},
	}
	publisher := &publisherStub{}
	svc := NewService(repo, nil, nil, publisher)

	share, err := svc.RespondToInvitation(context.Background(), inviteeID, repo.share.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.acceptCalled {
		t.Fatal("expected AcceptShare to be called")
	}
	if !share.Accepted || share.AcceptedAt == nil {
		t.Fatal("expected accepted share with timestamp")
	}
	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != "notification.wallet_invite_accepted" {
		t.Fatalf("expected acceptance notification, got %v", publisher.routingKeys)
	}
}

func TestRespondToInvitation_DeclineDeletesRow(t *testing.T) {
	inviteeID := uuid.New()
	repo := &sharingRepoStub{
		share: &domain.WalletShare{ID: uuid.New(), WalletID: uuid.New(), UserID: inviteeID},
	}
	svc := NewService(repo, nil, nil, nil)

	if _, err := svc.RespondToInvitation(context.Background(), inviteeID, repo.share.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.deleteCalled {
		t.Fatal("expected DeleteShare to be called on decline")
	}
	if repo.acceptCalled {
		t.Fatal("decline must not accept")
	}
}

func TestRespondToInvitation_Guards(t *testing.T) {
	inviteeID := uuid.New()
	repo := &sharingRepoStub{
		share: &domain.WalletShare{ID: uuid.New(), WalletID: uuid.New(), UserID: inviteeID},
	}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.RespondToInvitation(ctx, uuid.New(), repo.share.ID, true); !errors.Is(err, ErrNotInvitee) {
		t.Fatalf("expected ErrNotInvitee for wrong user, got %v", err)
	}

	repo.share.Accepted = true
	if _, err := svc.RespondToInvitation(ctx, inviteeID, repo.share.ID, true); !errors.Is(err, ErrShareResolved) {
		t.Fatalf("expected ErrShareResolved for resolved invitation, got %v", err)
	}
}

func TestUpdateShareLevel_OwnerOnly(t *testing.T) {
	ownerID := uuid.New()
	walletID := uuid.New()
	repo := &sharingRepoStub{
		wallet: &domain.Wallet{ID: walletID, OwnerID: ownerID},
		share:  &domain.WalletShare{ID: uuid.New(), WalletID: walletID, UserID: uuid.New(), Level: domain.PermissionRead, Accepted: true},
	}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.UpdateShareLevel(ctx, repo.share.UserID, repo.share.ID, domain.PermissionAdmin); !errors.Is(err, ErrNotWalletOwner) {
		t.Fatalf("expected ErrNotWalletOwner when the grantee escalates, got %v", err)
	}

	updated, err := svc.UpdateShareLevel(ctx, ownerID, repo.share.ID, domain.PermissionAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Level != domain.PermissionAdmin || repo.updatedLevel != domain.PermissionAdmin {
		t.Fatalf("expected level change to admin, got %s", updated.Level)
	}
}

func TestRevokeShare_OwnerAndGranteeMayRevoke(t *testing.T) {
	ownerID := uuid.New()
	granteeID := uuid.New()
	walletID := uuid.New()
	repo := &sharingRepoStub{
		wallet: &domain.Wallet{ID: walletID, OwnerID: ownerID},
		share:  &domain.WalletShare{ID: uuid.New(), WalletID: walletID, UserID: granteeID, Accepted: true},
	}
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	if err := svc.RevokeShare(ctx, uuid.New(), repo.share.ID); !errors.Is(err, ErrNotWalletOwner) {
		t.Fatalf("expected ErrNotWalletOwner for stranger, got %v", err)
	}
	if err := svc.RevokeShare(ctx, granteeID, repo.share.ID); err != nil {
		t.Fatalf("expected grantee to be able to leave, got %v", err)
	}
	if err := svc.RevokeShare(ctx, ownerID, repo.share.ID); err != nil {
		t.Fatalf("expected owner to be able to revoke, got %v", err)
	}
}
