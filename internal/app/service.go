/**
 * @description
 * This file defines the core application service for the wallet-service. The
 * Service struct holds the data access layer and the external collaborators
 * (extraction model, exchange-rate source, notification event producer,
 * confirm lock) and exposes the business operations consumed by the API layer.
 *
 * @dependencies
 * - context, errors, log: Standard Go libraries.
 * - internal/store: The data access layer.
 * - internal/domain: The domain models.
 */

package app

import (
	"context"
	"errors"
	"log"

	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
)

var (
	// ErrAccessDenied means the wallet exists but the caller has no owner or
	// accepted-share relationship with it.
	ErrAccessDenied = errors.New("access denied to this wallet")
	// ErrReadOnlyAccess means the caller reached the wallet through a share
	// whose level does not satisfy the operation's minimum.
	ErrReadOnlyAccess = errors.New("insufficient permissions for this wallet")
	// ErrNotWalletOwner means an operation reserved for the wallet owner was
	// attempted by someone else.
	ErrNotWalletOwner = errors.New("only the wallet owner may manage sharing")

	ErrShareResolved      = errors.New("sharing invitation already resolved")
	ErrNotInvitee         = errors.New("sharing invitation is addressed to another user")
	ErrSelfShare          = errors.New("cannot share a wallet with its owner")
	ErrIntentionProcessed = errors.New("extraction already processed")
	ErrConfirmInProgress  = errors.New("extraction confirmation already in progress")
	ErrInvalidPayload     = errors.New("invalid extraction data structure")

	ErrMissingContent       = errors.New("page content is required")
	ErrMissingURL           = errors.New("page url is required")
	ErrExtractorUnavailable = errors.New("extraction service unavailable")
)

// Extractor is the external text-understanding collaborator that turns raw
// page content into structured candidate entries.
type Extractor interface {
	Extract(ctx context.Context, content, pageURL string) (*domain.ExtractionPayload, error)
}

// RateSource provides exchange rates for currency conversion.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// EventPublisher publishes notification events. Publishing is always
// fire-and-forget from the service's point of view.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// ConfirmLock serializes confirm calls per intention across processes.
type ConfirmLock interface {
	Acquire(ctx context.Context, intentionID string) (bool, error)
	Release(ctx context.Context, intentionID string)
}

// Service contains the core business logic of the wallet-service.
type Service struct {
	repo        store.Repository
	extractor   Extractor
	rates       RateSource
	publisher   EventPublisher
	confirmLock ConfirmLock

	contentLimit int
	excerptLimit int
}

// NewService creates a new Service with its dependencies. extractor, rates,
// publisher and confirmLock may be nil; the corresponding features degrade
// (capture fails, conversion uses rate 1, events are skipped, the lock is a
// no-op) rather than panicking.
func NewService(repo store.Repository, extractor Extractor, rates RateSource, publisher EventPublisher) *Service {
	return &Service{
		repo:         repo,
		extractor:    extractor,
		rates:        rates,
		publisher:    publisher,
		contentLimit: 4000,
		excerptLimit: 1000,
	}
}

// SetConfirmLock installs the distributed confirm lock. Without it the
// conditional status update alone guards against double commits.
func (s *Service) SetConfirmLock(lock ConfirmLock) {
	s.confirmLock = lock
}

// SetContentLimits overrides the capture truncation limits. Non-positive
// values keep the defaults.
func (s *Service) SetContentLimits(content, excerpt int) {
	if content > 0 {
		s.contentLimit = content
	}
	if excerpt > 0 {
		s.excerptLimit = excerpt
	}
}

const notificationExchange = "notification_events"

// notify publishes a notification event. Failures are logged and swallowed:
// notification delivery must never fail the calling operation.
func (s *Service) notify(ctx context.Context, routingKey string, body interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, notificationExchange, routingKey, body); err != nil {
		log.Printf("level=warn component=app msg=\"notification publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
