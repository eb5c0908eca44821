/**
 * @description
 * Periodic reminder sweeps, run on a cron schedule from main. Each sweep
 * queries upcoming or stale records and publishes one notification event per
 * hit; delivery and deduplication are the notification consumer's problem.
 */

package app

import (
	"context"
	"log"
	"time"
)

const (
	subscriptionReminderWindow = 3 * 24 * time.Hour
	freeTrialReminderWindow    = 2 * 24 * time.Hour
	pendingReviewAge           = 24 * time.Hour
)

// SweepSubscriptionRenewals publishes a reminder for every active
// subscription ending within the next three days.
func (s *Service) SweepSubscriptionRenewals(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(subscriptionReminderWindow)
	reminders, err := s.repo.FindSubscriptionsRenewingBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		s.notify(ctx, "notification.subscription_renewal", map[string]interface{}{
			"user_id":         rem.OwnerID,
			"subscription_id": rem.Subscription.ID,
			"name":            rem.Subscription.Name,
			"amount":          rem.Subscription.Amount,
			"currency":        rem.Subscription.Currency,
			"end_date":        rem.Subscription.EndDate,
		})
	}
	log.Printf("level=info component=reminders msg=\"subscription sweep complete\" count=%d", len(reminders))
	return nil
}

// SweepFreeTrialExpiries publishes a reminder for every active free trial
// expiring within the next two days.
func (s *Service) SweepFreeTrialExpiries(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(freeTrialReminderWindow)
	reminders, err := s.repo.FindFreeTrialsExpiringBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		s.notify(ctx, "notification.free_trial_expiry", map[string]interface{}{
			"user_id":  rem.OwnerID,
			"trial_id": rem.Trial.ID,
			"name":     rem.Trial.Name,
			"end_date": rem.Trial.EndDate,
		})
	}
	log.Printf("level=info component=reminders msg=\"free trial sweep complete\" count=%d", len(reminders))
	return nil
}

// SweepStaleIntentions nags users about extractions left pending for more
// than a day.
func (s *Service) SweepStaleIntentions(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-pendingReviewAge)
	reminders, err := s.repo.FindStalePendingIntentions(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		s.notify(ctx, "notification.extraction_pending_review", map[string]interface{}{
			"user_id":       rem.OwnerID,
			"extraction_id": rem.IntentionID,
			"captured_at":   rem.CreatedAt,
		})
	}
	log.Printf("level=info component=reminders msg=\"stale intention sweep complete\" count=%d", len(reminders))
	return nil
}
