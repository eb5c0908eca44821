package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionReminder couples an upcoming renewal with the wallet owner
// who should be notified about it.
type SubscriptionReminder struct {
	Subscription Subscription
	OwnerID      uuid.UUID
}

// FreeTrialReminder couples an expiring trial with the wallet owner.
type FreeTrialReminder struct {
	Trial   FreeTrial
	OwnerID uuid.UUID
}

// PendingReviewReminder identifies an extraction intention that has sat in
// pending review longer than the nag threshold.
type PendingReviewReminder struct {
	IntentionID uuid.UUID
	OwnerID     uuid.UUID
	CreatedAt   time.Time
}
