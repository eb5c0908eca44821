/**
 * @description
 * Request validation for wallet, entry, sharing, and capture DTOs. Rules
 * mirror the API contract: names capped at 255 characters, notes at 1000,
 * currencies are 3-letter uppercase ISO codes, amounts are strictly
 * positive, and date ranges must be ordered. All failures wrap ErrValidation
 * so the API layer can map them to a single status code.
 */

package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cashtide/wallet-service/internal/domain"
)

// ErrValidation is the root of every input validation failure.
var ErrValidation = errors.New("validation failed")

var errInvalidPermissionLevel = fmt.Errorf("%w: permission level must be one of read, write, admin", ErrValidation)

const (
	maxNameLen  = 255
	maxNotesLen = 1000
	maxURLLen   = 2048
)

var knownIntervals = map[string]bool{"weekly": true, "monthly": true, "yearly": true}

var knownSubscriptionStatuses = map[string]bool{"active": true, "cancelled": true, "expired": true}

var knownTrialStatuses = map[string]bool{"active": true, "expired": true, "converted": true, "cancelled": true}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationErrorf("name is required")
	}
	if len(name) > maxNameLen {
		return validationErrorf("name must be at most %d characters", maxNameLen)
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > maxNotesLen {
		return validationErrorf("notes must be at most %d characters", maxNotesLen)
	}
	return nil
}

// normalizeCurrency uppercases and validates a 3-letter ISO currency code.
func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", validationErrorf("currency must be a 3-letter code")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", validationErrorf("currency must be a 3-letter code")
		}
	}
	return code, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return validationErrorf("amount must be positive")
	}
	return nil
}

func validateCreateWallet(req *domain.CreateWalletRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if err := validateNotes(req.Description); err != nil {
		return err
	}
	primary, err := normalizeCurrency(req.PrimaryCurrency)
	if err != nil {
		return err
	}
	req.PrimaryCurrency = primary

	seen := map[string]bool{primary: true}
	normalized := []string{primary}
	for _, code := range req.Currencies {
		c, err := normalizeCurrency(code)
		if err != nil {
			return err
		}
		if !seen[c] {
			seen[c] = true
			normalized = append(normalized, c)
		}
	}
	req.Currencies = normalized
	return nil
}

func validateUpdateWallet(req *domain.UpdateWalletRequest) error {
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateNotes(*req.Description); err != nil {
			return err
		}
	}
	if req.PrimaryCurrency != nil {
		c, err := normalizeCurrency(*req.PrimaryCurrency)
		if err != nil {
			return err
		}
		*req.PrimaryCurrency = c
	}
	return nil
}

func validateCreateTransaction(req *domain.CreateTransactionRequest) error {
	if !req.Kind.Valid() {
		return validationErrorf("type must be one of income, expense, transfer, subscription, free_trial")
	}
	if err := validateAmount(req.Amount); err != nil {
		return err
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return err
	}
	req.Currency = currency
	if err := validateNotes(req.Notes); err != nil {
		return err
	}
	if len(req.URLReference) > maxURLLen {
		return validationErrorf("url_reference must be at most %d characters", maxURLLen)
	}
	return nil
}

func validateUpdateTransaction(req *domain.UpdateTransactionRequest) error {
	if req.Kind != nil && !req.Kind.Valid() {
		return validationErrorf("type must be one of income, expense, transfer, subscription, free_trial")
	}
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return err
		}
	}
	if req.Currency != nil {
		c, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return err
		}
		*req.Currency = c
	}
	if req.Notes != nil {
		if err := validateNotes(*req.Notes); err != nil {
			return err
		}
	}
	if req.URLReference != nil && len(*req.URLReference) > maxURLLen {
		return validationErrorf("url_reference must be at most %d characters", maxURLLen)
	}
	return nil
}

func validateCreateSubscription(req *domain.CreateSubscriptionRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if err := validateAmount(req.Amount); err != nil {
		return err
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return err
	}
	req.Currency = currency
	if !knownIntervals[req.IntervalType] {
		return validationErrorf("interval_type must be one of weekly, monthly, yearly")
	}
	if req.StartDate.IsZero() {
		return validationErrorf("start_date is required")
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return validationErrorf("end_date must be after start_date")
	}
	return validateNotes(req.Notes)
}

func validateUpdateSubscription(req *domain.UpdateSubscriptionRequest) error {
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return err
		}
	}
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return err
		}
	}
	if req.Currency != nil {
		c, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return err
		}
		*req.Currency = c
	}
	if req.IntervalType != nil && !knownIntervals[*req.IntervalType] {
		return validationErrorf("interval_type must be one of weekly, monthly, yearly")
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return validationErrorf("end_date must be after start_date")
	}
	if req.Status != nil && !knownSubscriptionStatuses[*req.Status] {
		return validationErrorf("status must be one of active, cancelled, expired")
	}
	if req.Notes != nil {
		return validateNotes(*req.Notes)
	}
	return nil
}

func validateCreateFreeTrial(req *domain.CreateFreeTrialRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return validationErrorf("start_date and end_date are required")
	}
	if !req.EndDate.After(req.StartDate) {
		return validationErrorf("end_date must be after start_date")
	}
	return validateNotes(req.Notes)
}

func validateUpdateFreeTrial(req *domain.UpdateFreeTrialRequest) error {
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return err
		}
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return validationErrorf("end_date must be after start_date")
	}
	if req.Status != nil && !knownTrialStatuses[*req.Status] {
		return validationErrorf("status must be one of active, expired, converted, cancelled")
	}
	if req.Notes != nil {
		return validateNotes(*req.Notes)
	}
	return nil
}
