package service

import (
	"alcyxob/gym-manager/internal/domain"
	"fmt"
	"math"
	"time"
)

// SubscriptionState classifies whether an account may use the gym.
type SubscriptionState string

const (
	SubscriptionOK      SubscriptionState = "OK"
	SubscriptionWarning SubscriptionState = "WARNING"
	SubscriptionExpired SubscriptionState = "EXPIRED"
)

// DefaultWarningDays is how close to the end date a member starts being warned.
const DefaultWarningDays = 3

// RenewalMessage is shown to members whose subscription has ended.
const RenewalMessage = "Your subscription has expired. Please contact the gym staff to renew it."

// SubscriptionStatus is the evaluation result. Message is nil when there is
// nothing to tell the user.
type SubscriptionStatus struct {
	State   SubscriptionState `json:"state"`
	Message *string           `json:"message"`
}

// SubscriptionEvaluator derives the subscription state of a user. It has no
// side effects: the same user and instant always give the same result.
type SubscriptionEvaluator struct {
	warningDays float64
}

func NewSubscriptionEvaluator(warningDays int) SubscriptionEvaluator {
	if warningDays < 0 {
		warningDays = DefaultWarningDays
	}
	return SubscriptionEvaluator{warningDays: float64(warningDays)}
}

// EvaluateSubscription evaluates with the default warning window.
func EvaluateSubscription(user *domain.User, now time.Time) SubscriptionStatus {
	return NewSubscriptionEvaluator(DefaultWarningDays).Evaluate(user, now)
}

// Evaluate maps a user and the current time to a subscription state.
// Staff never expire. A missing end date counts as expired.
func (e SubscriptionEvaluator) Evaluate(user *domain.User, now time.Time) SubscriptionStatus {
	if user != nil && user.Role.IsStaff() {
		return SubscriptionStatus{State: SubscriptionOK}
	}
	if user == nil || user.SubscriptionEndDate.IsZero() {
		return expired()
	}

	end := user.SubscriptionEndDate
	if now.After(end) {
		return expired()
	}

	diffDays := float64(end.Sub(now)) / float64(24*time.Hour)
	if diffDays <= e.warningDays {
		msg := warningMessage(int(math.Ceil(diffDays)))
		return SubscriptionStatus{State: SubscriptionWarning, Message: &msg}
	}
	return SubscriptionStatus{State: SubscriptionOK}
}

func expired() SubscriptionStatus {
	msg := RenewalMessage
	return SubscriptionStatus{State: SubscriptionExpired, Message: &msg}
}

func warningMessage(days int) string {
	switch {
	case days <= 0:
		return "Your subscription expires today. Remember to renew it."
	case days == 1:
		return "Your subscription expires in 1 day. Remember to renew it."
	default:
		return fmt.Sprintf("Your subscription expires in %d days. Remember to renew it.", days)
	}
}
