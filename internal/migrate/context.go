package migrate

import (
	"context"
	"errors"
)

// ContextSwitcher tracks which subscription is active for subsequent calls.
// Every operation that touches a specific subscription must be preceded by a
// SwitchTo call; no component may assume a previous switch is still in effect.
type ContextSwitcher interface {
	SwitchTo(ctx context.Context, subscriptionID string) error
	Current() string
}

type SubscriptionVerifier interface {
	VerifyAccess(ctx context.Context, subscriptionID string) error
}

// SubscriptionContext is the ambient "currently active subscription" handle.
// One handle belongs to exactly one environment pipeline run; handles are
// never shared across concurrently running environments.
type SubscriptionContext struct {
	verifier SubscriptionVerifier
	current  string
	verified map[string]bool
}

func NewSubscriptionContext(verifier SubscriptionVerifier) *SubscriptionContext {
	return &SubscriptionContext{
		verifier: verifier,
		verified: map[string]bool{},
	}
}

// SwitchTo makes subscriptionID the active subscription. Accessibility is
// verified on the first switch to each subscription and cached for the
// lifetime of the handle; the switch itself is performed on every call.
func (s *SubscriptionContext) SwitchTo(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return &ContextSwitchError{SubscriptionID: subscriptionID, Cause: errors.New("subscription id is empty")}
	}
	if !s.verified[subscriptionID] {
		if err := s.verifier.VerifyAccess(ctx, subscriptionID); err != nil {
			return &ContextSwitchError{SubscriptionID: subscriptionID, Cause: err}
		}
		s.verified[subscriptionID] = true
	}
	s.current = subscriptionID
	return nil
}

func (s *SubscriptionContext) Current() string {
	return s.current
}
