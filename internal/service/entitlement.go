package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/msomdec/campuscoders/internal/domain"
)

// EntitlementResolver serves the plan catalog and moves the current session
// between tiers.
type EntitlementResolver struct {
	sessions     *SessionManager
	paymentDelay time.Duration
}

// NewEntitlementResolver creates an EntitlementResolver. paymentDelay is
// how long Subscribe waits to emulate payment processing.
func NewEntitlementResolver(sessions *SessionManager, paymentDelay time.Duration) *EntitlementResolver {
	return &EntitlementResolver{sessions: sessions, paymentDelay: paymentDelay}
}

// Plans returns the plan catalog.
func (r *EntitlementResolver) Plans() []domain.SubscriptionPlan {
	return domain.Plans()
}

// CurrentPlan returns the catalog entry for the current session's tier,
// or the free plan when nobody is logged in.
func (r *EntitlementResolver) CurrentPlan() domain.SubscriptionPlan {
	s := r.sessions.Current()
	if s == nil {
		return domain.PlanFor(domain.TierFree)
	}
	return domain.PlanFor(s.Tier)
}

// Subscribe moves the current session to planID for one calendar month.
// It returns false when nobody is logged in or planID is not in the
// catalog.
//
// The payment delay cannot be cancelled: once validation passes the tier
// change is written after the delay even if ctx is done, and it lands on
// whichever session is current at that moment.
func (r *EntitlementResolver) Subscribe(ctx context.Context, planID string) (bool, error) {
	if r.sessions.Current() == nil {
		return false, nil
	}
	tier, err := domain.ParseTier(planID)
	if err != nil {
		return false, nil
	}

	r.simulatePayment()

	expiry := time.Now().UTC().AddDate(0, 1, 0)
	applied, err := r.sessions.UpdateUser(context.WithoutCancel(ctx), domain.UserPatch{
		Tier:   &tier,
		Expiry: &expiry,
	})
	if err != nil {
		return false, err
	}
	if !applied {
		slog.Warn("subscription completed without a session", "plan", planID)
		return true, nil
	}
	slog.Info("subscription started", "plan", planID, "expires_at", expiry)
	return true, nil
}

// CancelSubscription returns the current session to the free tier and
// clears its expiry. It writes even when the tier is already free.
func (r *EntitlementResolver) CancelSubscription(ctx context.Context) error {
	if r.sessions.Current() == nil {
		return nil
	}
	free := domain.TierFree
	if _, err := r.sessions.UpdateUser(ctx, domain.UserPatch{Tier: &free, ClearExpiry: true}); err != nil {
		return err
	}
	slog.Info("subscription cancelled")
	return nil
}

func (r *EntitlementResolver) simulatePayment() {
	if r.paymentDelay <= 0 {
		return
	}
	timer := time.NewTimer(r.paymentDelay)
	defer timer.Stop()
	<-timer.C
}
