package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

func newTestResolver(t *testing.T, delay time.Duration) (*service.EntitlementResolver, *service.SessionManager, domain.AccountRepository) {
	t.Helper()
	m, accounts := newTestSessionManager(t)
	return service.NewEntitlementResolver(m, delay), m, accounts
}

func TestEntitlementResolver_Plans(t *testing.T) {
	r, _, _ := newTestResolver(t, 0)

	plans := r.Plans()
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	wantIDs := []domain.Tier{domain.TierFree, domain.TierPremium, domain.TierPro}
	for i, p := range plans {
		if p.ID != wantIDs[i] {
			t.Fatalf("plan %d: expected %s, got %s", i, wantIDs[i], p.ID)
		}
	}
	if !plans[1].Popular || plans[0].Popular || plans[2].Popular {
		t.Fatal("expected only premium to be marked popular")
	}
	if plans[1].Price != 9.99 || plans[2].Price != 19.99 || plans[0].Price != 0 {
		t.Fatalf("unexpected prices: %v %v %v", plans[0].Price, plans[1].Price, plans[2].Price)
	}

	// The catalog cannot be mutated through a returned copy.
	plans[0].Features[0] = "changed"
	plans[0].Name = "changed"
	if again := r.Plans(); again[0].Features[0] != "Access to basic tutorials" || again[0].Name != "Free" {
		t.Fatal("catalog was mutated through Plans()")
	}
}

func TestEntitlementResolver_CurrentPlan_Anonymous(t *testing.T) {
	r, _, _ := newTestResolver(t, 0)

	if p := r.CurrentPlan(); p.ID != domain.TierFree {
		t.Fatalf("expected free plan for anonymous, got %s", p.ID)
	}
}

func TestEntitlementResolver_Subscribe_NoSession(t *testing.T) {
	r, _, _ := newTestResolver(t, 0)

	ok, err := r.Subscribe(context.Background(), "pro")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ok {
		t.Fatal("expected subscribe without a session to fail")
	}
}

func TestEntitlementResolver_Subscribe_UnknownPlan(t *testing.T) {
	r, m, _ := newTestResolver(t, time.Hour)
	mustRegister(t, m, "a@x.com", "pw", "Alice")

	// An hour-long delay proves validation happens before the delay.
	ok, err := r.Subscribe(context.Background(), "platinum")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ok {
		t.Fatal("expected unknown plan to fail")
	}
	if m.Current().Tier != domain.TierFree {
		t.Fatal("tier must be unchanged after a failed subscribe")
	}
}

func TestEntitlementResolver_Subscribe_Pro(t *testing.T) {
	r, m, accounts := newTestResolver(t, 10*time.Millisecond)
	mustRegister(t, m, "a@x.com", "pw", "Alice")

	before := time.Now().UTC()
	ok, err := r.Subscribe(context.Background(), "pro")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !ok {
		t.Fatal("expected subscribe to succeed")
	}

	if p := r.CurrentPlan(); p.ID != domain.TierPro {
		t.Fatalf("expected current plan pro, got %s", p.ID)
	}
	if !m.HasSubscription(domain.TierPremium) {
		t.Fatal("expected pro to satisfy premium")
	}

	expiry := m.Current().SubscriptionExpiry
	if expiry == nil {
		t.Fatal("expected an expiry after subscribing")
	}
	if lo, hi := before.AddDate(0, 1, 0), time.Now().UTC().AddDate(0, 1, 0); expiry.Before(lo) || expiry.After(hi) {
		t.Fatalf("expiry %s not one month out (%s..%s)", expiry, lo, hi)
	}

	u := findUser(t, accounts, "a@x.com")
	if u.Tier != domain.TierPro || u.SubscriptionExpiry == nil {
		t.Fatalf("roster entry not updated: %+v", u)
	}
}

func TestEntitlementResolver_SubscribeThenCancel(t *testing.T) {
	r, m, accounts := newTestResolver(t, 0)
	mustRegister(t, m, "a@x.com", "pw", "Alice")
	ctx := context.Background()

	if ok, err := r.Subscribe(ctx, "pro"); err != nil || !ok {
		t.Fatalf("Subscribe: ok=%v err=%v", ok, err)
	}
	if err := r.CancelSubscription(ctx); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}

	s := m.Current()
	if s.Tier != domain.TierFree || s.SubscriptionExpiry != nil {
		t.Fatalf("expected free with no expiry, got tier=%s expiry=%v", s.Tier, s.SubscriptionExpiry)
	}
	u := findUser(t, accounts, "a@x.com")
	if u.Tier != domain.TierFree || u.SubscriptionExpiry != nil {
		t.Fatalf("roster entry not reset: %+v", u)
	}
}

func TestEntitlementResolver_CancelIdempotent(t *testing.T) {
	r, m, _ := newTestResolver(t, 0)
	mustRegister(t, m, "a@x.com", "pw", "Alice")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := r.CancelSubscription(ctx); err != nil {
			t.Fatalf("CancelSubscription #%d: %v", i+1, err)
		}
		if tier := m.Current().Tier; tier != domain.TierFree {
			t.Fatalf("after cancel #%d expected free, got %s", i+1, tier)
		}
	}
}

func TestEntitlementResolver_CancelNoSession(t *testing.T) {
	r, _, _ := newTestResolver(t, 0)

	if err := r.CancelSubscription(context.Background()); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
}

func TestEntitlementResolver_Subscribe_IgnoresCancellation(t *testing.T) {
	delay := 50 * time.Millisecond
	r, m, _ := newTestResolver(t, delay)
	mustRegister(t, m, "a@x.com", "pw", "Alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	ok, err := r.Subscribe(ctx, "premium")
	if err != nil || !ok {
		t.Fatalf("Subscribe: ok=%v err=%v", ok, err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Fatalf("expected the full payment delay, returned after %s", elapsed)
	}
	if m.Current().Tier != domain.TierPremium {
		t.Fatalf("expected premium despite cancelled context, got %s", m.Current().Tier)
	}
}

// A subscribe in flight when the session changes lands on the new session.
func TestEntitlementResolver_Subscribe_StaleTarget(t *testing.T) {
	r, m, accounts := newTestResolver(t, 200*time.Millisecond)
	ctx := context.Background()

	mustRegister(t, m, "bob@x.com", "pw", "Bob")
	mustRegister(t, m, "alice@x.com", "pw", "Alice")

	done := make(chan error, 1)
	go func() {
		_, err := r.Subscribe(ctx, "pro")
		done <- err
	}()

	// Switch accounts while the payment delay is running.
	time.Sleep(50 * time.Millisecond)
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	mustLogin(t, m, "bob@x.com", "pw")

	if err := <-done; err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if tier := findUser(t, accounts, "bob@x.com").Tier; tier != domain.TierPro {
		t.Fatalf("expected the late write to land on bob, got %s", tier)
	}
	if tier := findUser(t, accounts, "alice@x.com").Tier; tier != domain.TierFree {
		t.Fatalf("expected alice to stay free, got %s", tier)
	}
}

func TestEntitlementResolver_Subscribe_SessionGone(t *testing.T) {
	r, m, accounts := newTestResolver(t, 200*time.Millisecond)
	ctx := context.Background()
	mustRegister(t, m, "a@x.com", "pw", "Alice")

	done := make(chan bool, 1)
	go func() {
		ok, _ := r.Subscribe(ctx, "pro")
		done <- ok
	}()

	time.Sleep(50 * time.Millisecond)
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if ok := <-done; !ok {
		t.Fatal("expected subscribe to report success once validation passed")
	}
	if tier := findUser(t, accounts, "a@x.com").Tier; tier != domain.TierFree {
		t.Fatalf("expected no write without a session, got %s", tier)
	}
}
