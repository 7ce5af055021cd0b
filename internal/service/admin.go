package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/msomdec/campuscoders/internal/domain"
)

// UserStats summarises the roster for the admin dashboard.
type UserStats struct {
	TotalUsers   int     `json:"totalUsers"`
	FreeUsers    int     `json:"freeUsers"`
	PremiumUsers int     `json:"premiumUsers"`
	ProUsers     int     `json:"proUsers"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// AdminOverview is the roster listing plus its stats.
type AdminOverview struct {
	Users []domain.Session `json:"users"`
	Stats UserStats        `json:"stats"`
}

// AdminService reports on and edits the whole roster. It does not check
// the caller's role; callers gate it with SessionManager.IsAdmin.
//
// Each mutation reads the full roster, edits one entry and writes the full
// roster back, so it can overwrite a concurrent change to another field.
type AdminService struct {
	accounts domain.AccountRepository
	reports  singleflight.Group
}

// NewAdminService creates a new AdminService.
func NewAdminService(accounts domain.AccountRepository) *AdminService {
	return &AdminService{accounts: accounts}
}

// LoadUsers lists the roster without credentials and computes per-tier
// counts and a revenue estimate from catalog prices. Concurrent callers
// share one roster read, which outlives the cancellation of whichever
// caller started it.
func (s *AdminService) LoadUsers(ctx context.Context) (*AdminOverview, error) {
	v, err, _ := s.reports.Do("overview", func() (any, error) {
		users, err := s.accounts.Users(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return buildOverview(users), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AdminOverview), nil
}

func buildOverview(users []domain.User) *AdminOverview {
	overview := &AdminOverview{Users: make([]domain.Session, 0, len(users))}
	for _, u := range users {
		overview.Users = append(overview.Users, u.Session())
		overview.Stats.TotalUsers++
		switch u.Tier {
		case domain.TierPremium:
			overview.Stats.PremiumUsers++
		case domain.TierPro:
			overview.Stats.ProUsers++
		default:
			overview.Stats.FreeUsers++
		}
	}

	revenue := float64(overview.Stats.PremiumUsers)*domain.PlanFor(domain.TierPremium).Price +
		float64(overview.Stats.ProUsers)*domain.PlanFor(domain.TierPro).Price
	overview.Stats.TotalRevenue = math.Round(revenue*100) / 100
	return overview
}

// UpdateUserRole sets the role of the roster entry with the given id.
func (s *AdminService) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	return s.edit(ctx, id, func(u *domain.User) { u.Role = role })
}

// UpdateUserSubscription sets the tier of the roster entry with the given
// id. The expiry is left as it is.
func (s *AdminService) UpdateUserSubscription(ctx context.Context, id string, tier domain.Tier) error {
	return s.edit(ctx, id, func(u *domain.User) { u.Tier = tier })
}

func (s *AdminService) edit(ctx context.Context, id string, fn func(*domain.User)) error {
	users, err := s.accounts.Users(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID != id {
			continue
		}
		fn(&users[i])
		if err := s.accounts.SaveUsers(ctx, users); err != nil {
			return err
		}
		slog.Info("roster entry updated", "user_id", id, "role", users[i].Role, "tier", users[i].Tier)
		return nil
	}
	return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}
