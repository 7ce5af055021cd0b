package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/campuscoders/internal/domain"
)

// SessionManager owns the single authenticated session of this instance:
// registration, login, logout and profile updates, plus the role and tier
// predicates gated features call.
//
// Roster mutations are whole-collection read-modify-writes with no guard;
// concurrent writers can lose updates. Session transitions (login, logout,
// the session half of an update) are serialized by transition.
type SessionManager struct {
	accounts    domain.AccountRepository
	credentials Credentials

	transition sync.Mutex

	mu      sync.RWMutex
	current *domain.Session
}

// NewSessionManager creates a SessionManager in the anonymous state.
func NewSessionManager(accounts domain.AccountRepository, credentials Credentials) *SessionManager {
	return &SessionManager{
		accounts:    accounts,
		credentials: credentials,
	}
}

// Restore loads the persisted session, if any, into memory.
func (m *SessionManager) Restore(ctx context.Context) error {
	session, err := m.accounts.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	m.setCurrent(session)
	if session != nil {
		slog.Info("session restored", "user_id", session.ID)
	}
	return nil
}

// Register creates an account and logs it in. It returns false when the
// email is already taken.
func (m *SessionManager) Register(ctx context.Context, email, credential, name string) (bool, error) {
	users, err := m.accounts.Users(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Email == email {
			return false, nil
		}
	}

	stored, err := m.credentials.Hash(credential)
	if err != nil {
		return false, err
	}

	user := domain.User{
		ID:         uuid.NewString(),
		Email:      email,
		Credential: stored,
		Name:       name,
		Role:       domain.RoleUser,
		Tier:       domain.TierFree,
		JoinedAt:   time.Now().UTC(),
	}
	users = append(users, user)
	if err := m.accounts.SaveUsers(ctx, users); err != nil {
		return false, err
	}

	if err := m.begin(ctx, user.Session()); err != nil {
		return false, err
	}
	slog.Info("user registered", "user_id", user.ID)
	return true, nil
}

// Login starts a session for the roster entry matching both email and
// credential. Unknown emails and wrong credentials both yield false.
func (m *SessionManager) Login(ctx context.Context, email, credential string) (bool, error) {
	users, err := m.accounts.Users(ctx)
	if err != nil {
		return false, err
	}

	for _, u := range users {
		if u.Email == email && m.credentials.Matches(u.Credential, credential) {
			if err := m.begin(ctx, u.Session()); err != nil {
				return false, err
			}
			slog.Info("user logged in", "user_id", u.ID)
			return true, nil
		}
	}
	return false, nil
}

// Logout ends the current session. The roster is untouched.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.setCurrent(nil)
	return m.accounts.ClearSession(ctx)
}

// UpdateUser merges patch into the current session and, in a separate
// write, into the matching roster entry. It returns false when nobody is
// logged in or when an email change collides with another account.
//
// The two writes are independent: if the roster write fails the session
// keeps the new values. A logout or login racing the update either waits
// for the session write or makes the update a no-op.
func (m *SessionManager) UpdateUser(ctx context.Context, patch domain.UserPatch) (bool, error) {
	current, err := m.updateSession(ctx, patch)
	if current == nil || err != nil {
		return false, err
	}

	users, err := m.accounts.Users(ctx)
	if err != nil {
		return false, err
	}
	for i := range users {
		if users[i].ID == current.ID {
			patch.ApplyToUser(&users[i])
			if err := m.accounts.SaveUsers(ctx, users); err != nil {
				return false, err
			}
			break
		}
	}
	return true, nil
}

// updateSession applies patch to the current session under the transition
// lock. It returns the session the patch was applied to, or nil when the
// update was refused.
func (m *SessionManager) updateSession(ctx context.Context, patch domain.UserPatch) (*domain.Session, error) {
	m.transition.Lock()
	defer m.transition.Unlock()

	current := m.Current()
	if current == nil {
		return nil, nil
	}

	if patch.Email != nil && *patch.Email != current.Email {
		users, err := m.accounts.Users(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.Email == *patch.Email && u.ID != current.ID {
				return nil, nil
			}
		}
	}

	updated := *current
	patch.ApplyToSession(&updated)
	if err := m.accounts.SaveSession(ctx, updated); err != nil {
		return nil, err
	}
	m.setCurrent(&updated)
	return current, nil
}

// Current returns a copy of the current session, or nil when anonymous.
func (m *SessionManager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// IsAdmin reports whether the current session has the admin role.
func (m *SessionManager) IsAdmin() bool {
	s := m.Current()
	return s != nil && s.Role == domain.RoleAdmin
}

// HasSubscription reports whether the current session is entitled to
// content gated at tier. Nothing is gated at the free tier, so asking for
// TierFree always yields false.
func (m *SessionManager) HasSubscription(tier domain.Tier) bool {
	s := m.Current()
	if s == nil || s.Tier == domain.TierFree {
		return false
	}
	switch tier {
	case domain.TierPremium, domain.TierPro:
		return s.Tier.AtLeast(tier)
	}
	return false
}

// BootstrapAdmin describes the administrator account seeded on first run.
type BootstrapAdmin struct {
	Email      string
	Credential string
	Name       string
}

// SeedAdmin appends the bootstrap administrator unless a roster entry
// already uses its email. It reports whether an account was created.
func (m *SessionManager) SeedAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	users, err := m.accounts.Users(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Email == admin.Email {
			return false, nil
		}
	}

	stored, err := m.credentials.Hash(admin.Credential)
	if err != nil {
		return false, err
	}
	users = append(users, domain.User{
		ID:         "admin",
		Email:      admin.Email,
		Credential: stored,
		Name:       admin.Name,
		Role:       domain.RoleAdmin,
		Tier:       domain.TierPro,
		JoinedAt:   time.Now().UTC(),
	})
	if err := m.accounts.SaveUsers(ctx, users); err != nil {
		return false, err
	}
	slog.Info("admin seeded", "email", admin.Email)
	return true, nil
}

func (m *SessionManager) begin(ctx context.Context, session domain.Session) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	if err := m.accounts.SaveSession(ctx, session); err != nil {
		return err
	}
	m.setCurrent(&session)
	return nil
}

func (m *SessionManager) setCurrent(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = session
}
