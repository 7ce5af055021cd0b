package domain

import (
	"context"
	"fmt"
	"time"
)

// Role is the authorization level of an account.
type Role uint8

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// ParseRole converts a role name into a Role. Unknown names are rejected.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUser, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a stored role. Anything other than "admin" decodes
// as RoleUser so a damaged record can never grant admin rights.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		parsed = RoleUser
	}
	*r = parsed
	return nil
}

// Tier is a subscription level. Tiers are ordered: free < premium < pro.
type Tier uint8

const (
	TierFree Tier = iota
	TierPremium
	TierPro
)

func (t Tier) String() string {
	switch t {
	case TierPremium:
		return "premium"
	case TierPro:
		return "pro"
	}
	return "free"
}

// ParseTier converts a tier name into a Tier. Unknown names are rejected.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "free":
		return TierFree, nil
	case "premium":
		return TierPremium, nil
	case "pro":
		return TierPro, nil
	}
	return TierFree, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, s)
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a stored tier. Empty or unrecognized values decode
// as TierFree.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		parsed = TierFree
	}
	*t = parsed
	return nil
}

// User is a roster entry: identity, credential and entitlement.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Credential         string     `json:"password"`
	Name               string     `json:"name"`
	Avatar             string     `json:"avatar,omitempty"`
	Role               Role       `json:"role"`
	Tier               Tier       `json:"subscription"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry,omitempty"`
	JoinedAt           time.Time  `json:"joinedAt"`
}

// Session is the view of the authenticated account. It carries every User
// field except the credential.
type Session struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Avatar             string     `json:"avatar,omitempty"`
	Role               Role       `json:"role"`
	Tier               Tier       `json:"subscription"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry,omitempty"`
	JoinedAt           time.Time  `json:"joinedAt"`
}

// Session returns the credential-free view of u.
func (u User) Session() Session {
	return Session{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Avatar:             u.Avatar,
		Role:               u.Role,
		Tier:               u.Tier,
		SubscriptionExpiry: u.SubscriptionExpiry,
		JoinedAt:           u.JoinedAt,
	}
}

// UserPatch is a partial update. Nil fields are left unchanged.
// ClearExpiry removes the subscription expiry and wins over Expiry.
type UserPatch struct {
	Name        *string
	Email       *string
	Avatar      *string
	Tier        *Tier
	Expiry      *time.Time
	ClearExpiry bool
}

// ApplyToUser merges the patch into a roster entry.
func (p UserPatch) ApplyToUser(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Tier != nil {
		u.Tier = *p.Tier
	}
	u.SubscriptionExpiry = p.expiry(u.SubscriptionExpiry)
}

// ApplyToSession merges the patch into a session view.
func (p UserPatch) ApplyToSession(s *Session) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Avatar != nil {
		s.Avatar = *p.Avatar
	}
	if p.Tier != nil {
		s.Tier = *p.Tier
	}
	s.SubscriptionExpiry = p.expiry(s.SubscriptionExpiry)
}

func (p UserPatch) expiry(current *time.Time) *time.Time {
	if p.ClearExpiry {
		return nil
	}
	if p.Expiry != nil {
		e := *p.Expiry
		return &e
	}
	return current
}

// AccountRepository persists the roster and the current-session pointer.
// Every method is a single independent read or write; nothing spans calls.
type AccountRepository interface {
	Users(ctx context.Context) ([]User, error)
	SaveUsers(ctx context.Context, users []User) error
	CurrentSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, session Session) error
	ClearSession(ctx context.Context) error
}
