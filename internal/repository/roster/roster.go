// Package roster stores the user roster and the current session as JSON
// documents in a domain.RecordStore.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/campuscoders/internal/domain"
)

// Repository implements domain.AccountRepository.
type Repository struct {
	store domain.RecordStore
}

// New creates a Repository over store.
func New(store domain.RecordStore) *Repository {
	return &Repository{store: store}
}

// Users returns the whole roster. A missing roster is an empty one.
func (r *Repository) Users(ctx context.Context) ([]domain.User, error) {
	data, err := r.store.Get(ctx, domain.UsersKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.User{}, nil
		}
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// SaveUsers replaces the whole roster.
func (r *Repository) SaveUsers(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := r.store.Set(ctx, domain.UsersKey, data); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

// CurrentSession returns the persisted session, or nil when nobody is
// logged in.
func (r *Repository) CurrentSession(ctx context.Context) (*domain.Session, error) {
	data, err := r.store.Get(ctx, domain.CurrentUserKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *Repository) SaveSession(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.store.Set(ctx, domain.CurrentUserKey, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *Repository) ClearSession(ctx context.Context) error {
	if err := r.store.Remove(ctx, domain.CurrentUserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
