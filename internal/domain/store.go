package domain

import "context"

// Record keys used by the account repository.
const (
	UsersKey       = "users"
	CurrentUserKey = "currentUser"
)

// RecordStore is a synchronous key-value store of JSON documents.
// Writes are last-write-wins; implementations offer no locking or
// versioning across a Get followed by a Set.
type RecordStore interface {
	// Get returns the stored value, or ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
