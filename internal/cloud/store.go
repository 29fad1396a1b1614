// ABOUTME: Key/value document store contract shared by the Charm and Badger adapters.
// ABOUTME: Keys follow users/<userID>/<collection>/<docID>.
package cloud

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when a key does not exist.
var ErrNotFound = errors.New("not found")

// Store is the read side of a remote document store.
type Store interface {
	Keys() ([][]byte, error)
	Get(key []byte) ([]byte, error)
}

// MutableStore can also write documents.
type MutableStore interface {
	Store
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Syncer is implemented by stores that mirror a remote; Sync pulls remote state.
type Syncer interface {
	Sync() error
}

// UserPrefix returns the key prefix for all of a user's documents.
func UserPrefix(userID string) string {
	return "users/" + userID + "/"
}

// DocKey builds the key for one document.
func DocKey(userID, collection, docID string) string {
	return UserPrefix(userID) + collection + "/" + docID
}

// splitDocKey returns the collection and doc id of a key under prefix.
func splitDocKey(key, prefix string) (collection, docID string, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	if rest == key {
		return "", "", false
	}
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

func validateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("empty user id")
	}
	if strings.Contains(userID, "/") {
		return fmt.Errorf("invalid user id %q", userID)
	}
	return nil
}
