// ABOUTME: Unit tests for the Charm KV client helpers.
// ABOUTME: Network-backed behavior is covered by the Badger store it mirrors.
package charm

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/drillbook/internal/cloud"
)

func TestTranslateNotFound(t *testing.T) {
	err := translate([]byte("users/u/profile/main"), badger.ErrKeyNotFound)
	if !errors.Is(err, cloud.ErrNotFound) {
		t.Fatalf("expected cloud.ErrNotFound, got %v", err)
	}
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	cause := errors.New("disk")
	err := translate([]byte("k"), cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if errors.Is(err, cloud.ErrNotFound) {
		t.Fatal("unexpected ErrNotFound")
	}
}

func TestTranslateNil(t *testing.T) {
	if err := translate([]byte("k"), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
