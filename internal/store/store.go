// Package store persists per-identity chat transcripts. Persistence is
// best-effort: the in-memory transcript stays authoritative for the current
// session and callers recover from every store error locally.
package store

import (
	"context"
	"errors"

	"github.com/PandeyAnukrati/Carti/internal/model/chat"
)

// ErrNotFound reports that no transcript exists under the requested key.
// Malformed stored data is reported the same way so callers reseed instead of
// failing.
var ErrNotFound = errors.New("transcript not found")

// keyPrefix matches the storage key layout of the original widget.
const keyPrefix = "chatbot_messages_"

// Key derives the storage partition key for an identity. Transcripts for
// different identities never share a key.
func Key(uid string) string {
	return keyPrefix + uid
}

// Store is the transcript persistence contract.
type Store interface {
	// Load returns the transcript saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) (chat.Transcript, error)
	// Save replaces the transcript saved under key. Saving an empty
	// transcript is a no-op.
	Save(ctx context.Context, key string, t chat.Transcript) error
	// Clear removes the transcript saved under key, if any.
	Clear(ctx context.Context, key string) error
}
