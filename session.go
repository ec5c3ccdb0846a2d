package nostrchat

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"nostr-chat/internal/nips"
)

// KeyStore is the local credential collaborator. Key storage and generation
// live outside this core; only the resulting keys cross the boundary.
type KeyStore interface {
	// Load returns the stored private key (hex or nsec1...), or "" when no
	// credential exists yet.
	Load(ctx context.Context) (string, error)

	// Generate creates and persists a fresh key pair, returning the new
	// private key.
	Generate(ctx context.Context) (string, error)
}

// Session resolves the active user's public key once at startup. The result
// is fixed for the session lifetime; resolution failures fail open to ""
// with no retry.
type Session struct {
	store  KeyStore
	once   sync.Once
	pubkey string
}

// NewSession creates a session backed by the given key store
func NewSession(store KeyStore) *Session {
	return &Session{store: store}
}

// PubKey returns the active hex public key, resolving it on first call
func (s *Session) PubKey(ctx context.Context) string {
	s.once.Do(func() {
		s.pubkey = resolvePubKey(ctx, s.store)
	})
	return s.pubkey
}

func resolvePubKey(ctx context.Context, store KeyStore) string {
	if store == nil {
		slog.Warn("no key store configured, session key unresolved")
		return ""
	}

	privKey, err := store.Load(ctx)
	if err != nil {
		slog.Warn("failed to load session key", "error", err)
		return ""
	}

	if privKey == "" {
		privKey, err = store.Generate(ctx)
		if err != nil {
			slog.Warn("failed to generate session key", "error", err)
			return ""
		}
	}

	pubkey, err := DerivePublicKey(privKey)
	if err != nil {
		slog.Warn("failed to derive session pubkey", "error", err)
		return ""
	}

	if npub, err := nips.EncodePubkey(pubkey); err == nil {
		slog.Info("session key resolved", "npub", npub)
	}
	return pubkey
}

// DerivePublicKey converts a private key (hex or nsec1...) to the canonical
// x-only hex public key.
func DerivePublicKey(privKey string) (string, error) {
	if strings.HasPrefix(privKey, "nsec1") {
		decoded, err := nips.DecodeSecretKey(privKey)
		if err != nil {
			return "", err
		}
		privKey = decoded
	}

	keyBytes, err := hex.DecodeString(privKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return "", fmt.Errorf("invalid private key length %d", len(keyBytes))
	}

	priv, _ := btcec.PrivKeyFromBytes(keyBytes)
	// x-only pubkey: drop the parity byte of the compressed form
	return hex.EncodeToString(priv.PubKey().SerializeCompressed()[1:]), nil
}
