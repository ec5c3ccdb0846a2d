package nostrchat

import (
	"log/slog"
	"strings"

	"nostr-chat/internal/nips"
	"nostr-chat/internal/util"
)

// KeyFromTags returns the pubkey of the first "p" tag, the conventional
// recipient marker on direct messages. Returns "" if no such tag exists.
func KeyFromTags(tags [][]string) string {
	return util.GetTagValue(tags, "p")
}

// ToHexKey normalizes a key string to canonical hex form. Raw 64-char hex
// pubkeys pass through verbatim; npub1... strings are bech32-decoded.
// Anything else degrades to "" — callers treat empty keys as "unknown
// contact" rather than an error.
func ToHexKey(nameOrKey string) string {
	if isHexKey(nameOrKey) {
		return nameOrKey
	}

	hexKey, err := nips.DecodePubkey(nameOrKey)
	if err != nil {
		slog.Debug("could not normalize key", "key", util.ShortID(nameOrKey), "error", err)
		return ""
	}
	return hexKey
}

// isHexKey reports whether s looks like a raw 32-byte hex pubkey
func isHexKey(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
