package nostrchat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nostr-chat/internal/util"
)

// NIP-05 well-known name directory fetching.
// A directory maps human-readable names to encoded pubkeys; its names become
// "global contacts" present regardless of event traffic, in document order.

var directoryHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("too many redirects")
		}
		return nil
	},
}

// Well-known directory paths, tried in order
const (
	WellKnownPath         = "/.well-known/nostr.json"
	fallbackWellKnownPath = "/nostr.json"
)

// DirectoryName is one name entry, in document order
type DirectoryName struct {
	Name string
	Key  string // encoded pubkey as served (hex or npub)
}

// WellKnownDirectory is the parsed response of a nostr.json fetch
type WellKnownDirectory struct {
	Names  []DirectoryName
	Relays map[string][]string
}

// ContactKeys resolves the directory names to canonical hex keys, preserving
// document order. Unresolvable entries degrade to "" per the key policy.
func (d *WellKnownDirectory) ContactKeys() []string {
	keys := make([]string, 0, len(d.Names))
	for _, entry := range d.Names {
		keys = append(keys, ToHexKey(entry.Key))
	}
	return keys
}

// FetchSiteDirectory fetches the well-known directory for a host, trying the
// standard path and then the fallback path. One shot, no retry beyond the
// two fixed paths.
func FetchSiteDirectory(ctx context.Context, host string) (*WellKnownDirectory, error) {
	if host == "" {
		return nil, fmt.Errorf("empty directory host")
	}
	if util.IsPrivateHost(host) {
		return nil, fmt.Errorf("directory host %q is private/internal", host)
	}

	return FetchDirectory(ctx,
		"https://"+host+WellKnownPath,
		"https://"+host+fallbackWellKnownPath,
	)
}

// FetchDirectory fetches and parses the first URL that returns a success
// status. The last failure is returned when all URLs fail.
func FetchDirectory(ctx context.Context, urls ...string) (*WellKnownDirectory, error) {
	var lastErr error
	for _, url := range urls {
		dir, err := fetchDirectoryOnce(ctx, url)
		if err != nil {
			slog.Debug("directory fetch failed", "url", url, "error", err)
			lastErr = err
			continue
		}

		directoryFetchesTotal.Add(1)
		slog.Debug("directory fetched", "url", url, "names", len(dir.Names))
		return dir, nil
	}

	directoryFailuresTotal.Add(1)
	if lastErr == nil {
		lastErr = fmt.Errorf("no directory URLs given")
	}
	return nil, lastErr
}

func fetchDirectoryOnce(ctx context.Context, url string) (*WellKnownDirectory, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := directoryHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("directory fetch returned status %d", resp.StatusCode)
	}

	dir, err := parseDirectory(json.NewDecoder(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory: %w", err)
	}
	return dir, nil
}

// parseDirectory walks the JSON by token so the "names" object keeps its
// document key order; encoding/json maps would scramble it.
func parseDirectory(dec *json.Decoder) (*WellKnownDirectory, error) {
	dir := &WellKnownDirectory{Relays: make(map[string][]string)}

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		switch key {
		case "names":
			if err := parseNames(dec, dir); err != nil {
				return nil, err
			}
		case "relays":
			if err := dec.Decode(&dir.Relays); err != nil {
				return nil, err
			}
		default:
			// Skip unknown fields
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return dir, nil
}

func parseNames(dec *json.Decoder, dir *WellKnownDirectory) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("expected names object, got %v", tok)
	}

	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := nameTok.(string)

		var key string
		if err := dec.Decode(&key); err != nil {
			return err
		}
		dir.Names = append(dir.Names, DirectoryName{Name: name, Key: key})
	}

	_, err = dec.Token()
	return err
}
