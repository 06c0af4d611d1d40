package normalize

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ExternalID picks the idempotency key of an item: the provider's own id,
// else the canonical url, else a digest of title and source.
//
// The title/source fallback collides when a provider reuses a headline
// without giving an id or url.
func ExternalID(nativeID, url, title, source string) string {
	if id := strings.TrimSpace(nativeID); id != "" {
		return id
	}
	if u := strings.TrimSpace(url); u != "" {
		return u
	}
	sum := sha256.Sum256([]byte(title + "\x00" + source))
	return fmt.Sprintf("title:%x", sum)
}

// ContentHash fingerprints what a reader sees. text is the body when the
// provider has one, otherwise the summary.
func ContentHash(title, text, url string) string {
	sum := sha256.Sum256([]byte(title + "\n" + text + "\n" + url))
	return fmt.Sprintf("%x", sum)
}
