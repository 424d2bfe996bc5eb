// Package filter classifies feed entries.
package filter

import (
	"net/url"
	"strings"
)

// IsShortForm reports whether a feed entry looks like a short-form clip.
// The title matches on the substring "shorts" in any case, which also
// catches "#shorts"; the URL matches on a "/shorts/" path. This is a
// heuristic: "Shortstop stories" is classified short-form.
func IsShortForm(title, canonicalURL string) bool {
	if strings.Contains(strings.ToLower(title), "shorts") {
		return true
	}
	return strings.Contains(urlPath(canonicalURL), "/shorts/")
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}
