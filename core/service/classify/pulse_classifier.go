// Package classify decides whether user input is a Reddit thread URL or a
// search keyword.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

const redditDomain = "reddit.com"

var threadIDPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Kind is the outcome of Classify.
type Kind int

const (
	Keyword Kind = iota
	ThreadURL
)

func (k Kind) String() string {
	if k == ThreadURL {
		return "thread_url"
	}
	return "keyword"
}

// Classify assumes non-empty input; emptiness is a validation error handled
// by the caller.
func Classify(input string) Kind {
	if IsThreadURL(input) {
		return ThreadURL
	}
	return Keyword
}

// IsThreadURL reports whether s parses as a URL on a Reddit host whose path
// contains a /comments/ segment.
func IsThreadURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if !strings.Contains(strings.ToLower(u.Host), redditDomain) {
		return false
	}
	return strings.Contains(u.Path, "/comments/")
}

// LooksLikeURL is the stricter guard used by keyword search: anything that
// resembles a link must go through the thread-fetch path instead.
func LooksLikeURL(s string) bool {
	if IsThreadURL(s) {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(lower, redditDomain) {
		return true
	}
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ThreadID extracts the base36 post id that follows /comments/. Anything
// other than a base36 id is rejected.
func ThreadID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "comments" && i+1 < len(segments) {
			id := strings.ToLower(segments[i+1])
			if !threadIDPattern.MatchString(id) {
				return "", false
			}
			return id, true
		}
	}
	return "", false
}
