package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"thread url", "https://reddit.com/r/test/comments/abc123/title/", ThreadURL},
		{"www host", "https://www.reddit.com/r/golang/comments/xyz/some_title", ThreadURL},
		{"old host", "https://old.reddit.com/r/golang/comments/xyz/", ThreadURL},
		{"keyword", "best crm", Keyword},
		{"subreddit url", "https://reddit.com/r/test/", Keyword},
		{"other host with comments", "https://example.com/r/test/comments/abc/", Keyword},
		{"bare domain text", "reddit.com", Keyword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestLooksLikeURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://reddit.com/r/test/comments/abc123/title/", true},
		{"reddit.com/r/test", true},
		{"what does REDDIT.COM think", true},
		{"http://example.com", true},
		{"HTTPS://example.com/page", true},
		{"best crm", false},
		{"httpx library", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeURL(tt.input))
		})
	}
}

func TestThreadID(t *testing.T) {
	id, ok := ThreadID("https://reddit.com/r/test/comments/abc123/title/")
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)

	id, ok = ThreadID("https://www.reddit.com/comments/q1w2e3")
	assert.True(t, ok)
	assert.Equal(t, "q1w2e3", id)

	_, ok = ThreadID("https://reddit.com/r/test/comments/")
	assert.False(t, ok)

	_, ok = ThreadID("https://reddit.com/r/test")
	assert.False(t, ok)

	id, ok = ThreadID("https://reddit.com/r/test/comments/ABC123/title/")
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)

	t.Run("rejects non-base36 ids", func(t *testing.T) {
		for _, raw := range []string{
			"https://www.reddit.com/r/x/comments/abc%3Fsort=new%26limit=500/t/",
			"https://www.reddit.com/r/x/comments/abc.json/t/",
			"https://www.reddit.com/r/x/comments/ab-c/t/",
		} {
			id, ok := ThreadID(raw)
			assert.False(t, ok, raw)
			assert.Empty(t, id, raw)
		}
	})
}
