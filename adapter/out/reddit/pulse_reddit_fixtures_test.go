package reddit

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
)

func postJSON(id, title, sub string, score int) map[string]any {
	return map[string]any{
		"kind": "t3",
		"data": map[string]any{
			"id":        id,
			"name":      "t3_" + id,
			"title":     title,
			"author":    "author_" + id,
			"subreddit": sub,
			"permalink": "/r/" + sub + "/comments/" + id + "/slug/",
			"score":     score,
		},
	}
}

func commentJSON(author, body string, score int) map[string]any {
	return map[string]any{
		"kind": "t1",
		"data": map[string]any{"author": author, "body": body, "score": score, "replies": ""},
	}
}

func moreJSON() map[string]any {
	return map[string]any{"kind": "more", "data": map[string]any{"count": 12, "children": []string{"x"}}}
}

func listingJSON(children ...map[string]any) map[string]any {
	if children == nil {
		children = []map[string]any{}
	}
	return map[string]any{"kind": "Listing", "data": map[string]any{"after": nil, "children": children}}
}

func threadJSON(post map[string]any, comments ...map[string]any) []any {
	return []any{listingJSON(post), listingJSON(comments...)}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}
