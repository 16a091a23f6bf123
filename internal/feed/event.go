package feed

import "strings"

// Event is one record of a person's public activity feed.
type Event struct {
	Type      string         `json:"type"`
	CreatedAt string         `json:"created_at"`
	URL       string         `json:"url,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

var commitEvents = map[string]bool{
	"PushEvent":      true,
	"CommitEvent":    true,
	"ForkApplyEvent": true,
}

// IsCommitEvent determines whether the event counts as activity. Branch
// creation counts too, recognised either by the payload ref type (older feeds
// call it "object") or by a compare URL.
func IsCommitEvent(e Event) bool {
	if commitEvents[e.Type] {
		return true
	}
	if e.Type != "CreateEvent" {
		return false
	}
	if refType(e.Payload) == "branch" {
		return true
	}
	return strings.Contains(e.URL, "/compare/")
}

func refType(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	v, ok := payload["ref_type"]
	if !ok || v == nil {
		v = payload["object"]
	}
	s, _ := v.(string)
	return s
}
