package fact

import (
	"strings"
	"time"
)

// RandomCategory is the request sentinel meaning "no category filter".
const RandomCategory = "random"

// Fact is the persistent fact record. Content is immutable once created;
// only LastShown changes, on every serve.
type Fact struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Category  string     `json:"category" bson:"category"`
	Content   string     `json:"content" bson:"content"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	LastShown *time.Time `json:"lastShown" bson:"lastShown"`
}

// EligibleAt reports whether the fact may be served again at now, given the
// freshness window.
func (f *Fact) EligibleAt(now time.Time, window time.Duration) bool {
	if f.LastShown == nil {
		return true
	}
	return f.LastShown.Before(now.Add(-window))
}

// NormalizeCategory lowercases and trims a category key. The random sentinel
// maps to the empty string, which repositories treat as "any category".
func NormalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == RandomCategory {
		return ""
	}
	return c
}
