package transform

import (
	"strings"

	"sirene/internal/extraction/models"
)

// ActivityLabeler resolves a human label for an activity code.
type ActivityLabeler func(scheme, code string) (string, bool)

// ClassificationCache deduplicates activity classifications by normalized
// "scheme:code" key. The first label seen for a key is kept for the rest of
// the run. A cache belongs to one run and is not safe for concurrent use.
type ClassificationCache struct {
	entries map[string]models.ActivityClassification
	order   []string
}

func NewClassificationCache() *ClassificationCache {
	return &ClassificationCache{entries: make(map[string]models.ActivityClassification)}
}

// Resolve returns the cached classification for (scheme, code), storing it
// with label on first sight. Later labels for the same key are ignored.
func (c *ClassificationCache) Resolve(scheme, code string, label *string) models.ActivityClassification {
	key := ClassificationKey(scheme, code)
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	entry := models.ActivityClassification{
		Key:    key,
		Scheme: NormalizeScheme(scheme),
		Code:   strings.TrimSpace(code),
		Label:  label,
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
	return entry
}

// Contains reports whether the key was already seen.
func (c *ClassificationCache) Contains(scheme, code string) bool {
	_, ok := c.entries[ClassificationKey(scheme, code)]
	return ok
}

// Entries returns the classifications in first-seen order.
func (c *ClassificationCache) Entries() []models.ActivityClassification {
	out := make([]models.ActivityClassification, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key])
	}
	return out
}

func (c *ClassificationCache) Len() int { return len(c.order) }

// NormalizeScheme lower-cases a nomenclature name, splits the "Rev" token
// with an underscore and turns spaces into underscores.
//
//	NormalizeScheme("NAFRev2")  // "naf_rev2"
//	NormalizeScheme("NAF Rev1") // "naf_rev1"
func NormalizeScheme(scheme string) string {
	s := strings.Join(strings.Fields(scheme), "_")
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i-1] != '_' && strings.HasPrefix(s[i:], "Rev") {
			b.WriteByte('_')
		}
		b.WriteByte(s[i])
	}
	return strings.ToLower(b.String())
}

// ClassificationKey is the dedup key of a (scheme, code) pair.
func ClassificationKey(scheme, code string) string {
	return NormalizeScheme(scheme) + ":" + strings.TrimSpace(code)
}
