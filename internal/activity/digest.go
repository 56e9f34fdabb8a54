package activity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// digestItem fixes the field set and order hashed by Digest.
type digestItem struct {
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

// Digest returns a hex SHA-256 over a canonical encoding of c's items.
// Items are put in a total order first, so the digest depends only on
// content and never on the order items were held in memory.
func Digest(c Collection) string {
	items := make([]digestItem, 0, c.Len())
	for _, it := range c.All() {
		items = append(items, digestItem{
			Kind:      it.Kind,
			Title:     it.Title,
			Body:      it.Body,
			URL:       it.URL,
			CreatedAt: it.CreatedAt.UnixNano(),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		if a.URL != b.URL {
			return a.URL < b.URL
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Body < b.Body
	})

	// Marshalling a slice of plain structs cannot fail.
	data, _ := json.Marshal(items)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CacheKey names the processed artifact of c. Processing truncates items to
// the budgets in opts, so they are part of the key.
func CacheKey(c Collection, opts ProcessorOptions) string {
	opts = opts.withDefaults()
	return fmt.Sprintf("%s-%d-%d", Digest(c), opts.ItemTokens, opts.SummarizationThreshold)
}
