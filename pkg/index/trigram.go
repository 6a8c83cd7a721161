package index

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// TrigramIndex answers fuzzy text queries by Jaccard similarity over
// character trigram sets. The inverted index keeps candidate collection
// proportional to the matching documents rather than the corpus.
type TrigramIndex struct {
	mu sync.RWMutex

	// Inverted index: trigram -> set of ids
	inverted map[string]map[string]struct{}

	// Forward index: id -> trigram set
	grams map[string]map[string]struct{}
}

// NewTrigramIndex creates an empty text index.
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{
		inverted: make(map[string]map[string]struct{}),
		grams:    make(map[string]map[string]struct{}),
	}
}

// Add indexes or re-indexes the content for an id.
func (t *TrigramIndex) Add(id, content string) {
	set := trigrams(content)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(id)
	t.grams[id] = set
	for gram := range set {
		if t.inverted[gram] == nil {
			t.inverted[gram] = make(map[string]struct{})
		}
		t.inverted[gram][id] = struct{}{}
	}
}

// Remove drops an id from the index.
func (t *TrigramIndex) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(id)
}

func (t *TrigramIndex) removeLocked(id string) {
	set, exists := t.grams[id]
	if !exists {
		return
	}
	for gram := range set {
		if ids, ok := t.inverted[gram]; ok {
			delete(ids, id)
			if len(ids) == 0 {
				delete(t.inverted, gram)
			}
		}
	}
	delete(t.grams, id)
}

// Len returns the number of indexed documents.
func (t *TrigramIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.grams)
}

// Search returns up to limit ids by descending Jaccard similarity to the
// query. A nil allow predicate admits every id.
func (t *TrigramIndex) Search(query string, limit int, allow func(string) bool) ([]string, []float64) {
	queryGrams := trigrams(query)
	if len(queryGrams) == 0 {
		return nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	// Collect candidate documents sharing at least one gram with the query.
	candidates := make(map[string]struct{})
	for gram := range queryGrams {
		for id := range t.inverted[gram] {
			if allow != nil && !allow(id) {
				continue
			}
			candidates[id] = struct{}{}
		}
	}

	type scored struct {
		id    string
		score float64
	}

	results := make([]scored, 0, len(candidates))
	for id := range candidates {
		score := jaccard(queryGrams, t.grams[id])
		if score > 0 {
			results = append(results, scored{id: id, score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].id < results[j].id
		}
		return results[i].score > results[j].score
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(results) {
		limit = len(results)
	}
	results = results[:limit]

	ids := make([]string, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		ids[i] = r.id
		scores[i] = r.score
	}
	return ids, scores
}

// trigrams builds the character trigram set of normalized text. Strings
// shorter than three runes contribute themselves as a single gram.
func trigrams(text string) map[string]struct{} {
	runes := normalize(text)
	set := make(map[string]struct{})
	if len(runes) == 0 {
		return set
	}
	if len(runes) < 3 {
		set[string(runes)] = struct{}{}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

// normalize lowercases text and collapses every run of non-alphanumeric
// runes to a single space, so token boundaries still contribute shared
// grams.
func normalize(text string) []rune {
	var out []rune
	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && len(out) > 0 {
				out = append(out, ' ')
			}
			out = append(out, r)
			pendingSpace = false
			continue
		}
		pendingSpace = true
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for gram := range small {
		if _, ok := large[gram]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
