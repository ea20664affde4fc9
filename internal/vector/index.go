package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// dimension already established by the index contents.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// SearchResult is a read-only projection of an index entry plus its similarity
// score, produced fresh per query.
type SearchResult struct {
	ID         string
	Score      float64
	Attributes map[string]interface{}
}

type entry struct {
	id         string
	vec        []float32
	attributes map[string]interface{}
}

// Index is an in-memory similarity index using brute-force cosine search.
// Entries are kept in insertion order so equal scores rank deterministically.
// The whole scan in Query and the whole mutation in Upsert/Clear run under one
// lock, so a concurrent reader sees each mutation entirely or not at all.
//
// The linear scan is O(n·d) per query, which is fine at demo scale
// (hundreds to thousands of entries). Callers depend only on this type's
// methods, so an approximate index could replace it without touching them.
type Index struct {
	mu         sync.RWMutex
	dimensions int // 0 until the first vector is stored
	entries    []*entry
	byID       map[string]int
}

// NewIndex creates an empty index. The dimension is fixed by the first
// vector stored and reset by Clear.
func NewIndex() *Index {
	return &Index{byID: make(map[string]int)}
}

// Upsert inserts or fully replaces the entry for id. Replacing an existing id
// swaps both vector and attributes atomically and keeps the entry's original
// insertion rank. A vector whose length differs from the established dimension
// fails with ErrDimensionMismatch.
func (ix *Index) Upsert(id string, vec []float32, attributes map[string]interface{}) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dimensions == 0 {
		ix.dimensions = len(vec)
	} else if len(vec) != ix.dimensions {
		return fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(vec), ix.dimensions)
	}
	stored := make([]float32, len(vec))
	copy(stored, vec)
	attrs := make(map[string]interface{}, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	if pos, ok := ix.byID[id]; ok {
		ix.entries[pos] = &entry{id: id, vec: stored, attributes: attrs}
		return nil
	}
	ix.byID[id] = len(ix.entries)
	ix.entries = append(ix.entries, &entry{id: id, vec: stored, attributes: attrs})
	return nil
}

// Query scans every entry, computes cosine similarity against vec, keeps
// entries scoring at least scoreThreshold, sorts descending by score with ties
// broken by insertion order, and truncates to topK. An empty index returns an
// empty result, not an error. Fails with ErrDimensionMismatch when vec's
// length differs from the stored dimension.
func (ix *Index) Query(vec []float32, topK int, scoreThreshold float64) ([]SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.entries) == 0 {
		return []SearchResult{}, nil
	}
	if len(vec) != ix.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index holds %d", ErrDimensionMismatch, len(vec), ix.dimensions)
	}
	results := make([]SearchResult, 0, len(ix.entries))
	for _, e := range ix.entries {
		score := Cosine(vec, e.vec)
		if score < scoreThreshold {
			continue
		}
		results = append(results, SearchResult{ID: e.id, Score: score, Attributes: e.attributes})
	}
	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK >= 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Clear removes all entries atomically and resets the fixed dimension.
// In-flight queries observe either the pre-clear or post-clear state entirely.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dimensions = 0
	ix.entries = nil
	ix.byID = make(map[string]int)
}

// Remove deletes the entry for id if present and reports whether it existed.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	pos, ok := ix.byID[id]
	if !ok {
		return false
	}
	ix.entries = append(ix.entries[:pos], ix.entries[pos+1:]...)
	delete(ix.byID, id)
	for i := pos; i < len(ix.entries); i++ {
		ix.byID[ix.entries[i].id] = i
	}
	if len(ix.entries) == 0 {
		ix.dimensions = 0
	}
	return true
}

// Size returns the current entry count.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}
