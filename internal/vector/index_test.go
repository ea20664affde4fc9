package vector

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestIndex_UpsertQuery(t *testing.T) {
	ix := NewIndex()
	if err := ix.Upsert("a", []float32{1, 0, 0}, map[string]interface{}{"content": "alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert("b", []float32{0.9, 0.1, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert("c", []float32{0, 1, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if ix.Size() != 3 {
		t.Errorf("Size=%d", ix.Size())
	}

	results, err := ix.Query([]float32{1, 0, 0}, 2, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("top result should be a, got %s", results[0].ID)
	}
	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("self-similarity should be 1.0, got %g", results[0].Score)
	}
	if results[0].Attributes["content"] != "alpha" {
		t.Errorf("attributes not returned: %v", results[0].Attributes)
	}
}

func TestIndex_UpsertReplaces(t *testing.T) {
	ix := NewIndex()
	_ = ix.Upsert("d", []float32{1, 0}, map[string]interface{}{"content": "old", "extra": 1})
	_ = ix.Upsert("d", []float32{0, 1}, map[string]interface{}{"content": "new"})
	if ix.Size() != 1 {
		t.Fatalf("Size=%d after replace", ix.Size())
	}
	results, err := ix.Query([]float32{0, 1}, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "d" {
		t.Fatalf("results=%v", results)
	}
	if results[0].Attributes["content"] != "new" {
		t.Errorf("attributes should be fully replaced, got %v", results[0].Attributes)
	}
	if _, ok := results[0].Attributes["extra"]; ok {
		t.Error("stale attribute survived replace")
	}
}

func TestIndex_QueryEmpty(t *testing.T) {
	ix := NewIndex()
	results, err := ix.Query([]float32{1, 2, 3}, 5, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %v", results)
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ix := NewIndex()
	_ = ix.Upsert("a", []float32{1, 0, 0}, nil)

	if _, err := ix.Query([]float32{1, 0}, 1, -1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("query: expected ErrDimensionMismatch, got %v", err)
	}
	if err := ix.Upsert("b", []float32{1, 0}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("upsert: expected ErrDimensionMismatch, got %v", err)
	}
	// Clear resets the dimension, so a new dimensionality is accepted.
	ix.Clear()
	if err := ix.Upsert("b", []float32{1, 0}, nil); err != nil {
		t.Errorf("upsert after clear: %v", err)
	}
}

func TestIndex_ThresholdAndTopK(t *testing.T) {
	ix := NewIndex()
	_ = ix.Upsert("exact", []float32{1, 0}, nil)
	_ = ix.Upsert("close", []float32{1, 1}, nil)
	_ = ix.Upsert("orthogonal", []float32{0, 1}, nil)

	results, err := ix.Query([]float32{1, 0}, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("threshold filter: expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Score < 0.5 {
			t.Errorf("result %s below threshold: %g", r.ID, r.Score)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending at %d", i)
		}
	}

	results, err = ix.Query([]float32{1, 0}, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "exact" {
		t.Errorf("topK truncation: got %v", results)
	}
}

func TestIndex_TieBreakInsertionOrder(t *testing.T) {
	ix := NewIndex()
	// All three score identically against the query vector.
	_ = ix.Upsert("first", []float32{1, 0}, nil)
	_ = ix.Upsert("second", []float32{2, 0}, nil)
	_ = ix.Upsert("third", []float32{3, 0}, nil)

	results, err := ix.Query([]float32{1, 0}, 3, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if results[i].ID != id {
			t.Fatalf("tie order: got %v, want %v", results, want)
		}
	}
}

func TestIndex_Clear(t *testing.T) {
	ix := NewIndex()
	_ = ix.Upsert("a", []float32{1, 0}, nil)
	_ = ix.Upsert("b", []float32{0, 1}, nil)
	ix.Clear()
	if ix.Size() != 0 {
		t.Errorf("Size=%d after clear", ix.Size())
	}
	results, err := ix.Query([]float32{1, 0}, 5, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("query after clear returned %v", results)
	}
}

func TestIndex_Remove(t *testing.T) {
	ix := NewIndex()
	_ = ix.Upsert("x", []float32{1, 0}, nil)
	_ = ix.Upsert("y", []float32{0, 1}, nil)
	if !ix.Remove("x") {
		t.Fatal("Remove(x)=false")
	}
	if ix.Remove("x") {
		t.Error("second Remove(x)=true")
	}
	if ix.Size() != 1 {
		t.Errorf("Size=%d", ix.Size())
	}
	results, _ := ix.Query([]float32{1, 0}, 5, -1)
	for _, r := range results {
		if r.ID == "x" {
			t.Error("removed entry still returned")
		}
	}
}

func TestIndex_ConcurrentUpserts(t *testing.T) {
	ix := NewIndex()
	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vec := []float32{float32(i + 1), 1, 0}
			if err := ix.Upsert(fmt.Sprintf("doc-%d", i), vec, nil); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if ix.Size() != n {
		t.Fatalf("Size=%d, want %d", ix.Size(), n)
	}
	results, err := ix.Query([]float32{1, 0, 0}, n, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	seen := make(map[string]bool, n)
	for _, r := range results {
		if seen[r.ID] {
			t.Errorf("duplicate entry %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestIndex_ConcurrentQueryAndMutate(t *testing.T) {
	ix := NewIndex()
	for i := 0; i < 32; i++ {
		_ = ix.Upsert(fmt.Sprintf("seed-%d", i), []float32{float32(i), 1}, nil)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = ix.Upsert(fmt.Sprintf("w-%d-%d", i, j), []float32{1, float32(j)}, nil)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := ix.Query([]float32{1, 0}, 10, -1); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()
}
