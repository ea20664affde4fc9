package provider

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	*MockEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.MockEmbedder.Embed(ctx, text)
}

func TestCachingEmbedder_HitsAndMisses(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c, err := NewCachingEmbedder(inner, 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, err := c.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls: got %d, want 1", inner.calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached vector differs from original")
		}
	}

	if _, err := c.Embed(ctx, "other"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls after miss: got %d, want 2", inner.calls)
	}
}

func TestCachingEmbedder_FailureNotCached(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c, _ := NewCachingEmbedder(inner, 16)
	ctx := context.Background()

	inner.FailWith = errors.New("quota exceeded")
	if _, err := c.Embed(ctx, "flaky"); err == nil {
		t.Fatal("expected error")
	}
	inner.FailWith = nil
	if _, err := c.Embed(ctx, "flaky"); err != nil {
		t.Fatalf("recovered call failed: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls: got %d, want 2", inner.calls)
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "same text")
	b, _ := e.Embed(ctx, "same text")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("mock embedder not deterministic")
		}
	}
	c, _ := e.Embed(ctx, "different text")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical embeddings")
	}
}
