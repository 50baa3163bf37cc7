package index

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func TestSearchBeforeBuild(t *testing.T) {
	ix := New(&stubEmbedder{})
	if _, err := ix.Search(context.Background(), "anything", 3); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Search before Build = %v, want ErrNotLoaded", err)
	}
}

func TestBuildRejectsEmptyChunks(t *testing.T) {
	ix := New(&stubEmbedder{vectors: map[string][]float32{}})
	if err := ix.Build(context.Background(), nil); err == nil {
		t.Fatal("Build with no chunks should fail")
	}
}

func TestBuildPropagatesEmbedderError(t *testing.T) {
	wantErr := errors.New("embedding backend down")
	ix := New(&stubEmbedder{err: wantErr})
	err := ix.Build(context.Background(), []string{"a", "b"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Build error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSearchOrdersByScoreAndLimitsK(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"paris":  {1, 0},
		"near":   {0.9, 0.4},
		"far":    {0.2, 0.9},
		"offset": {0, 1},
		"query":  {1, 0},
	}}
	ix := New(emb)
	if err := ix.Build(context.Background(), []string{"far", "paris", "offset", "near"}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	results, err := ix.Search(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Text != "paris" || results[1].Text != "near" {
		t.Fatalf("unexpected ordering: %q, %q", results[0].Text, results[1].Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("scores not descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestSearchReturnsAllWhenKExceedsChunks(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"q": {1, 1},
	}}
	ix := New(emb)
	if err := ix.Build(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	results, err := ix.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected all 2 chunks, got %d", len(results))
	}
}

func TestSearchResultsAreBuiltChunks(t *testing.T) {
	chunks := []string{"alpha", "beta", "gamma"}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
		"gamma": {0, 0, 1},
		"q":     {0.5, 0.5, 0.5},
	}}
	ix := New(emb)
	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	results, err := ix.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	known := map[string]bool{"alpha": true, "beta": true, "gamma": true}
	for _, r := range results {
		if !known[r.Text] {
			t.Fatalf("result %q is not one of the indexed chunks", r.Text)
		}
	}
}
