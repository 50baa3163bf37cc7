// Package index holds the per-document in-memory vector index: embedded
// chunks plus brute-force cosine similarity search.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotLoaded is returned when searching an index that was never built.
var ErrNotLoaded = errors.New("vector index not built")

// embeddingBatchSize bounds one embeddings API call; hosted providers often
// limit batch size.
const embeddingBatchSize = 10

// Embedder produces embedding vectors for texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ScoredChunk is one search result.
type ScoredChunk struct {
	Text  string
	Score float32
}

// Index is read-only after a successful Build and safe for concurrent Search.
type Index struct {
	embedder Embedder
	chunks   []string
	vectors  [][]float32
	built    bool
}

func New(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds the chunks in batches and stores them. Building twice replaces
// the previous contents.
func (ix *Index) Build(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := ix.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return fmt.Errorf("embed chunks %d..%d failed: %w", i, end, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	ix.chunks = chunks
	ix.vectors = vectors
	ix.built = true
	return nil
}

// Search embeds the query and returns up to k chunks ordered by non-increasing
// cosine similarity.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if !ix.built {
		return nil, ErrNotLoaded
	}
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	scored := make([]ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		scored[i] = ScoredChunk{
			Text:  ix.chunks[i],
			Score: cosineSimilarity(queryVec, ix.vectors[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
