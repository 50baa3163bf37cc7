package app

import (
	"context"
	"strings"
	"testing"

	"docquery/internal/ai"
	"docquery/internal/engine"
	"docquery/internal/index"
	"docquery/internal/memory"
	"docquery/internal/model"
	"docquery/internal/registry"
)

type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (flatEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type recordingLLM struct {
	answer string
	calls  [][]ai.ChatMessage
}

func (l *recordingLLM) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	l.calls = append(l.calls, messages)
	return l.answer, nil
}

func testEngine(t *testing.T, mem *memory.Store, llm engine.LLM, chunks ...string) *engine.Engine {
	t.Helper()
	ix := index.New(flatEmbedder{})
	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine.New(ix, mem, llm, 0, 0)
}

// Deleting a document must drop its sessions' transcripts from the shared
// memory store: a later query on another document reusing the session id has
// to start from a clean slate instead of condensing with the dead document's
// conversation.
func TestClearSessionStateDropsSharedTranscripts(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()

	llmA := &recordingLLM{answer: "Alice lives in Paris."}
	engA := testEngine(t, mem, llmA, "Alice lives in Paris.")
	if _, err := engA.Answer(ctx, "s1", "Where does Alice live?"); err != nil {
		t.Fatalf("Answer on the first document failed: %v", err)
	}
	if len(mem.GetOrCreate("s1")) != 2 {
		t.Fatal("expected the first document's turn in the shared store")
	}

	svc := NewDocumentService(nil, nil, nil, registry.New(nil), nil, mem, "")
	svc.clearSessionState(ctx, []string{"s1"})

	if turns := mem.GetOrCreate("s1"); len(turns) != 0 {
		t.Fatalf("deleted document's transcript survived: %d turns", len(turns))
	}

	llmB := &recordingLLM{answer: "Bob lives in Lyon."}
	engB := testEngine(t, mem, llmB, "Bob lives in Lyon.")
	if _, err := engB.Answer(ctx, "s1", "Where does Bob live?"); err != nil {
		t.Fatalf("Answer on the second document failed: %v", err)
	}
	if len(llmB.calls) != 1 {
		t.Fatalf("reused session id must look fresh (no condense call), got %d llm calls", len(llmB.calls))
	}
	for _, m := range llmB.calls[0] {
		if strings.Contains(m.Content, "Alice") {
			t.Fatalf("deleted document's conversation leaked into the prompt: %q", m.Content)
		}
	}
}

type stubHistoryCache struct {
	deleted []string
}

func (c *stubHistoryCache) GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error) {
	return nil, false, nil
}

func (c *stubHistoryCache) SetHistory(ctx context.Context, sessionID string, messages []model.Message) error {
	return nil
}

func (c *stubHistoryCache) DeleteHistory(ctx context.Context, sessionID string) error {
	c.deleted = append(c.deleted, sessionID)
	return nil
}

func (c *stubHistoryCache) MarkDirty(ctx context.Context, sessionID string) error { return nil }

func (c *stubHistoryCache) IsDirty(ctx context.Context, sessionID string) (bool, error) {
	return false, nil
}

func TestClearSessionStateDeletesCachedHistory(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	cache := &stubHistoryCache{}
	svc := NewDocumentService(nil, nil, nil, registry.New(nil), cache, mem, "")

	mem.Append("s1", "user", "hello")
	mem.Append("s2", "user", "hi")
	svc.clearSessionState(ctx, []string{"s1", "s2"})

	if len(mem.GetOrCreate("s1")) != 0 || len(mem.GetOrCreate("s2")) != 0 {
		t.Fatal("transcripts survived the clear")
	}
	if len(cache.deleted) != 2 || cache.deleted[0] != "s1" || cache.deleted[1] != "s2" {
		t.Fatalf("expected cache deletes for both sessions, got %v", cache.deleted)
	}
}
