package ai

import "context"

// BoundClient fixes the chat and embedding configs of an OpenAI-compatible
// client so downstream packages can depend on narrow interfaces instead of
// per-call config plumbing.
type BoundClient struct {
	client *OpenAICompatibleClient
	chat   ChatConfig
	emb    EmbeddingConfig
}

func NewBoundClient(client *OpenAICompatibleClient, chat ChatConfig, emb EmbeddingConfig) *BoundClient {
	return &BoundClient{client: client, chat: chat, emb: emb}
}

func (b *BoundClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return b.client.Complete(ctx, b.chat, messages)
}

func (b *BoundClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return b.client.Embed(ctx, b.emb, text)
}

func (b *BoundClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return b.client.EmbedBatch(ctx, b.emb, texts)
}
