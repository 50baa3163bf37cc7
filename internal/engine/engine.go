// Package engine implements the conversational query orchestrator: condense
// the follow-up question against the session transcript, retrieve grounding
// chunks from the document's vector index, generate an answer, and record the
// new turn.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docquery/internal/ai"
	"docquery/internal/index"
	"docquery/internal/memory"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	defaultTopK      = 4
	sourceExcerptLen = 150
)

// LLM is the chat completion dependency.
type LLM interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// Result is a grounded answer plus the excerpts it was grounded on, in
// retrieval order.
type Result struct {
	Answer  string
	Sources []string
}

// Engine answers questions about one document across many sessions.
type Engine struct {
	index           *index.Index
	memory          *memory.Store
	llm             LLM
	topK            int
	maxHistoryTurns int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(ix *index.Index, mem *memory.Store, llm LLM, topK, maxHistoryTurns int) *Engine {
	if topK <= 0 {
		topK = defaultTopK
	}
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = 20
	}
	return &Engine{
		index:           ix,
		memory:          mem,
		llm:             llm,
		topK:            topK,
		maxHistoryTurns: maxHistoryTurns,
		locks:           make(map[string]*sync.Mutex),
	}
}

// Answer runs one condense/retrieve/generate cycle for the session. The
// transcript gains exactly the (user, assistant) pair on success and nothing
// on any failure; a per-session lock keeps concurrent calls from interleaving
// their turns.
func (e *Engine) Answer(ctx context.Context, sessionID, question string) (*Result, error) {
	if e.index == nil {
		return nil, index.ErrNotLoaded
	}

	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history := e.memory.GetOrCreate(sessionID)
	if len(history) > e.maxHistoryTurns {
		history = history[len(history)-e.maxHistoryTurns:]
	}

	// With no prior turns the question is already standalone; skip the
	// rewrite call.
	standalone := question
	if len(history) > 0 {
		rewritten, err := e.llm.Complete(ctx, condenseMessages(history, question))
		if err != nil {
			return nil, fmt.Errorf("condense question failed: %w", err)
		}
		if s := strings.TrimSpace(rewritten); s != "" {
			standalone = s
		}
	}

	results, err := e.index.Search(ctx, standalone, e.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context failed: %w", err)
	}

	answer, err := e.llm.Complete(ctx, answerMessages(results, question))
	if err != nil {
		return nil, fmt.Errorf("generate answer failed: %w", err)
	}
	answer = strings.TrimSpace(answer)

	e.memory.Append(sessionID, RoleUser, question)
	e.memory.Append(sessionID, RoleAssistant, answer)

	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, excerpt(r.Text))
	}
	return &Result{Answer: answer, Sources: sources}, nil
}

// ClearMemory drops the session's transcript and its lock entry. The vector
// index is untouched. Idempotent for unknown sessions.
func (e *Engine) ClearMemory(sessionID string) {
	e.memory.Clear(sessionID)
	e.mu.Lock()
	delete(e.locks, sessionID)
	e.mu.Unlock()
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > sourceExcerptLen {
		runes = runes[:sourceExcerptLen]
	}
	return string(runes) + "..."
}
