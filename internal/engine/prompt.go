package engine

import (
	"strings"

	"docquery/internal/ai"
	"docquery/internal/index"
	"docquery/internal/memory"
)

const condenseInstruction = "Given the following conversation and a follow up question, " +
	"rephrase the follow up question to be a standalone question that captures all relevant " +
	"context from the conversation."

const answerInstruction = "You are an assistant that answers questions based on the provided document. " +
	"Use only the following context to answer the question. If you don't know the answer or it's not " +
	"in the context, say \"I don't have enough information to answer this question.\""

// condenseMessages builds the question-rewrite prompt from the prior
// transcript and the follow-up question.
func condenseMessages(history []memory.Turn, question string) []ai.ChatMessage {
	var sb strings.Builder
	sb.WriteString("Chat History:\n")
	for _, turn := range history {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nFollow Up Input: ")
	sb.WriteString(question)
	sb.WriteString("\nStandalone question:")

	return []ai.ChatMessage{
		{Role: "system", Content: condenseInstruction},
		{Role: "user", Content: sb.String()},
	}
}

// answerMessages builds the grounded answer prompt from the retrieved chunks
// and the original question.
func answerMessages(results []index.ScoredChunk, question string) []ai.ChatMessage {
	var sb strings.Builder
	sb.WriteString("Context:")
	for _, r := range results {
		sb.WriteString("\n---\n")
		sb.WriteString(r.Text)
	}
	if len(results) > 0 {
		sb.WriteString("\n---")
	}
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")

	return []ai.ChatMessage{
		{Role: "system", Content: answerInstruction},
		{Role: "user", Content: sb.String()},
	}
}
