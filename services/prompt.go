package services

import (
	"fmt"
	"strings"

	"university-rag-assistant/models"
)

// SystemPrompt is the static grounding instruction: the model may only use
// the retrieved context and has to admit when it cannot answer.
const SystemPrompt = `You are a knowledgeable and friendly University Support Assistant.

IMPORTANT RULES:
1. Answer ONLY using the information provided in the RETRIEVED CONTEXT section below.
2. If the context does not contain enough information to answer the question, say:
   "I'm sorry, I don't have enough information about that in my knowledge base. Please contact the university directly."
3. Do not fabricate, infer, or guess any facts not present in the context.
4. Be concise, clear, and professional.
5. When relevant, mention which policy or document your answer comes from.
`

// FallbackText is returned when the LLM produces no usable reply.
const FallbackText = "I'm sorry, I don't have enough information about that in my knowledge base. " +
	"Please contact the university directly."

// NoContextMarker is placed in the prompt when retrieval returned nothing,
// so the model is not misled into thinking relevant material was withheld.
const NoContextMarker = "No relevant documents were found for this query."

// PromptService assembles the chat messages sent to the LLM: the grounding
// system instruction, a bounded window of conversation history and a final
// user message carrying the labeled context blocks and the question. Pure
// transformation, no side effects.
type PromptService struct {
	maxHistoryPairs int
}

// NewPromptService creates a prompt assembler keeping at most
// maxHistoryPairs turn-pairs of history in each prompt.
func NewPromptService(maxHistoryPairs int) *PromptService {
	if maxHistoryPairs < 0 {
		maxHistoryPairs = 0
	}
	return &PromptService{maxHistoryPairs: maxHistoryPairs}
}

// BuildMessages produces the ordered message list for a chat completion.
// History is included oldest first, trimmed to the most recent turn-pairs;
// retrieved chunks appear in ranked order, each tagged with its source.
func (ps *PromptService) BuildMessages(question string, retrieved []models.RetrievedChunk, history []models.Turn) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: SystemPrompt})

	for _, turn := range trimHistory(history, ps.maxHistoryPairs) {
		messages = append(messages, models.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, models.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf("RETRIEVED CONTEXT:\n%s\n\nUSER QUESTION: %s\n\nANSWER:", formatContext(retrieved), question),
	})
	return messages
}

// formatContext renders the retrieved chunks as labeled blocks in ranked
// order, or the explicit no-context marker when retrieval came back empty.
func formatContext(retrieved []models.RetrievedChunk) string {
	if len(retrieved) == 0 {
		return NoContextMarker
	}

	blocks := make([]string, 0, len(retrieved))
	for i, rc := range retrieved {
		blocks = append(blocks, fmt.Sprintf("[Source %d — %s]\n%s", i+1, rc.Record.Title, rc.Record.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// trimHistory keeps the most recent maxPairs turn-pairs, preserving order.
func trimHistory(history []models.Turn, maxPairs int) []models.Turn {
	keep := maxPairs * 2
	if len(history) <= keep {
		return history
	}
	return history[len(history)-keep:]
}
