// Package ai wraps the language-generation capability. The model itself
// is an opaque external collaborator; this package owns only the
// protocol around it: prompt assembly, history windowing, and timeouts.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/moodflick/backend/internal/config"
	"github.com/moodflick/backend/internal/model/chat"
)

// historyLimit caps how many prior turns accompany a generation request.
const historyLimit = 10

// Service runs the configured chat model behind compiled eino chains.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	summary compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the generation chains. It fails when the model
// cannot be constructed, which the caller treats as fatal.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	convTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)
	convChain := compose.NewChain[map[string]any, *schema.Message]()
	convChain.AppendChatTemplate(convTemplate)
	convChain.AppendChatModel(chatModel)
	conv, err := convChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile conversation chain: %w", err)
	}

	summaryTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(summarySystemPrompt),
		schema.UserMessage(summaryRequestPrompt),
	)
	summaryChain := compose.NewChain[map[string]any, *schema.Message]()
	summaryChain.AppendChatTemplate(summaryTemplate)
	summaryChain.AppendChatModel(chatModel)
	summary, err := summaryChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary chain: %w", err)
	}

	return &Service{chain: conv, summary: summary, timeout: cfg.Timeout}, nil
}

// EmpatheticReply produces a short, warm reply ending in a question.
func (s *Service) EmpatheticReply(ctx context.Context, history []chat.Message, userMessage string) (string, error) {
	return s.converse(ctx, empatheticSystemPrompt, history, userMessage)
}

// FollowUpReply produces a contextual reply about previously recommended
// movies.
func (s *Service) FollowUpReply(ctx context.Context, history []chat.Message, userMessage string) (string, error) {
	return s.converse(ctx, followUpSystemPrompt, history, userMessage)
}

// SummarizeEmotion condenses the dialogue window into a one-sentence
// emotional summary.
func (s *Service) SummarizeEmotion(ctx context.Context, window []chat.Message) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.summary.Invoke(ctx, map[string]any{
		"transcript": formatTranscript(window),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run summary chain: %w", err)
	}
	return strings.TrimSpace(msg.Content), nil
}

// StreamReply streams an empathetic reply chunk by chunk for the SSE
// endpoint.
func (s *Service) StreamReply(ctx context.Context, history []chat.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, s.chainInput(empatheticSystemPrompt, history, userMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to stream chain output: %w", err)
	}
	return stream, nil
}

func (s *Service) converse(ctx context.Context, system string, history []chat.Message, userMessage string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.chain.Invoke(ctx, s.chainInput(system, history, userMessage))
	if err != nil {
		return "", fmt.Errorf("failed to run conversation chain: %w", err)
	}
	reply := strings.TrimSpace(msg.Content)
	log.Printf("[ai] generated reply, length=%d", len(reply))
	return reply, nil
}

func (s *Service) chainInput(system string, history []chat.Message, userMessage string) map[string]any {
	return map[string]any{
		"system":  system,
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

func formatTranscript(messages []chat.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := "사용자"
		if msg.Role == chat.RoleAssistant {
			role = "챗봇"
		}
		lines = append(lines, role+": "+content)
	}
	if len(lines) == 0 {
		return "대화 없음"
	}
	return strings.Join(lines, "\n")
}
