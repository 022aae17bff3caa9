package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
	model  string
}

// TicketDraft is a ticket proposed by the model, not yet persisted
type TicketDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Estimation  float64 `json:"estimation"`
	StoryPoints int     `json:"story_points"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig builds the service against a custom endpoint
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// DraftTicketsFromText extracts ticket drafts from free text using OpenAI chat completion
func (s *AIService) DraftTicketsFromText(ctx context.Context, text string) ([]TicketDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are an issue tracker assistant. Split the following text into concrete tickets.

Text:
%s

Return a JSON array of tickets in this shape:
[
  {
    "title": "short summary",
    "description": "details of the work",
    "estimation": 0,
    "story_points": 0
  }
]

Rules:
- Return [] when the text contains no actionable work
- estimation is in hours, story_points is a small non-negative integer, use 0 when unknown
- Return JSON only, without commentary`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []TicketDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}

// stripCodeFence removes a surrounding ```json fence some models add
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
