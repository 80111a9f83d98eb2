package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// GenerateConversationPrompt produces one icebreaker question for two
// people on a call, steering away from prompts already used in the room.
func (c *GeminiClient) GenerateConversationPrompt(ctx context.Context, interests1, interests2, used []string) (string, error) {
	prompt := fmt.Sprintf(`
		Two people just met on a video call in a social matching app.
		Person 1 interests: %v
		Person 2 interests: %v
		Already asked this call: %v

		Task: Write ONE short, playful conversation starter question they could
		discuss. Avoid anything resembling the already-asked prompts.
		Output: just the question text, no quotes.
	`, interests1, interests2, used)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// ClassifyReportSeverity triages an abuse report into low, medium or
// severe. Anything unparseable falls back to medium so a human still
// looks at it.
func (c *GeminiClient) ClassifyReportSeverity(ctx context.Context, reason string) (string, error) {
	prompt := fmt.Sprintf(`
		Classify the severity of this abuse report from a social video-call app.
		Report: %q

		Output: exactly one word, one of: low, medium, severe.
	`, reason)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	severity := strings.ToLower(strings.TrimSpace(sb.String()))
	switch severity {
	case "low", "medium", "severe":
		return severity, nil
	}
	return "medium", nil
}
