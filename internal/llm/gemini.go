package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "models/gemini-1.5-flash"

// GeminiClient talks to the Gemini API through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini builds a client authenticated with an API key. baseURL overrides
// the public endpoint (proxies, tests); it must be an absolute URL.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		// the SDK appends "/v1beta/..." itself
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(baseURL, "/")))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: normalizeGeminiModel(model)}, nil
}

// Generate sends the last message as a user turn. Earlier messages become
// chat history. The first text part of the first candidate is returned.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	if len(messages) == 0 {
		return Response{}, fmt.Errorf("%w: gemini generate content: no messages", ErrProvider)
	}

	m := c.client.GenerativeModel(c.model)
	last := genai.Text(messages[len(messages)-1].Content)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(messages) == 1 {
		resp, err = m.GenerateContent(ctx, last)
	} else {
		cs := m.StartChat()
		for _, msg := range messages[:len(messages)-1] {
			cs.History = append(cs.History, toGeminiContent(msg))
		}
		resp, err = cs.SendMessage(ctx, last)
	}
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return Response{}, fmt.Errorf("%w: gemini reply blocked: %w", ErrProvider, err)
		}
		return Response{}, fmt.Errorf("%w: gemini generate content: %w", ErrProvider, err)
	}

	return Response{Content: firstCandidateText(resp), Model: c.model}, nil
}

// Close releases the SDK's underlying connections.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func toGeminiContent(msg Message) *genai.Content {
	if msg.Role == RoleAssistant {
		return &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}}
	}
	return genai.NewUserContent(genai.Text(msg.Content))
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	if text, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(text)
	}
	return ""
}

// normalizeGeminiModel accepts both "gemini-1.5-flash" and "models/gemini-1.5-flash".
func normalizeGeminiModel(model string) string {
	if model == "" {
		return defaultGeminiModel
	}
	if !strings.HasPrefix(model, "models/") && !strings.HasPrefix(model, "tunedModels/") {
		return "models/" + model
	}
	return model
}
