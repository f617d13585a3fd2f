package advisor

import (
	"context"
	"fmt"

	"flytz/internal/config"
	"flytz/internal/logging"
	"flytz/internal/types"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI GENERATOR
// =============================================================================

// DefaultModel is used when the config leaves the model blank.
const DefaultModel = "gemini-2.5-flash"

// GeminiGenerator generates text using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator for the Gemini Developer API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the conversation plus prompt and returns the response text.
// Leading model turns are dropped so the conversation opens with the user.
func (g *GeminiGenerator) Generate(ctx context.Context, system string, history []types.ChatMessage, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if len(contents) == 0 && m.Role != types.RoleUser {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == types.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the generator name.
func (g *GeminiGenerator) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

// FromConfig builds an Advisor from the llm section. A missing key, or a client
// that cannot be created, yields an offline Advisor.
func FromConfig(ctx context.Context, cfg *config.Config) *Advisor {
	timeout := WithTimeout(cfg.GetLLMTimeout())
	if !cfg.HasLLMKey() {
		return New(nil, timeout)
	}
	gen, err := NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		logging.AdvisorWarn("Gemini unavailable, running offline: %v", err)
		return New(nil, timeout)
	}
	logging.Advisor("Using %s", gen.Name())
	return New(gen, timeout)
}
