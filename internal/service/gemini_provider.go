package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/util"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API with a structured response schema.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

func questionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"questionNumber": {Type: genai.TypeNumber},
				"questionText":   {Type: genai.TypeString},
				"explanation":    {Type: genai.TypeString},
				"choices": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"id":   {Type: genai.TypeNumber},
							"text": {Type: genai.TypeString},
						},
						PropertyOrdering: []string{"id", "text"},
					},
				},
				"answer": {Type: genai.TypeInteger},
				"difficulty": {
					Type: genai.TypeString,
					Enum: []string{"easy", "medium", "hard"},
				},
			},
			PropertyOrdering: []string{"questionNumber", "questionText", "explanation", "difficulty"},
		},
	}
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema(),
	})
	if err != nil {
		return "", classifyGenAIError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text returned", util.ErrMalformedResponse)
	}
	return text, nil
}

func classifyGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && unavailable(apiErr) {
		return fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && unavailable(*apiErrPtr) {
		return fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}
	return err
}

func unavailable(e genai.APIError) bool {
	return e.Status == "UNAVAILABLE" || e.Code == http.StatusServiceUnavailable
}

// UnconfiguredProvider is used when no API key is set.
type UnconfiguredProvider struct{}

func (UnconfiguredProvider) GenerateContent(context.Context, string) (string, error) {
	return "", errors.New("content provider is not configured: set ai.api_key")
}
