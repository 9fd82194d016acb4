package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/docindex/ai"
)

const maxParseAttempts = 3

// generateFunc sends one prompt and returns the model's text reply.
type generateFunc func(ctx context.Context, text string) (string, error)

// MetadataExtractor implements ai.MetadataExtractor with a Gemini generative model.
type MetadataExtractor struct {
	generate generateFunc
	logger   *slog.Logger
}

func newMetadataExtractor(client *genai.Client, model string) *MetadataExtractor {
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ai.MetadataPrompt())},
	}

	generate := func(ctx context.Context, text string) (string, error) {
		resp, err := m.GenerateContent(ctx, genai.Text(text))
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		return responseText(resp), nil
	}
	return &MetadataExtractor{
		generate: generate,
		logger:   slog.Default().With("component", "gemini-extractor", "model", model),
	}
}

// ExtractMetadata asks the model to describe text and returns the flattened
// JSON object it produced.
func (e *MetadataExtractor) ExtractMetadata(ctx context.Context, text string) (map[string]string, error) {
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		reply, err := e.generate(ctx, text)
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		metadata, err := ai.ParseMetadataResponse(reply)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response", "attempt", attempt+1, "response", reply, "err", err)
			continue
		}
		return metadata, nil
	}
	return nil, lastErr
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
