// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docindex/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often a malformed model reply is re-requested.
const maxParseAttempts = 3

// MetadataExtractor implements ai.MetadataExtractor using OpenAI-compatible chat APIs.
type MetadataExtractor struct {
	client llms.Model
	logger *slog.Logger
}

func newMetadataExtractor(config *ai.Config) (*MetadataExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return newMetadataExtractorWithModel(client, config.ExtractorModel), nil
}

func newMetadataExtractorWithModel(client llms.Model, model string) *MetadataExtractor {
	return &MetadataExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor", "model", model),
	}
}

// NewMetadataExtractor creates a new metadata extractor using the provided configuration.
func NewMetadataExtractor(config *ai.Config) (ai.MetadataExtractor, error) {
	return newMetadataExtractor(config)
}

// ExtractMetadata asks the model to describe text and returns the flattened
// JSON object it produced. A reply that cannot be parsed is re-requested up to
// maxParseAttempts times.
func (e *MetadataExtractor) ExtractMetadata(ctx context.Context, text string) (map[string]string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ai.MetadataPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, strings.ToValidUTF8(text, "")),
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return map[string]string{}, nil
		}

		metadata, err := ai.ParseMetadataResponse(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}

		e.logger.Debug("extracted metadata", "keys", len(metadata))
		return metadata, nil
	}

	e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
	return nil, lastErr
}
