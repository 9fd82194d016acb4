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


// Package ai provides abstractions for the AI services docindex depends on.
//
// Two services are needed per chunk during ingestion:
//
//   - Embedder: generates vector embeddings from text
//   - MetadataExtractor: derives descriptive attributes from text
//
// AIProvider aggregates both so they can share configuration and be closed together.
//
// # Implementation Packages
//
//   - ai/openai: any OpenAI-compatible API via langchaingo (OpenAI, Ollama, vLLM)
//   - ai/gemini: Google Gemini
//   - ai/mock: test doubles
//
// Production constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and read call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	metadata, err := provider.MetadataExtractor().ExtractMetadata(ctx, "Hello world")
//
// Model replies are parsed with ParseMetadataResponse, which tolerates code
// fences and common JSON mistakes.
package ai
