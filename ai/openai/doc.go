// Package openai implements ai.AIProvider against OpenAI-compatible APIs.
//
// Requests go through langchaingo, so the same code talks to OpenAI itself or
// to local servers such as Ollama, LocalAI, or vLLM.
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	    ai.WithExtractorModel("llama3"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	metadata, err := provider.MetadataExtractor().ExtractMetadata(ctx, "sample text")
package openai
