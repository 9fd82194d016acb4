// Package mock provides test doubles for the ai interfaces.
//
//	provider := mock.NewMockProvider()
//	provider.GetMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("embedding service down")
//	})
//
// Defaults are deterministic: MockEmbedder hashes text into a unit vector and
// MockMetadataExtractor returns a title and word count.
package mock
