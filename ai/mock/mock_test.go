package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("hello", 16)
	b := DeterministicVector("hello", 16)
	c := DeterministicVector("world", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockProvider_Defaults(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider()

	vec, err := p.Embedder().EmbedText(ctx, "some text")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimensions)

	md, err := p.MetadataExtractor().ExtractMetadata(ctx, "one two three four five six")
	require.NoError(t, err)
	assert.Equal(t, "one two three four five", md["title"])
	assert.Equal(t, "6", md["word_count"])

	assert.Equal(t, 1, p.GetMockEmbedder().CallCount())
	assert.Equal(t, 1, p.GetMockExtractor().CallCount())

	p.GetMockEmbedder().Reset()
	assert.Equal(t, 0, p.GetMockEmbedder().CallCount())
	assert.NoError(t, p.Close())
}
