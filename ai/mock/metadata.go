package mock

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// MockMetadataExtractor is a test double for ai.MetadataExtractor.
type MockMetadataExtractor struct {
	// ExtractMetadataFunc is called by ExtractMetadata if set.
	// If nil, returns a title made of the first few words and a word count.
	ExtractMetadataFunc func(ctx context.Context, text string) (map[string]string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockMetadataExtractor creates a mock extractor with default behavior.
func NewMockMetadataExtractor() *MockMetadataExtractor {
	return &MockMetadataExtractor{}
}

// WithExtractMetadataFunc replaces the extraction behavior and returns the mock.
func (m *MockMetadataExtractor) WithExtractMetadataFunc(fn func(ctx context.Context, text string) (map[string]string, error)) *MockMetadataExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractMetadataFunc = fn
	return m
}

// ExtractMetadata returns canned metadata for text.
func (m *MockMetadataExtractor) ExtractMetadata(ctx context.Context, text string) (map[string]string, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ExtractMetadataFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}

	words := strings.Fields(text)
	title := words
	if len(title) > 5 {
		title = title[:5]
	}
	return map[string]string{
		"title":      strings.Join(title, " "),
		"word_count": strconv.Itoa(len(words)),
	}, nil
}

// CallCount returns the number of times ExtractMetadata was called.
func (m *MockMetadataExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockMetadataExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractMetadataFunc = nil
}
