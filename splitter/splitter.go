package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docindex/core"
)

const (
	// DefaultChunkSize is the default maximum chunk length in runes.
	DefaultChunkSize = 512

	// DefaultOverlap is the default number of runes shared by consecutive chunks.
	DefaultOverlap = 100
)

// separators in order of preference. The empty separator means a hard cut.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text with fixed size and overlap parameters.
// It is stateless and safe for concurrent use.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures a Splitter.
type Option func(*Splitter) error

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		s.chunkSize = size
		return nil
	}
}

// WithOverlap sets how many runes consecutive chunks may share.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		s.overlap = overlap
		return nil
	}
}

// New creates a Splitter. Defaults are DefaultChunkSize and DefaultOverlap.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.overlap >= s.chunkSize {
		return nil, ErrInvalidOverlap
	}
	return s, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the ordered chunks of text.
func (s *Splitter) Split(text string) []string {
	return Split(text, s.chunkSize, s.overlap)
}

// Chunks splits text and tags each piece with its document and position.
func (s *Splitter) Chunks(documentID, text string) []core.Chunk {
	parts := s.Split(text)
	if len(parts) == 0 {
		return nil
	}
	chunks := make([]core.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = core.Chunk{DocumentID: documentID, Index: i, Text: p}
	}
	return chunks
}

// Split breaks text into chunks of at most maxSize runes where consecutive
// chunks share up to overlap runes. Empty input yields nil.
//
// A non-positive maxSize falls back to DefaultChunkSize. A negative overlap is
// treated as zero, and an overlap not smaller than maxSize is reduced to maxSize/2.
func Split(text string, maxSize, overlap int) []string {
	segs := split(text, maxSize, overlap)
	if len(segs) == 0 {
		return nil
	}
	out := make([]string, len(segs))
	for i, seg := range segs {
		out[i] = seg.text
	}
	return out
}

// segment is one output chunk and the number of leading runes it repeats
// from the previous chunk.
type segment struct {
	text    string
	overlap int
}

func split(text string, maxSize, overlap int) []segment {
	if maxSize < 1 {
		maxSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 2
	}
	if text == "" {
		return nil
	}
	return merge(pieces(text, separators, maxSize, maxSize-overlap), maxSize, overlap)
}

// pieces cuts text into contiguous parts no longer than maxSize, using the
// first separator present and recursing with finer separators for parts that
// are still too long. Text with no usable separator is cut every cut runes,
// leaving room for the overlap carried into the next chunk.
func pieces(text string, seps []string, maxSize, cut int) []string {
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return hardCut(text, cut)
	}
	sep := seps[0]
	if !strings.Contains(text, sep) {
		return pieces(text, seps[1:], maxSize, cut)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= maxSize {
			out = append(out, part)
			continue
		}
		out = append(out, pieces(part, seps[1:], maxSize, cut)...)
	}
	return out
}

func hardCut(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// merge packs pieces greedily into chunks, seeding every chunk after the
// first with an overlap taken from the end of the previous chunk.
func merge(parts []string, maxSize, overlap int) []segment {
	var (
		out     []segment
		cur     strings.Builder
		curLen  int
		overlen int
	)
	for _, p := range parts {
		pl := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+pl > maxSize {
			prev := cur.String()
			out = append(out, segment{text: prev, overlap: overlen})

			cur.Reset()
			budget := min(overlap, maxSize-pl, curLen-1)
			tail := overlapSuffix(prev, budget)
			cur.WriteString(tail)
			curLen = utf8.RuneCountInString(tail)
			overlen = curLen
		}
		cur.WriteString(p)
		curLen += pl
	}
	if curLen > 0 {
		out = append(out, segment{text: cur.String(), overlap: overlen})
	}
	return out
}

// overlapSuffix returns the longest suffix of prev, at most budget runes,
// that starts just after a space or newline. Without such a boundary it
// returns the last budget runes.
func overlapSuffix(prev string, budget int) string {
	if budget <= 0 {
		return ""
	}
	runes := []rune(prev)
	if budget > len(runes) {
		budget = len(runes)
	}
	start := len(runes) - budget
	for i := max(start, 1); i < len(runes); i++ {
		if r := runes[i-1]; r == ' ' || r == '\n' {
			return string(runes[i:])
		}
	}
	return string(runes[start:])
}
