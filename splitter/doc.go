// Package splitter breaks extracted document text into ordered, overlapping chunks.
//
// Text is first cut at the coarsest separator that yields pieces no longer than
// the maximum chunk size (paragraphs, then lines, then words, then a hard cut).
// Pieces are then packed greedily into chunks, and each chunk after the first
// begins with a short suffix of its predecessor. Separators stay attached to the
// pieces they end, so removing each chunk's overlap prefix and concatenating the
// results reproduces the input exactly.
//
// All lengths are measured in runes.
package splitter
