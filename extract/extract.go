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


// Package extract turns raw document bytes into plain text.
//
// Content of type core.ContentTypePDF is converted with docconv; anything
// else is read verbatim as UTF-8. Callers treat an error and an empty result
// alike: there is nothing to index.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/poiesic/docindex/core"
)

// Extractor returns the plain text of a document.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType core.ContentType) (string, error)
}

// ConvertFunc converts a binary document of the given MIME type to text.
type ConvertFunc func(r io.Reader, mimeType string) (string, error)

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithPDFConverter replaces the docconv-backed PDF converter.
func WithPDFConverter(fn ConvertFunc) Option {
	return func(d *Dispatcher) error {
		d.pdf = fn
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// Dispatcher routes extraction by content type.
type Dispatcher struct {
	pdf    ConvertFunc
	logger *slog.Logger
}

// New creates a Dispatcher that converts PDFs with docconv.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		pdf:    docconvConvert,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "extractor")
	return d, nil
}

// Extract returns the document's text. PDF text is trimmed of leading and
// trailing whitespace; other content is returned unchanged.
func (d *Dispatcher) Extract(ctx context.Context, data []byte, contentType core.ContentType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if contentType != core.ContentTypePDF {
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		return string(data), nil
	}

	text, err := d.pdf(bytes.NewReader(data), "application/pdf")
	if err != nil {
		d.logger.Warn("pdf conversion failed", "size", len(data), "err", err)
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	text = strings.TrimSpace(text)
	d.logger.Debug("extracted pdf text", "size", len(data), "length", len(text))
	return text, nil
}

func docconvConvert(r io.Reader, mimeType string) (string, error) {
	res, err := docconv.Convert(r, mimeType, false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

var _ Extractor = (*Dispatcher)(nil)
