package extract

import "errors"

var (
	// ErrConversionFailed indicates the document converter could not read the bytes.
	ErrConversionFailed = errors.New("document conversion failed")

	// ErrInvalidUTF8 indicates text content was not valid UTF-8.
	ErrInvalidUTF8 = errors.New("text content is not valid UTF-8")
)
