package scanning

import (
	"github.com/receiptwise/receiptwise/internal/extraction"
)

// Result holds the raw text recovered from a receipt image. Providers
// that return word-level geometry populate Detections; transcription
// providers populate Lines instead. At least one of the two is set.
type Result struct {
	Detections []extraction.TextDetection
	Lines      []string
}

// Scanner defines the interface for text detection providers.
type Scanner interface {
	// DetectText reads all visible text from a receipt image or PDF.
	DetectText(imageData []byte, contentType string) (*Result, error)
	// Close closes the scanner and releases resources
	Close() error
}
