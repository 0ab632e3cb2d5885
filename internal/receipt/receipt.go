package receipt

import (
	"time"

	"github.com/receiptwise/receiptwise/internal/extraction"
)

// Receipt pairs the stored source document with the structured record
// extracted from it.
type Receipt struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	extraction.ReceiptRecord
}
