package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// prepareImageData normalizes an uploaded receipt document to PNG so
// every detector sees the same input format. PDFs are rasterized,
// HEIC/HEIF photos go through a dedicated decoder, and everything else
// must be decodable by the registered image formats.
func prepareImageData(data []byte, contentType string) ([]byte, error) {
	mime := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case mime == "application/pdf":
		return rasterizePDF(data)
	case mime == "image/png" && !isHEIC(data, mime):
		return data, nil
	default:
		return decodeToPNG(data, mime)
	}
}

// rasterizePDF renders the first page of a PDF as PNG. Receipts are
// effectively always single page.
func rasterizePDF(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

// decodeToPNG decodes a photo in any supported format and re-encodes
// it as PNG.
func decodeToPNG(data []byte, mime string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEIC(data, mime) {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, WebP, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC reports whether the document is an HEIC/HEIF photo, which the
// standard image decoders cannot handle. iPhones upload these with an
// assortment of MIME types, so the container magic is checked too: an
// ISO media ftyp box at offset 4 carrying an HEIC brand.
func isHEIC(data []byte, mime string) bool {
	if mime == "image/heic" || mime == "image/heif" ||
		strings.Contains(mime, "heic") || strings.Contains(mime, "heif") {
		return true
	}
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heif", "mif1", "msf1":
			return true
		}
	}
	return false
}
