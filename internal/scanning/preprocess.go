package scanning

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// maxOCRDimension caps the longest image side before OCR; phone photos
// routinely exceed the API's size limits.
const maxOCRDimension = 2400

// enhanceForOCR applies a series of image processing operations that
// improve text recognition on photographed receipts.
func enhanceForOCR(imageData []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > maxOCRDimension || bounds.Dy() > maxOCRDimension {
		src = imaging.Fit(src, maxOCRDimension, maxOCRDimension, imaging.Lanczos)
	}

	// 1. Convert to grayscale for better contrast
	img := imaging.Grayscale(src)

	// 2. Increase contrast to separate print from paper
	img = imaging.AdjustContrast(img, 30)

	// 3. Sharpen the image to make text more readable
	img = imaging.Sharpen(img, 1.5)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}
