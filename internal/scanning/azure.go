package scanning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/receiptwise/receiptwise/internal/extraction"
)

// Azure implements the Scanner interface using the Azure Computer
// Vision OCR API. It is the only provider that returns word-level
// bounding geometry, so its results go through spatial line
// reconstruction instead of being taken as pre-formed lines.
type Azure struct {
	client *computervision.BaseClient
}

// NewAzure creates a new Azure Scanner instance
func NewAzure(endpoint, apiKey string) (*Azure, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure api key is required")
	}

	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)

	return &Azure{client: &client}, nil
}

// DetectText runs OCR on a receipt and returns word-level detections.
func (a *Azure) DetectText(imageData []byte, contentType string) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Convert PDFs and exotic formats to PNG, then enhance for OCR
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}
	enhanced, err := enhanceForOCR(finalImageData)
	if err != nil {
		return nil, fmt.Errorf("enhancing image: %w", err)
	}

	imageReader := io.NopCloser(bytes.NewReader(enhanced))

	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		imageReader,
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	return &Result{Detections: detectionsFromOCRResult(result)}, nil
}

// Close closes the Azure client (no-op for REST client)
func (a *Azure) Close() error {
	return nil
}

// detectionsFromOCRResult flattens the region/line/word hierarchy of the
// OCR response into word-level detections. The API reports bounding
// boxes as "x,y,width,height" strings; it gives no per-word confidence,
// so words it returns are treated as certain.
func detectionsFromOCRResult(result computervision.OcrResult) []extraction.TextDetection {
	var detections []extraction.TextDetection
	if result.Regions == nil {
		return detections
	}

	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			for _, word := range *line.Words {
				if word.Text == nil || word.BoundingBox == nil {
					continue
				}
				polygon, ok := parseBoundingBox(*word.BoundingBox)
				if !ok {
					continue
				}
				detections = append(detections, extraction.TextDetection{
					Polygon:    polygon,
					Text:       *word.Text,
					Confidence: 1.0,
				})
			}
		}
	}
	return detections
}

// parseBoundingBox converts an "x,y,width,height" string into the four
// corners of an axis-aligned box, clockwise from the top left.
func parseBoundingBox(s string) ([4]extraction.Point, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]extraction.Point{}, false
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return [4]extraction.Point{}, false
		}
		vals[i] = float64(n)
	}

	x, y, w, h := vals[0], vals[1], vals[2], vals[3]
	return [4]extraction.Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}, true
}
