package extraction

import (
	"sort"
	"strings"
)

// Point is a single 2D coordinate in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextDetection is one raw OCR output unit: a four-point polygon with the
// recognized text and the detector's confidence.
type TextDetection struct {
	Polygon    [4]Point `json:"polygon"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
}

// CentroidX returns the mean X of the detection's polygon.
func (d TextDetection) CentroidX() float64 {
	return (d.Polygon[0].X + d.Polygon[1].X + d.Polygon[2].X + d.Polygon[3].X) / 4
}

// CentroidY returns the mean Y of the detection's polygon.
func (d TextDetection) CentroidY() float64 {
	return (d.Polygon[0].Y + d.Polygon[1].Y + d.Polygon[2].Y + d.Polygon[3].Y) / 4
}

// Height returns the vertical extent of the detection's polygon.
func (d TextDetection) Height() float64 {
	minY, maxY := d.Polygon[0].Y, d.Polygon[0].Y
	for _, p := range d.Polygon[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxY - minY
}

// MergedLine is a reading-order text line reconstructed from one or more
// detections. Order is strictly increasing top-to-bottom.
type MergedLine struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

const (
	minClusterThreshold  = 8
	maxClusterThreshold  = 50
	thresholdHeightRatio = 0.6
)

// clusterThreshold derives the Y tolerance for grouping detections into a
// line from the median detection height, so that line grouping scales with
// the photographed resolution.
func clusterThreshold(detections []TextDetection) float64 {
	heights := make([]float64, len(detections))
	for i, d := range detections {
		heights[i] = d.Height()
	}
	sort.Float64s(heights)
	median := heights[len(heights)/2]
	if len(heights)%2 == 0 {
		median = (heights[len(heights)/2-1] + heights[len(heights)/2]) / 2
	}

	threshold := median * thresholdHeightRatio
	if threshold < minClusterThreshold {
		threshold = minClusterThreshold
	}
	if threshold > maxClusterThreshold {
		threshold = maxClusterThreshold
	}
	return threshold
}

// ReconstructLines clusters spatially positioned detections into ordered
// reading lines: sort by centroid Y, group detections whose Y sits within
// the adaptive threshold of the running cluster mean, then order each
// cluster left to right and join with single spaces.
func ReconstructLines(detections []TextDetection) []MergedLine {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]TextDetection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CentroidY() < sorted[j].CentroidY()
	})

	threshold := clusterThreshold(sorted)

	var clusters [][]TextDetection
	var current []TextDetection
	var meanY float64

	for _, det := range sorted {
		if strings.TrimSpace(det.Text) == "" {
			continue
		}
		y := det.CentroidY()
		if len(current) == 0 {
			current = []TextDetection{det}
			meanY = y
			continue
		}
		if y-meanY <= threshold && meanY-y <= threshold {
			current = append(current, det)
			meanY = (meanY + y) / 2
		} else {
			clusters = append(clusters, current)
			current = []TextDetection{det}
			meanY = y
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	lines := make([]MergedLine, 0, len(clusters))
	for i, cluster := range clusters {
		sort.SliceStable(cluster, func(a, b int) bool {
			return cluster[a].CentroidX() < cluster[b].CentroidX()
		})
		parts := make([]string, 0, len(cluster))
		for _, det := range cluster {
			parts = append(parts, strings.TrimSpace(det.Text))
		}
		lines = append(lines, MergedLine{Text: strings.Join(parts, " "), Order: i})
	}
	return lines
}
