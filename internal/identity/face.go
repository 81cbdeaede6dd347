package identity

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
)

// FaceComparator scores how similar two face images are, in [0, 1].
type FaceComparator interface {
	Compare(ctx context.Context, proof, reference []byte) (float64, error)
}

const histogramBins = 64

// HistogramComparator compares images by correlating their normalized
// luminance histograms. It is an honest approximation, not a biometric
// model: deployments plug a real matcher in behind FaceComparator.
type HistogramComparator struct{}

// NewHistogramComparator returns the default comparator.
func NewHistogramComparator() *HistogramComparator {
	return &HistogramComparator{}
}

// Compare decodes both images and returns the Pearson correlation of their
// luminance histograms, clamped to [0, 1].
func (c *HistogramComparator) Compare(_ context.Context, proof, reference []byte) (float64, error) {
	proofHist, err := luminanceHistogram(proof)
	if err != nil {
		return 0, fmt.Errorf("failed to decode proof image: %w", err)
	}
	refHist, err := luminanceHistogram(reference)
	if err != nil {
		return 0, fmt.Errorf("failed to decode reference image: %w", err)
	}

	score := correlate(proofHist, refHist)
	if score < 0 {
		score = 0
	}
	return score, nil
}

func luminanceHistogram(data []byte) ([histogramBins]float64, error) {
	var hist [histogramBins]float64

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return hist, err
	}

	bounds := img.Bounds()
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma on 16-bit channel values.
			luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			bin := int(luma / 65536.0 * histogramBins)
			if bin >= histogramBins {
				bin = histogramBins - 1
			}
			hist[bin]++
			total++
		}
	}
	if total == 0 {
		return hist, fmt.Errorf("image has no pixels")
	}

	for i := range hist {
		hist[i] /= float64(total)
	}
	return hist, nil
}

func correlate(a, b [histogramBins]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < histogramBins; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= histogramBins
	meanB /= histogramBins

	var cov, varA, varB float64
	for i := 0; i < histogramBins; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
