package identity

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeGradient(t *testing.T, offset uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*8) + offset})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeFlat(t *testing.T, level uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHistogramComparator(t *testing.T) {
	ctx := context.Background()
	comparator := NewHistogramComparator()

	t.Run("identical images score one", func(t *testing.T) {
		img := encodeGradient(t, 0)
		score, err := comparator.Compare(ctx, img, img)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-6)
	})

	t.Run("disjoint brightness profiles score low", func(t *testing.T) {
		dark := encodeFlat(t, 10)
		bright := encodeFlat(t, 240)
		score, err := comparator.Compare(ctx, dark, bright)
		require.NoError(t, err)
		assert.Less(t, score, 0.5)
	})

	t.Run("undecodable proof image errors", func(t *testing.T) {
		_, err := comparator.Compare(ctx, []byte("not an image"), encodeGradient(t, 0))
		assert.Error(t, err)
	})

	t.Run("undecodable reference image errors", func(t *testing.T) {
		_, err := comparator.Compare(ctx, encodeGradient(t, 0), []byte("not an image"))
		assert.Error(t, err)
	})
}
