package pipeline

import (
	"bytes"
	"fmt"
	"image"

	// Registered decoders for header inspection and full decode.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// Dimensions extracts pixel width, height and the detected format from the
// image header without decoding the full pixel data.
func Dimensions(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// BlurScore estimates sharpness as the variance of the discrete Laplacian
// over the luma plane, excluding a 1-pixel border. A larger score means a
// sharper image; values below the configured threshold count as blurry.
func BlurScore(data []byte) (float64, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}

	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0, nil
	}

	// Grayscale output has R=G=B, so the red channel is the luma plane.
	luma := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := y * gray.Stride
		for x := 0; x < w; x++ {
			luma[y*w+x] = float64(gray.Pix[row+x*4])
		}
	}

	laplacian := make([]float64, 0, (w-2)*(h-2))
	var mean float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			idx := y*w + x
			lap := luma[idx-w] + luma[idx+w] + luma[idx-1] + luma[idx+1] - 4*luma[idx]
			laplacian = append(laplacian, lap)
			mean += lap
		}
	}

	count := float64(len(laplacian))
	mean /= count

	var variance float64
	for _, lap := range laplacian {
		d := lap - mean
		variance += d * d
	}

	return variance / count, nil
}
