package pipeline

import (
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensions(t *testing.T) {
	data := encodePNG(t, checkerboard(640, 480))

	width, height, format, err := Dimensions(data)
	require.NoError(t, err)

	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
	assert.Equal(t, "png", format)
}

func TestDimensions_InvalidData(t *testing.T) {
	_, _, _, err := Dimensions([]byte("not an image"))
	assert.Error(t, err)
}

func TestBlurScore_SharpBeatsBlurred(t *testing.T) {
	sharp := checkerboard(400, 400)
	blurred := imaging.Blur(sharp, 5.0)

	sharpScore, err := BlurScore(encodePNG(t, sharp))
	require.NoError(t, err)

	blurredScore, err := BlurScore(encodePNG(t, blurred))
	require.NoError(t, err)

	assert.Greater(t, sharpScore, blurredScore)
}

func TestBlurScore_UniformImageIsZero(t *testing.T) {
	score, err := BlurScore(encodePNG(t, uniformGray(300, 300)))
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestBlurScore_TinyImage(t *testing.T) {
	// Too small for a Laplacian interior; scored as fully blurry.
	score, err := BlurScore(encodePNG(t, checkerboard(2, 2)))
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestBlurScore_InvalidData(t *testing.T) {
	_, err := BlurScore([]byte("not an image"))
	assert.Error(t, err)
}
