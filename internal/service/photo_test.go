package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestPhoto produces a base64 PNG of the given dimensions.
func encodeTestPhoto(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestProcessPhotoResizesLargeImage(t *testing.T) {
	encoded := encodeTestPhoto(t, 2400, 1600)

	photo, err := processPhoto(context.Background(), encoded, DefaultMaxPhotoBytes)
	require.NoError(t, err)

	assert.Equal(t, PhotoMaxSize, photo.Width)
	assert.Equal(t, 720, photo.Height)

	decoded, err := jpeg.Decode(bytes.NewReader(photo.JPEG))
	require.NoError(t, err)
	assert.Equal(t, PhotoMaxSize, decoded.Bounds().Dx())

	assert.NotEmpty(t, photo.Thumb)
}

func TestProcessPhotoKeepsSmallImage(t *testing.T) {
	encoded := encodeTestPhoto(t, 300, 200)

	photo, err := processPhoto(context.Background(), encoded, DefaultMaxPhotoBytes)
	require.NoError(t, err)

	assert.Equal(t, 300, photo.Width)
	assert.Equal(t, 200, photo.Height)
}

func TestProcessPhotoAcceptsDataURL(t *testing.T) {
	encoded := "data:image/png;base64," + encodeTestPhoto(t, 64, 64)

	photo, err := processPhoto(context.Background(), encoded, DefaultMaxPhotoBytes)
	require.NoError(t, err)
	assert.Equal(t, 64, photo.Width)
}

func TestProcessPhotoRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"empty", ""},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"malformed data url", "data:image/png;base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processPhoto(context.Background(), tt.encoded, DefaultMaxPhotoBytes)
			assert.Error(t, err)
		})
	}
}

func TestProcessPhotoRejectsOversizedUpload(t *testing.T) {
	encoded := encodeTestPhoto(t, 512, 512)

	_, err := processPhoto(context.Background(), encoded, 16)
	assert.Error(t, err)
}
