package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"strings"

	"mingle/internal/models"
	"mingle/internal/observability"

	"github.com/chai2010/webp"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	_ "image/gif" // Register GIF decoder
	_ "image/png" // Register PNG decoder
)

const (
	// PhotoMaxSize bounds the longest edge of the stored photo.
	PhotoMaxSize = 1080
	// ThumbMaxSize bounds the longest edge of the gallery thumbnail.
	ThumbMaxSize = 256

	JPEGQuality = 82
	WebPQuality = 70

	// DefaultMaxPhotoBytes caps the decoded upload size.
	DefaultMaxPhotoBytes = 10 * 1024 * 1024
)

// ProcessedPhoto is the normalized result of the upload pipeline: a JPEG
// sized for the profile view and a WebP thumbnail for the gallery grid.
type ProcessedPhoto struct {
	JPEG   []byte
	Thumb  []byte
	Width  int
	Height int
}

// processPhoto decodes a base64-encoded photo (raw or data-URL form),
// resizes it and re-encodes it for storage.
func processPhoto(ctx context.Context, encoded string, maxBytes int64) (photo *ProcessedPhoto, err error) {
	span, _ := observability.NewSpan(ctx, "photo.process")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	raw, err := decodeBase64Photo(encoded)
	if err != nil {
		return nil, models.NewValidationError("Invalid photo encoding")
	}
	if len(raw) == 0 {
		return nil, models.NewValidationError("No photo uploaded")
	}
	if int64(len(raw)) > maxBytes {
		return nil, models.NewValidationError("Photo too large")
	}

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("Invalid photo file")
	}
	if !isSupportedPhotoFormat(format) {
		return nil, models.NewValidationError("Unsupported photo format")
	}

	master := resizeToFit(decoded, PhotoMaxSize, PhotoMaxSize)
	jpegBytes, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	thumb := resizeToFit(master, ThumbMaxSize, ThumbMaxSize)
	thumbBytes, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	b := master.Bounds()
	span.AddAttributes(
		attribute.String("format", format),
		attribute.Int("width", b.Dx()),
		attribute.Int("height", b.Dy()),
	)
	return &ProcessedPhoto{
		JPEG:   jpegBytes,
		Thumb:  thumbBytes,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// decodeBase64Photo accepts either a bare base64 string or a browser
// data-URL ("data:image/jpeg;base64,...").
func decodeBase64Photo(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx < 0 {
			return nil, models.NewValidationError("Malformed data URL")
		}
		encoded = encoded[idx+1:]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isSupportedPhotoFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
