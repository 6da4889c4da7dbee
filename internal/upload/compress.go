package upload

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/atelierhq/fieldsync/internal/errors"
)

// Compressor downscales and re-encodes photo payloads that exceed a
// size threshold before they are uploaded or queued. Payloads at or
// under the threshold pass through byte-for-byte unchanged.
type Compressor struct {
	// ThresholdBytes is the size above which compression kicks in.
	ThresholdBytes int64
	// MaxDimension is the bounding box edge for downscaling.
	MaxDimension int
	// JPEGQuality is the fixed re-encode quality (1-100).
	JPEGQuality int
}

// NewCompressor creates a Compressor.
func NewCompressor(thresholdBytes int64, maxDimension, jpegQuality int) *Compressor {
	return &Compressor{
		ThresholdBytes: thresholdBytes,
		MaxDimension:   maxDimension,
		JPEGQuality:    jpegQuality,
	}
}

// Compress returns the payload to upload and its content type. Over
// the threshold the image is fit into the bounding box (aspect ratio
// preserved, never upscaled) and re-encoded as JPEG at the fixed
// quality. A payload that cannot be decoded as an image is rejected
// with UNSUPPORTED_MEDIA_TYPE.
func (c *Compressor) Compress(payload []byte, contentType string) ([]byte, string, error) {
	if int64(len(payload)) <= c.ThresholdBytes {
		return payload, contentType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrUnsupportedMedia, "failed to decode image for compression", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > c.MaxDimension || bounds.Dy() > c.MaxDimension {
		img = imaging.Fit(img, c.MaxDimension, c.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.JPEGQuality}); err != nil {
		return nil, "", errors.Wrap(errors.ErrInternal, "failed to re-encode image", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
