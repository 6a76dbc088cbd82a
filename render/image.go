package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"albumbot/logger"
)

// maxThumbnailDim caps the longer side of a re-encoded cover. Telegram
// rejects photos above 10MB and oversized covers waste upload time.
const maxThumbnailDim = 1024

// Thumbnailer fetches cover images and re-encodes them as PNG.
type Thumbnailer struct {
	httpClient *http.Client
}

// NewThumbnailer creates a Thumbnailer with a sane request timeout.
func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Fetch downloads the cover at url, decodes it (JPEG, PNG, GIF or WebP),
// scales it down to fit maxThumbnailDim if needed and re-encodes it as PNG.
func (t *Thumbnailer) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create thumbnail request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail returned status %d", resp.StatusCode)
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxThumbnailDim || height > maxThumbnailDim {
		if width > height {
			height = height * maxThumbnailDim / width
			width = maxThumbnailDim
		} else {
			width = width * maxThumbnailDim / height
			height = maxThumbnailDim
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	logger.Debug("thumbnail prepared",
		logger.String("url", url),
		logger.String("source_format", format),
		logger.Int("width", width),
		logger.Int("height", height))
	return buf.Bytes(), nil
}
