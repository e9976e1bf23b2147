package media

import (
	"context"
	"image"
	"os"

	goexif "github.com/rwcarlsen/goexif/exif"

	// Decoders for every supported input format. jpeg/png come from the
	// standard library, webp/tiff from x/image.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"assetbake/internal/domain"
)

// Probe reads image metadata without decoding pixel data.
type Probe struct{}

// Probe returns the image's displayed dimensions and detected format. For
// jpeg and tiff sources the EXIF orientation is consulted: orientations 5-8
// transpose the image, so width and height are swapped to match what the
// auto-orienting decoder will produce. A missing or unreadable orientation
// tag is not an error.
func (Probe) Probe(ctx context.Context, path string) (domain.ImageMeta, error) {
	select {
	case <-ctx.Done():
		return domain.ImageMeta{}, ctx.Err()
	default:
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ImageMeta{}, err
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return domain.ImageMeta{}, err
	}

	meta := domain.ImageMeta{Width: cfg.Width, Height: cfg.Height, Format: format}

	if format == "jpeg" || format == "tiff" {
		if transposed(file) {
			meta.Width, meta.Height = meta.Height, meta.Width
		}
	}

	return meta, nil
}

func transposed(file *os.File) bool {
	if _, err := file.Seek(0, 0); err != nil {
		return false
	}
	x, err := goexif.Decode(file)
	if err != nil {
		return false
	}
	tag, err := x.Get(goexif.Orientation)
	if err != nil {
		return false
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return false
	}
	return orientation >= 5 && orientation <= 8
}
