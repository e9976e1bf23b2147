package media

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"assetbake/internal/app"
	"assetbake/internal/domain"
	appErrors "assetbake/internal/errors"
)

// Transcoder produces the resized primary artifact (same format as the
// source) and the webp secondary for one image.
type Transcoder struct {
	Probe    app.MetadataProbe
	MaxWidth int
	Quality  int
}

func NewTranscoder(probe app.MetadataProbe) *Transcoder {
	return &Transcoder{
		Probe:    probe,
		MaxWidth: domain.MaxWidth,
		Quality:  domain.Quality,
	}
}

// Transcode writes outDir/<name>.<ext> and outDir/<name>.webp. The source is
// resized to min(MaxWidth, source width), never upscaled, aspect ratio
// preserved. Both writes run concurrently and the operation fails as a unit
// if either does. A webp source collapses to a single artifact since primary
// and secondary names coincide.
func (t *Transcoder) Transcode(ctx context.Context, asset domain.ImageAsset, outDir string) (domain.OutputPair, error) {
	select {
	case <-ctx.Done():
		return domain.OutputPair{}, ctx.Err()
	default:
	}

	meta, err := t.Probe.Probe(ctx, asset.Path)
	if err != nil {
		return domain.OutputPair{}, appErrors.Wrap(appErrors.ProbeFailure, "probe", asset.Path, err)
	}

	img, err := imaging.Open(asset.Path, imaging.AutoOrientation(true))
	if err != nil {
		return domain.OutputPair{}, appErrors.Wrap(appErrors.TranscodeFailure, "decode", asset.Path, err)
	}

	if width := t.targetWidth(meta.Width); img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.CatmullRom)
	}

	pair := domain.OutputPair{
		Primary:   filepath.Join(outDir, asset.Name),
		Secondary: filepath.Join(outDir, asset.BaseName+"."+domain.SecondaryExtension),
	}

	if pair.Primary == pair.Secondary {
		if err := t.encodeWebP(img, pair.Secondary); err != nil {
			return domain.OutputPair{}, appErrors.Wrap(appErrors.TranscodeFailure, "encode webp", asset.Path, err)
		}
		return pair, nil
	}

	var wg sync.WaitGroup
	var primaryErr, secondaryErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryErr = t.encodePrimary(img, pair.Primary, meta.Format)
	}()
	go func() {
		defer wg.Done()
		secondaryErr = t.encodeWebP(img, pair.Secondary)
	}()
	wg.Wait()

	if primaryErr != nil {
		return domain.OutputPair{}, appErrors.Wrap(appErrors.TranscodeFailure, "encode "+meta.Format, asset.Path, primaryErr)
	}
	if secondaryErr != nil {
		return domain.OutputPair{}, appErrors.Wrap(appErrors.TranscodeFailure, "encode webp", asset.Path, secondaryErr)
	}

	return pair, nil
}

func (t *Transcoder) targetWidth(srcWidth int) int {
	if srcWidth > t.MaxWidth {
		return t.MaxWidth
	}
	return srcWidth
}

// encodePrimary re-encodes in the detected source format, not the extension:
// a mislabeled file keeps its name but is encoded as what it actually is.
func (t *Transcoder) encodePrimary(img image.Image, path, format string) error {
	if format == domain.SecondaryExtension {
		return t.encodeWebP(img, path)
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", format, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := imaging.Encode(out, img, f, imaging.JPEGQuality(t.Quality)); err != nil {
		return err
	}
	return out.Close()
}

func (t *Transcoder) encodeWebP(img image.Image, path string) error {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(t.Quality))
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := webp.Encode(out, img, opts); err != nil {
		return err
	}
	return out.Close()
}
