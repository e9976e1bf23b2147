package domain

import (
	"path/filepath"
	"strings"
)

// ImageAsset is one discovered source image, resolved to an absolute path.
type ImageAsset struct {
	Path     string
	Name     string // base filename, extension included
	BaseName string // base filename without its final extension
	Ext      string // extension without the leading dot
}

func NewImageAsset(path string) ImageAsset {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return ImageAsset{
		Path:     path,
		Name:     name,
		BaseName: strings.TrimSuffix(name, ext),
		Ext:      strings.TrimPrefix(ext, "."),
	}
}

// IsSupportedExtension reports whether ext (without dot) is in the fixed
// allow-list. The match is case-sensitive: "JPG" is not supported.
func IsSupportedExtension(ext string) bool {
	switch ext {
	case "jpeg", "jpg", "png", "webp", "tif", "tiff":
		return true
	default:
		return false
	}
}

// ImageMeta is the cheaply probed metadata of a source image. Width and
// Height are the displayed dimensions, already swapped for EXIF orientations
// that transpose the image.
type ImageMeta struct {
	Width  int
	Height int
	Format string // decoder-detected format name: jpeg, png, webp, tiff
}

// TargetWidth computes the resize width for this image: capped at MaxWidth,
// never upscaled.
func (m ImageMeta) TargetWidth() int {
	if m.Width > MaxWidth {
		return MaxWidth
	}
	return m.Width
}

// OutputPair names the two artifacts produced from one asset. For a source
// that is already in the secondary format both paths are the same file.
type OutputPair struct {
	Primary   string
	Secondary string
}

// FileFailure records one image whose processing failed, with the cause.
type FileFailure struct {
	Path string
	Err  error
}

// SourceResult aggregates one source's processing: every file is attempted,
// failures never block siblings.
type SourceResult struct {
	Source   SourceConfig
	Pairs    []OutputPair
	Failures []FileFailure
}

// BuildReport is the outcome of one pipeline run.
type BuildReport struct {
	Sources   []SourceResult
	Published bool
}

// Failures flattens every per-file failure across all sources.
func (r BuildReport) Failures() []FileFailure {
	var all []FileFailure
	for _, src := range r.Sources {
		all = append(all, src.Failures...)
	}
	return all
}

// Processed counts successfully produced output pairs across all sources.
func (r BuildReport) Processed() int {
	n := 0
	for _, src := range r.Sources {
		n += len(src.Pairs)
	}
	return n
}
