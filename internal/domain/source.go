package domain

import "path/filepath"

// MaxWidth is the widest any processed image is allowed to be. Narrower
// sources keep their own width; images are never upscaled.
const MaxWidth = 800

// Quality is the fixed encoder quality applied to every re-encode.
const Quality = 80

// SecondaryExtension is the extension of the modern-format variant written
// next to every processed image.
const SecondaryExtension = "webp"

// ProductionMode is the environment mode that enables the publish stage.
const ProductionMode = "production"

// ImageSpec declares where a source's images live and what the output
// subdirectory is called.
type ImageSpec struct {
	Name string
	Path string
}

// SourceConfig is one content source's build configuration. Images is nil
// for sources that have no images to process; those sources are skipped.
type SourceConfig struct {
	DirName string
	Images  *ImageSpec
}

// HasImages reports whether the source declares a complete image spec.
func (s SourceConfig) HasImages() bool {
	return s.Images != nil && s.Images.Name != "" && s.Images.Path != ""
}

// PathSettings holds every directory the pipeline reads from or writes to.
// All paths are absolute after config loading.
type PathSettings struct {
	// RawAssetPath holds site-wide static assets copied verbatim.
	RawAssetPath string
	// RawContentAssetPath holds content-owned static assets, copied after
	// RawAssetPath (last writer wins on name collisions).
	RawContentAssetPath string
	// AssetPath is the staging output directory everything is written into.
	AssetPath string
	// RawContentPath is the content root; image directories are resolved as
	// RawContentPath/sources/<dirName>/<images.path>.
	RawContentPath string
	// StaticAssetPath is the publish subdirectory name under static/.
	StaticAssetPath string
	// PublishPath is the resolved static/<StaticAssetPath> directory, only
	// written in production mode.
	PublishPath string
}

// ImageDir returns the absolute directory to scan for one source's images.
// Empty when the source declares no image spec.
func (p PathSettings) ImageDir(src SourceConfig) string {
	if !src.HasImages() {
		return ""
	}
	return filepath.Join(p.RawContentPath, "sources", src.DirName, src.Images.Path)
}

// OutputDir returns the absolute per-source output subdirectory.
func (p PathSettings) OutputDir(src SourceConfig) string {
	if !src.HasImages() {
		return ""
	}
	return filepath.Join(p.AssetPath, src.Images.Name)
}
