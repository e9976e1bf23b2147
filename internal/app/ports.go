package app

import (
	"context"
	"io/fs"

	"assetbake/internal/domain"
)

type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	CopyFile(src, dst string) error
	// CopyDir recursively copies the contents of src into dst, overwriting
	// existing files (last writer wins).
	CopyDir(src, dst string) error
	// ListFiles returns the absolute paths of the regular files directly
	// under dir, without recursing.
	ListFiles(dir string) ([]string, error)
}

type MetadataProbe interface {
	Probe(ctx context.Context, path string) (domain.ImageMeta, error)
}

type Transcoder interface {
	// Transcode produces the resized primary and the webp secondary for one
	// asset under outDir. The operation fails as a unit.
	Transcode(ctx context.Context, asset domain.ImageAsset, outDir string) (domain.OutputPair, error)
}
