package app

import (
	"assetbake/internal/domain"
	appErrors "assetbake/internal/errors"
)

// Discover enumerates the images of one source. Sources without a complete
// image spec yield nil, nil: they are skipped, never an error. The directory
// is scanned non-recursively and only extensions on the allow-list match;
// result order is filesystem-dependent and callers must not rely on it.
func Discover(fsys FileSystem, paths domain.PathSettings, src domain.SourceConfig) ([]domain.ImageAsset, error) {
	if !src.HasImages() {
		return nil, nil
	}

	dir := paths.ImageDir(src)
	files, err := fsys.ListFiles(dir)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "list images", dir, err)
	}

	var assets []domain.ImageAsset
	for _, file := range files {
		asset := domain.NewImageAsset(file)
		if !domain.IsSupportedExtension(asset.Ext) {
			continue
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
