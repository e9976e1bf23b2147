package app

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"assetbake/internal/domain"
)

type mockFS struct {
	files    map[string][]string // dir -> file paths
	listErr  error
	copied   [][2]string
	mkdirs   []string
	mkdirErr map[string]error
	copyErr  map[string]error
}

func newMockFS() *mockFS {
	return &mockFS{
		files:    map[string][]string{},
		mkdirErr: map[string]error{},
		copyErr:  map[string]error{},
	}
}

func (m *mockFS) Stat(path string) (fs.FileInfo, error) { return nil, fs.ErrNotExist }

func (m *mockFS) Exists(path string) (bool, error) { return false, nil }

func (m *mockFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := m.mkdirErr[path]; err != nil {
		return err
	}
	m.mkdirs = append(m.mkdirs, path)
	return nil
}

func (m *mockFS) CopyFile(src, dst string) error { return nil }

func (m *mockFS) CopyDir(src, dst string) error {
	if err := m.copyErr[src]; err != nil {
		return err
	}
	m.copied = append(m.copied, [2]string{src, dst})
	return nil
}

func (m *mockFS) ListFiles(dir string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	files, ok := m.files[dir]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return files, nil
}

var testPaths = domain.PathSettings{
	RawAssetPath:        "/site/assets/raw",
	RawContentAssetPath: "/site/content/assets",
	AssetPath:           "/site/public/assets",
	RawContentPath:      "/site/content",
	StaticAssetPath:     "media",
	PublishPath:         "/site/static/media",
}

func blogSource() domain.SourceConfig {
	return domain.SourceConfig{DirName: "blog", Images: &domain.ImageSpec{Name: "posts", Path: "img"}}
}

func TestDiscoverFiltersUnsupportedExtensions(t *testing.T) {
	src := blogSource()
	dir := testPaths.ImageDir(src)

	fsys := newMockFS()
	fsys.files[dir] = []string{
		filepath.Join(dir, "photo.png"),
		filepath.Join(dir, "icon.jpg"),
		filepath.Join(dir, "scan.tiff"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "vector.svg"),
		filepath.Join(dir, "SHOUTING.JPG"), // extension match is case-sensitive
	}

	assets, err := Discover(fsys, testPaths, src)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(assets) != 3 {
		t.Fatalf("got %d assets, want 3: %+v", len(assets), assets)
	}
	for _, asset := range assets {
		if !filepath.IsAbs(asset.Path) {
			t.Errorf("asset path %q is not absolute", asset.Path)
		}
	}
}

func TestDiscoverSkipsSourceWithoutImages(t *testing.T) {
	fsys := newMockFS()
	fsys.listErr = errors.New("should not be called")

	assets, err := Discover(fsys, testPaths, domain.SourceConfig{DirName: "pages"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if assets != nil {
		t.Errorf("got %d assets, want none", len(assets))
	}
}

func TestDiscoverPropagatesListError(t *testing.T) {
	fsys := newMockFS()
	fsys.listErr = errors.New("permission denied")

	if _, err := Discover(fsys, testPaths, blogSource()); err == nil {
		t.Fatal("expected error from unreadable image directory")
	}
}
