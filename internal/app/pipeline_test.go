package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"assetbake/internal/domain"
)

type mockTranscoder struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (m *mockTranscoder) Transcode(ctx context.Context, asset domain.ImageAsset, outDir string) (domain.OutputPair, error) {
	m.mu.Lock()
	m.calls = append(m.calls, asset.Name)
	m.mu.Unlock()

	if err := m.failFor[asset.Name]; err != nil {
		return domain.OutputPair{}, err
	}
	return domain.OutputPair{
		Primary:   filepath.Join(outDir, asset.Name),
		Secondary: filepath.Join(outDir, asset.BaseName+".webp"),
	}, nil
}

func pipelineFixture(t *testing.T) (*Pipeline, *mockFS, *mockTranscoder) {
	t.Helper()
	src := blogSource()
	dir := testPaths.ImageDir(src)

	fsys := newMockFS()
	fsys.files[dir] = []string{
		filepath.Join(dir, "photo.png"),
		filepath.Join(dir, "icon.jpg"),
	}

	transcoder := &mockTranscoder{failFor: map[string]error{}}
	pipeline := &Pipeline{FS: fsys, Transcoder: transcoder, Workers: 2}
	return pipeline, fsys, transcoder
}

func TestRunCopiesStaticBeforeTranscode(t *testing.T) {
	pipeline, fsys, transcoder := pipelineFixture(t)

	var order []string
	pipeline.OnProgress = func(event Progress) {
		switch event.Phase {
		case PhaseCopy:
			order = append(order, "copy")
		case PhaseTranscode:
			order = append(order, "transcode")
		}
	}

	report, err := pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{blogSource()}, "development")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(order) == 0 || order[0] != "copy" {
		t.Fatalf("copy stage did not run first: %v", order)
	}
	if len(fsys.copied) != 2 {
		t.Fatalf("got %d dir copies, want 2 (raw assets + content assets)", len(fsys.copied))
	}
	if fsys.copied[0][0] != testPaths.RawAssetPath || fsys.copied[1][0] != testPaths.RawContentAssetPath {
		t.Errorf("copy order wrong: %v", fsys.copied)
	}
	if len(transcoder.calls) != 2 {
		t.Errorf("got %d transcodes, want 2", len(transcoder.calls))
	}
	if report.Processed() != 2 {
		t.Errorf("Processed() = %d, want 2", report.Processed())
	}
}

func TestRunFatalOnStaticCopyFailure(t *testing.T) {
	pipeline, fsys, transcoder := pipelineFixture(t)
	fsys.copyErr[testPaths.RawAssetPath] = errors.New("unreadable")

	_, err := pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{blogSource()}, "development")
	if err == nil {
		t.Fatal("expected fatal error from static copy stage")
	}
	if len(transcoder.calls) != 0 {
		t.Errorf("transcode ran despite copy failure: %v", transcoder.calls)
	}
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	pipeline, _, transcoder := pipelineFixture(t)
	cause := errors.New("corrupted source")
	transcoder.failFor["photo.png"] = cause

	report, err := pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{blogSource()}, "development")
	if err != nil {
		t.Fatalf("Run: per-file failures must not be fatal, got %v", err)
	}

	if len(transcoder.calls) != 2 {
		t.Fatalf("got %d transcodes, want 2 (all files attempted)", len(transcoder.calls))
	}

	failures := report.Failures()
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	if filepath.Base(failures[0].Path) != "photo.png" {
		t.Errorf("failure path = %q, want photo.png", failures[0].Path)
	}
	if !errors.Is(failures[0].Err, cause) {
		t.Errorf("failure cause lost: %v", failures[0].Err)
	}
	if report.Processed() != 1 {
		t.Errorf("Processed() = %d, want 1 (the sibling still succeeds)", report.Processed())
	}
}

func TestRunSkipsSourcesWithoutImages(t *testing.T) {
	pipeline, _, transcoder := pipelineFixture(t)

	sources := []domain.SourceConfig{
		{DirName: "pages"},
		{DirName: "about", Images: &domain.ImageSpec{Name: "about"}}, // partial: skipped
	}

	report, err := pipeline.Run(context.Background(), testPaths, sources, "development")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sources) != 0 {
		t.Errorf("got %d source results, want 0", len(report.Sources))
	}
	if len(transcoder.calls) != 0 {
		t.Errorf("transcoder called for skipped sources: %v", transcoder.calls)
	}
}

func TestRunPublishOnlyInProduction(t *testing.T) {
	pipeline, fsys, _ := pipelineFixture(t)

	report, err := pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{blogSource()}, "development")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Published {
		t.Error("published in development mode")
	}
	for _, copied := range fsys.copied {
		if copied[1] == testPaths.PublishPath {
			t.Errorf("publish directory written in development mode: %v", copied)
		}
	}

	pipeline, fsys, _ = pipelineFixture(t)
	report, err = pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{blogSource()}, domain.ProductionMode)
	if err != nil {
		t.Fatalf("Run (production): %v", err)
	}
	if !report.Published {
		t.Error("not published in production mode")
	}
	last := fsys.copied[len(fsys.copied)-1]
	if last[0] != testPaths.AssetPath || last[1] != testPaths.PublishPath {
		t.Errorf("publish copy = %v, want %s -> %s", last, testPaths.AssetPath, testPaths.PublishPath)
	}
}

func TestRunSourcesInDeclarationOrder(t *testing.T) {
	first := domain.SourceConfig{DirName: "alpha", Images: &domain.ImageSpec{Name: "alpha", Path: "img"}}
	second := domain.SourceConfig{DirName: "beta", Images: &domain.ImageSpec{Name: "beta", Path: "img"}}

	fsys := newMockFS()
	fsys.files[testPaths.ImageDir(first)] = []string{filepath.Join(testPaths.ImageDir(first), "a.png")}
	fsys.files[testPaths.ImageDir(second)] = []string{filepath.Join(testPaths.ImageDir(second), "b.png")}

	transcoder := &mockTranscoder{failFor: map[string]error{}}
	pipeline := &Pipeline{FS: fsys, Transcoder: transcoder, Workers: 1}

	report, err := pipeline.Run(context.Background(), testPaths, []domain.SourceConfig{first, second}, "development")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sources) != 2 {
		t.Fatalf("got %d source results, want 2", len(report.Sources))
	}
	if report.Sources[0].Source.DirName != "alpha" || report.Sources[1].Source.DirName != "beta" {
		t.Errorf("sources processed out of declaration order: %+v", report.Sources)
	}
}

func TestPreviewWritesNothing(t *testing.T) {
	pipeline, fsys, transcoder := pipelineFixture(t)

	previews, err := pipeline.Preview(context.Background(), testPaths, []domain.SourceConfig{blogSource(), {DirName: "pages"}})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if len(previews) != 1 {
		t.Fatalf("got %d previews, want 1", len(previews))
	}
	if len(previews[0].Assets) != 2 {
		t.Errorf("got %d assets, want 2", len(previews[0].Assets))
	}
	if len(fsys.copied) != 0 || len(fsys.mkdirs) != 0 {
		t.Error("preview touched the filesystem")
	}
	if len(transcoder.calls) != 0 {
		t.Error("preview ran transcodes")
	}
}

// gatedTranscoder blocks every transcode until release is closed, so a test
// can cancel the run while work is in flight.
type gatedTranscoder struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedTranscoder) Transcode(ctx context.Context, asset domain.ImageAsset, outDir string) (domain.OutputPair, error) {
	select {
	case <-ctx.Done():
		return domain.OutputPair{}, ctx.Err()
	default:
	}
	g.started <- struct{}{}
	<-g.release
	return domain.OutputPair{Primary: filepath.Join(outDir, asset.Name)}, nil
}

func TestRunReturnsAfterCancellation(t *testing.T) {
	src := blogSource()
	dir := testPaths.ImageDir(src)

	fsys := newMockFS()
	fsys.files[dir] = []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.png"),
	}

	transcoder := &gatedTranscoder{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	pipeline := &Pipeline{FS: fsys, Transcoder: transcoder, Workers: 1}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := pipeline.Run(ctx, testPaths, []domain.SourceConfig{src}, "development")
		errCh <- err
	}()

	// Cancel while the first file is mid-transcode; the remaining jobs are
	// never submitted and the joint wait must still settle.
	<-transcoder.started
	cancel()
	close(transcoder.release)

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunRequiresPorts(t *testing.T) {
	pipeline := &Pipeline{}
	if _, err := pipeline.Run(context.Background(), testPaths, nil, "development"); err == nil {
		t.Fatal("expected error when ports are missing")
	}
}
