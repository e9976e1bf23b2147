package app

import (
	"context"
	"errors"
	"runtime"

	"assetbake/internal/domain"
	appErrors "assetbake/internal/errors"
	"assetbake/internal/logging"
)

type Phase int

const (
	PhaseCopy Phase = iota
	PhaseTranscode
	PhasePublish
	PhaseDone
)

// Progress describes one pipeline step for a progress consumer (TUI or
// printer). Purely observational.
type Progress struct {
	Phase   Phase
	Source  string
	Current int
	Total   int
	File    string
}

type ProgressFunc func(Progress)

// SourcePreview is a dry-run view of what one source would produce.
type SourcePreview struct {
	Source domain.SourceConfig
	Assets []domain.ImageAsset
}

// Pipeline runs the asset build: static copy, per-source image transcoding,
// and the conditional production publish, strictly in that order.
type Pipeline struct {
	FS         FileSystem
	Transcoder Transcoder
	Logger     logging.Logger
	Workers    int
	OnProgress ProgressFunc
}

// Run executes the full pipeline. The returned error covers fatal stage
// failures (unreadable sources, unwritable output); per-file transcode
// failures are collected in the report instead, so every file is attempted.
func (p *Pipeline) Run(ctx context.Context, paths domain.PathSettings, sources []domain.SourceConfig, mode string) (domain.BuildReport, error) {
	if p.FS == nil || p.Transcoder == nil {
		return domain.BuildReport{}, errors.New("pipeline requires FS and Transcoder")
	}

	stop := p.Logger.Measure("Asset build")
	defer stop()

	if err := p.copyStatic(paths); err != nil {
		return domain.BuildReport{}, err
	}

	var report domain.BuildReport
	for _, src := range sources {
		if !src.HasImages() {
			continue
		}
		result, err := p.processSource(ctx, paths, src)
		if err != nil {
			return report, err
		}
		report.Sources = append(report.Sources, result)
		p.Logger.Successf("processed %d images for %s (%d failed)",
			len(result.Pairs), src.DirName, len(result.Failures))
	}

	if mode == domain.ProductionMode {
		if err := p.publish(paths); err != nil {
			return report, err
		}
		report.Published = true
	}

	p.progress(Progress{Phase: PhaseDone})
	return report, nil
}

// Preview discovers without writing anything: the dry-run view.
func (p *Pipeline) Preview(ctx context.Context, paths domain.PathSettings, sources []domain.SourceConfig) ([]SourcePreview, error) {
	var previews []SourcePreview
	for _, src := range sources {
		if !src.HasImages() {
			continue
		}
		assets, err := Discover(p.FS, paths, src)
		if err != nil {
			return nil, err
		}
		previews = append(previews, SourcePreview{Source: src, Assets: assets})
	}
	return previews, nil
}

// copyStatic guarantees the staging directory exists and seeds it with the
// raw asset trees. Content assets are copied second so they win collisions.
func (p *Pipeline) copyStatic(paths domain.PathSettings) error {
	p.progress(Progress{Phase: PhaseCopy})
	p.Logger.Infof("copying static assets to %s", paths.AssetPath)

	if err := p.FS.MkdirAll(paths.AssetPath, 0o755); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "mkdir", paths.AssetPath, err)
	}
	if err := p.FS.CopyDir(paths.RawAssetPath, paths.AssetPath); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "copy assets", paths.RawAssetPath, err)
	}
	if err := p.FS.CopyDir(paths.RawContentAssetPath, paths.AssetPath); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "copy content assets", paths.RawContentAssetPath, err)
	}

	p.Logger.Successf("static assets copied")
	return nil
}

// processSource discovers one source's images and transcodes them on a
// bounded worker pool. All files are attempted; failures are aggregated with
// their causes rather than aborting siblings.
func (p *Pipeline) processSource(ctx context.Context, paths domain.PathSettings, src domain.SourceConfig) (domain.SourceResult, error) {
	result := domain.SourceResult{Source: src}

	outDir := paths.OutputDir(src)
	if err := p.FS.MkdirAll(outDir, 0o755); err != nil {
		return result, appErrors.Wrap(appErrors.IOFailure, "mkdir", outDir, err)
	}

	assets, err := Discover(p.FS, paths, src)
	if err != nil {
		return result, err
	}
	p.Logger.Verbosef("found %d images for %s", len(assets), src.DirName)
	if len(assets) == 0 {
		return result, nil
	}

	workerCount := p.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > len(assets) {
		workerCount = len(assets)
	}

	type outcome struct {
		asset domain.ImageAsset
		pair  domain.OutputPair
		err   error
	}

	jobs := make(chan domain.ImageAsset)
	results := make(chan outcome)

	for i := 0; i < workerCount; i++ {
		go func() {
			for asset := range jobs {
				pair, err := p.Transcoder.Transcode(ctx, asset, outDir)
				results <- outcome{asset: asset, pair: pair, err: err}
			}
		}()
	}

	// The feeder reports how many jobs it actually submitted: on
	// cancellation the collector must wait for exactly the in-flight
	// results, no more, or the joint wait blocks forever.
	submitted := make(chan int, 1)
	go func() {
		defer close(jobs)
		for i, asset := range assets {
			select {
			case <-ctx.Done():
				submitted <- i
				return
			case jobs <- asset:
			}
		}
		submitted <- len(assets)
	}()

	done := 0
	expected := len(assets)
	for done < expected {
		select {
		case n := <-submitted:
			expected = n
		case res := <-results:
			done++
			p.progress(Progress{
				Phase:   PhaseTranscode,
				Source:  src.DirName,
				Current: done,
				Total:   len(assets),
				File:    res.asset.Name,
			})
			if res.err != nil {
				if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
					continue
				}
				p.Logger.Errorf("%s: %v", res.asset.Name, res.err)
				result.Failures = append(result.Failures, domain.FileFailure{Path: res.asset.Path, Err: res.err})
				continue
			}
			result.Pairs = append(result.Pairs, res.pair)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// publish mirrors the staging directory into the static publish directory.
func (p *Pipeline) publish(paths domain.PathSettings) error {
	p.progress(Progress{Phase: PhasePublish})
	if paths.PublishPath == "" {
		return appErrors.Wrap(appErrors.InvalidConfig, "publish", "", errors.New("staticPublish is not configured"))
	}
	p.Logger.Infof("publishing to %s", paths.PublishPath)

	if err := p.FS.MkdirAll(paths.PublishPath, 0o755); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "mkdir", paths.PublishPath, err)
	}
	if err := p.FS.CopyDir(paths.AssetPath, paths.PublishPath); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "publish", paths.PublishPath, err)
	}

	p.Logger.Successf("published")
	return nil
}

func (p *Pipeline) progress(event Progress) {
	if p.OnProgress != nil {
		p.OnProgress(event)
	}
}
