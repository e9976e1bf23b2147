package presentation

import (
	"fmt"
	"io"
	"path/filepath"

	"assetbake/internal/app"
	"assetbake/internal/domain"
)

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

// PrintDryRun lists what discovery found without anything being written.
func (p Printer) PrintDryRun(previews []app.SourcePreview) {
	fmt.Fprintln(p.Writer, "Dry run - nothing written")
	fmt.Fprintln(p.Writer)

	total := 0
	for _, preview := range previews {
		fmt.Fprintf(p.Writer, "%s -> %s/\n", preview.Source.DirName, preview.Source.Images.Name)
		for _, asset := range preview.Assets {
			fmt.Fprintf(p.Writer, "  %s\n", asset.Name)
		}
		total += len(preview.Assets)
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "%d images across %d sources\n", total, len(previews))
}

// PrintReport summarizes a finished run. Failures are listed per file,
// distinct from the success summary.
func (p Printer) PrintReport(report domain.BuildReport) {
	for _, src := range report.Sources {
		fmt.Fprintf(p.Writer, "%s: %d processed", src.Source.DirName, len(src.Pairs))
		if len(src.Failures) > 0 {
			fmt.Fprintf(p.Writer, ", %d failed", len(src.Failures))
		}
		fmt.Fprintln(p.Writer)

		if p.Verbose {
			for _, pair := range src.Pairs {
				fmt.Fprintf(p.Writer, "  %s\n", filepath.Base(pair.Primary))
				if pair.Secondary != pair.Primary {
					fmt.Fprintf(p.Writer, "  %s\n", filepath.Base(pair.Secondary))
				}
			}
		}
	}

	failures := report.Failures()
	if len(failures) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Failed files:")
		for _, failure := range failures {
			fmt.Fprintf(p.Writer, "  %s: %v\n", failure.Path, failure.Err)
		}
	}

	fmt.Fprintln(p.Writer)
	if report.Published {
		fmt.Fprintf(p.Writer, "%d images processed, published\n", report.Processed())
	} else {
		fmt.Fprintf(p.Writer, "%d images processed\n", report.Processed())
	}
}
