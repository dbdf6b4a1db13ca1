// Package compile turns the raw Qualtrics survey export into the
// compiled integer-coded dataset. The column contract lives in
// columns.go; this file applies it and orchestrates a full run
// (short-circuit, download, transform, write).
package compile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"qdc/adapters/osf"
	"qdc/internal/config"
	"qdc/internal/dataset"
)

// ReadOptions returns the parse options for a Qualtrics export:
// physical rows 1 and 3 are survey metadata, and the DOI link is the
// row key.
func ReadOptions() dataset.ReadOptions {
	return dataset.ReadOptions{
		SkipRows:  []int{1, 3},
		KeyColumn: KeySource,
	}
}

// Transform applies the column contract to a raw table. Rows are
// independent; the first unknown category aborts the whole transform
// with row and column context, and no partial result is returned.
func Transform(raw *dataset.Table) (*dataset.Table, error) {
	columns := Columns()

	targets := make([]string, len(columns))
	for i, c := range columns {
		targets[i] = c.Target
	}
	out := dataset.New(KeyTarget, targets)

	for _, row := range raw.Rows {
		normalized := dataset.Row{
			Key:   row.Key,
			Cells: make(map[string]dataset.Cell, len(columns)),
		}
		for _, c := range columns {
			cell, err := c.Remap(row.Get(c.Source))
			if err != nil {
				return nil, fmt.Errorf("row %q: column %q: %w", row.Key, c.Source, err)
			}
			normalized.Cells[c.Target] = cell
		}
		out.Append(normalized)
	}
	return out, nil
}

// Runner executes compile runs against a configuration.
type Runner struct {
	Config config.Config
	Client *osf.Client
	Logger *slog.Logger

	// RawInOutputDir stores the raw download under the output directory
	// instead of the working directory.
	RawInOutputDir bool
	// FetchDocs pulls the supplemental project documents.
	FetchDocs bool
	// Force re-downloads the raw dataset and rebuilds the compiled
	// output even when they already exist.
	Force bool
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run performs one end-to-end compile. When the compiled output already
// exists (and Force is off) it does no work at all, treating the
// existing file as a completed, immutable result.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.Config

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	compiled := cfg.CompiledDataPath()
	if !r.Force {
		if _, err := os.Stat(compiled); err == nil {
			r.logger().Info("compiled file already exists, exiting early", "path", compiled)
			return nil
		}
	}

	rawPath, err := r.fetchRaw(ctx)
	if err != nil {
		return err
	}

	raw, err := dataset.ReadFile(rawPath, ReadOptions())
	if err != nil {
		return err
	}
	r.logger().Debug("raw dataset loaded", "rows", len(raw.Rows), "columns", len(raw.Columns))

	out, err := Transform(raw)
	if err != nil {
		return err
	}

	if r.FetchDocs {
		if err := r.fetchDocs(ctx); err != nil {
			return err
		}
	}

	if err := out.WriteFile(compiled); err != nil {
		return err
	}
	r.logger().Info("compiled dataset written", "path", compiled, "rows", len(out.Rows))
	return nil
}

// Fetch downloads the raw dataset (and supplemental docs when enabled)
// without compiling anything.
func (r *Runner) Fetch(ctx context.Context) error {
	if err := os.MkdirAll(r.Config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if _, err := r.fetchRaw(ctx); err != nil {
		return err
	}
	if r.FetchDocs {
		return r.fetchDocs(ctx)
	}
	return nil
}

func (r *Runner) fetchRaw(ctx context.Context) (string, error) {
	cfg := r.Config
	rawPath := cfg.RawDataPath(r.RawInOutputDir)

	if r.Force {
		if err := r.Client.Download(ctx, cfg.DatasetURL, rawPath, cfg.RawDataName); err != nil {
			return "", err
		}
		return rawPath, nil
	}
	if _, err := r.Client.DownloadIfAbsent(ctx, cfg.DatasetURL, rawPath, cfg.RawDataName); err != nil {
		return "", err
	}
	return rawPath, nil
}

// fetchDocs pulls the supplemental documents. They are independent
// files, so the downloads run concurrently; any failure aborts the run.
func (r *Runner) fetchDocs(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, doc := range r.Config.Docs {
		doc := doc // per-iteration copy; module builds with a pre-1.22 go directive
		g.Go(func() error {
			_, err := r.Client.DownloadIfAbsent(ctx, doc.URL, r.Config.DocPath(doc), doc.Name)
			return err
		})
	}
	return g.Wait()
}
