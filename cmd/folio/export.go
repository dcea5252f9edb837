package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alexjbarnes/folio/internal/export"
	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/state"
)

// ExportCmd writes every page as a static file.
type ExportCmd struct {
	Dir         string `name:"dir" short:"d" help:"Output directory (FOLIO_EXPORT_DIR)."`
	DryRun      bool   `name:"dry-run" help:"Report what would change without writing."`
	Diff        bool   `name:"diff" help:"Print a patch for every changed page."`
	NoState     bool   `name:"no-state" help:"Do not track exported pages; disables pruning."`
	Concurrency int    `name:"concurrency" default:"4" help:"Pages rendered in parallel."`
}

func (c *ExportCmd) Run(env *Env) error {
	cfg := env.Config
	dir := c.Dir
	if dir == "" {
		dir = cfg.ExportDir
	}

	rec := metrics.NoopRecorder{}

	client, err := newClient(cfg, rec)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, client, listing.PathLink, rec, env.Logger)
	if err != nil {
		return err
	}

	var st *state.State
	if !c.NoState {
		st, err = state.Load(cfg.StateDir)
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		defer st.Close()
	}

	var diffOut io.Writer
	if c.Diff {
		diffOut = os.Stdout
	}

	exp := &export.Exporter{
		Pipeline:    pipeline,
		Dir:         dir,
		State:       st,
		Origin:      client.Origin(),
		DryRun:      c.DryRun,
		DiffOut:     diffOut,
		Concurrency: c.Concurrency,
		Recorder:    rec,
		Logger:      env.Logger,
	}

	if st != nil {
		logPreviousRun(st, dir, env.Logger)
	}

	res, err := exp.Export(env.Ctx)
	if err != nil {
		return err
	}

	verb := "wrote"
	if c.DryRun {
		verb = "would write"
	}
	fmt.Fprintf(os.Stderr, "%s %d, unchanged %d, removed %d\n", verb, len(res.Written), len(res.Unchanged), len(res.Removed))

	return nil
}

func logPreviousRun(st *state.State, dir string, logger *slog.Logger) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return
	}

	last, err := st.LastRun(abs)
	if err != nil || last == nil {
		return
	}

	logger.Info("previous export",
		slog.Time("time", time.Unix(last.Time, 0)),
		slog.String("origin", last.Origin),
		slog.Int("written", last.Written),
		slog.Int("unchanged", last.Unchanged),
		slog.Int("removed", last.Removed),
	)
}
