package main

import (
	"fmt"
	"log/slog"

	"github.com/alexjbarnes/folio/internal/config"
	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/site"
	"github.com/alexjbarnes/folio/internal/theme"
)

// newClient builds the content client for cfg.
func newClient(cfg *config.Config, rec metrics.Recorder) (*content.Client, error) {
	client, err := content.NewClient(cfg.Content,
		content.WithCacheBust(cfg.CacheBust),
		content.WithRecorder(rec),
	)
	if err != nil {
		return nil, fmt.Errorf("creating content client: %w", err)
	}
	return client, nil
}

// newPipeline loads the site metadata and templates and wires the page
// pipeline over src.
func newPipeline(cfg *config.Config, src content.Source, link listing.LinkFunc, rec metrics.Recorder, logger *slog.Logger) (*site.Pipeline, error) {
	meta, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		return nil, err
	}

	tmpl, err := theme.Templates(cfg.PagesDir)
	if err != nil {
		return nil, err
	}

	return site.New(site.Options{
		Source:      src,
		Site:        meta,
		Templates:   tmpl,
		CodeStyle:   cfg.CodeStyle,
		MathMode:    cfg.MathMode,
		LongDates:   cfg.LongDates,
		SortPosts:   cfg.SortPosts,
		LatestLimit: cfg.LatestLimit,
		Link:        link,
		Recorder:    rec,
		Logger:      logger,
	})
}
