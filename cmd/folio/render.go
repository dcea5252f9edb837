package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/site"
)

// RenderCmd renders a single page.
type RenderCmd struct {
	Page string `arg:"" optional:"" default:"index.html" help:"Page template name."`
	Post string `name:"post" short:"p" help:"Post slug for post.html."`
	Out  string `name:"out" short:"o" help:"Write to this file instead of stdout."`
}

func (c *RenderCmd) Run(env *Env) error {
	rec := metrics.NoopRecorder{}

	client, err := newClient(env.Config, rec)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(env.Config, client, listing.QueryLink, rec, env.Logger)
	if err != nil {
		return err
	}

	query := url.Values{}
	if c.Post != "" {
		query.Set(site.PostQueryParam, c.Post)
	}

	body, err := pipeline.Render(env.Ctx, c.Page, query)
	if err != nil {
		return err
	}

	if c.Out == "" {
		_, err = os.Stdout.Write(body)
		return err
	}

	if err := os.WriteFile(c.Out, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.Out, err)
	}
	return nil
}
