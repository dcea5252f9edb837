package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/alexjbarnes/folio/internal/config"
	"github.com/alexjbarnes/folio/internal/logging"
)

var Version = "dev"

// CLI is the command line. Global flags override the matching
// environment variables.
type CLI struct {
	Content   string           `name:"content" help:"Content origin URL or directory (FOLIO_CONTENT)."`
	PagesDir  string           `name:"pages-dir" help:"Page template directory overriding the built-in theme (FOLIO_PAGES_DIR)."`
	SiteFile  string           `name:"site" help:"Site metadata file (FOLIO_SITE_FILE)."`
	MathMode  string           `name:"math" help:"Math typesetting: mathml, client or none (FOLIO_MATH_MODE)."`
	CodeStyle string           `name:"code-style" help:"Chroma style for code blocks (FOLIO_CODE_STYLE)."`
	LogLevel  string           `name:"log-level" help:"Log level: debug, info, warn or error (LOG_LEVEL)."`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit."`

	Serve  ServeCmd  `cmd:"" help:"Serve the site over HTTP."`
	Render RenderCmd `cmd:"" help:"Render one page to stdout."`
	Export ExportCmd `cmd:"" help:"Export the site as static files."`
}

// Env is shared by every command.
type Env struct {
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// apply copies non-empty flag values over cfg.
func (c *CLI) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Content, c.Content)
	set(&cfg.PagesDir, c.PagesDir)
	set(&cfg.SiteFile, c.SiteFile)
	set(&cfg.MathMode, c.MathMode)
	set(&cfg.CodeStyle, c.CodeStyle)
	set(&cfg.LogLevel, c.LogLevel)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("folio"),
		kong.Description("Render a markdown blog from its published content."),
		kong.Vars{"version": Version},
		kong.UsageOnError(),
	)

	if err := run(kctx, &cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context, cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cli.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return kctx.Run(&Env{Ctx: ctx, Config: cfg, Logger: logger})
}
