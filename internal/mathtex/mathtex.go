// Package mathtex typesets TeX left in a page by the markdown renderer.
//
// Display math arrives as div.math-block elements holding \[ ... \] and
// inline math as \( ... \) inside ordinary text. MathML converts both on
// the server; ClientScript leaves them for MathJax in the browser.
package mathtex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// Typesetter typesets the math under root in place.
type Typesetter interface {
	Typeset(root *html.Node) error
}

// Mode names accepted by ForMode.
const (
	ModeMathML = "mathml"
	ModeClient = "client"
	ModeNone   = "none"
)

// ForMode returns the typesetter for a configured mode. ModeNone returns
// nil, which callers treat as "skip the math hook".
func ForMode(mode string, logger *slog.Logger) (Typesetter, error) {
	switch strings.ToLower(mode) {
	case "", ModeMathML:
		return &Fallback{Primary: MathML{}, Legacy: ClientScript{}, Logger: logger}, nil
	case ModeClient:
		return ClientScript{}, nil
	case ModeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown math mode %q", mode)
	}
}

// Fallback runs Primary and, when it fails, Legacy.
type Fallback struct {
	Primary Typesetter
	Legacy  Typesetter
	Logger  *slog.Logger
}

func (f *Fallback) Typeset(root *html.Node) error {
	if f.Primary != nil {
		err := f.Primary.Typeset(root)
		if err == nil {
			return nil
		}
		if f.Logger != nil {
			f.Logger.LogAttrs(context.Background(), slog.LevelWarn, "primary math typesetter failed, using legacy",
				slog.String("error", err.Error()))
		}
	}
	if f.Legacy == nil {
		return nil
	}
	return f.Legacy.Typeset(root)
}
