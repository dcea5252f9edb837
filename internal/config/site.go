package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// NavLink is one entry of the site navigation.
type NavLink struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Site is the metadata the page templates render: header, navigation
// and footer.
type Site struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Author      string    `yaml:"author"`
	Nav         []NavLink `yaml:"nav"`
}

// DefaultSite is used when no site file exists.
func DefaultSite() *Site {
	return &Site{
		Title: "Blog",
		Nav: []NavLink{
			{Label: "Home", Href: "index.html"},
			{Label: "Writings", Href: "writings.html"},
			{Label: "Reading", Href: "reading.html"},
		},
	}
}

// LoadSite reads a site file. Environment variables in the file are
// expanded. A missing file returns DefaultSite.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSite(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading site file: %w", err)
	}

	site := DefaultSite()
	site.Nav = nil
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), site); err != nil {
		return nil, fmt.Errorf("parsing site file %s: %w", path, err)
	}

	if len(site.Nav) == 0 {
		site.Nav = DefaultSite().Nav
	}

	for i, link := range site.Nav {
		if link.Label == "" || link.Href == "" {
			return nil, fmt.Errorf("site file %s: nav entry %d needs a label and an href", path, i+1)
		}
	}

	return site, nil
}
