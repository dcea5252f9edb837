package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSite_Missing(t *testing.T) {
	site, err := LoadSite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSite(), site)
}

func TestLoadSite_Full(t *testing.T) {
	path := writeSite(t, `
title: Notes
description: Things I wrote down
author: Sam
nav:
  - label: Home
    href: index.html
  - label: About
    href: about.html
`)

	site, err := LoadSite(path)
	require.NoError(t, err)
	assert.Equal(t, "Notes", site.Title)
	assert.Equal(t, "Things I wrote down", site.Description)
	assert.Equal(t, "Sam", site.Author)
	assert.Equal(t, []NavLink{{"Home", "index.html"}, {"About", "about.html"}}, site.Nav)
}

func TestLoadSite_DefaultNav(t *testing.T) {
	site, err := LoadSite(writeSite(t, "title: Notes\n"))
	require.NoError(t, err)
	assert.Equal(t, "Notes", site.Title)
	assert.Equal(t, DefaultSite().Nav, site.Nav)
}

func TestLoadSite_ExpandsEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_AUTHOR", "Robin")

	site, err := LoadSite(writeSite(t, "author: ${FOLIO_TEST_AUTHOR}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Robin", site.Author)
}

func TestLoadSite_InvalidYAML(t *testing.T) {
	_, err := LoadSite(writeSite(t, "title: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing site file")
}

func TestLoadSite_IncompleteNav(t *testing.T) {
	_, err := LoadSite(writeSite(t, "nav:\n  - label: Home\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nav entry 1")
}
