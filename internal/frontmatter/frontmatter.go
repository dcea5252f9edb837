// Package frontmatter parses the metadata block at the top of a post.
//
// The format is deliberately small: a block delimited by "---" holding
// "key: value" lines, where a value is a plain string, a double-quoted
// string, or a bracketed comma-separated list. Nothing is type-coerced
// and nothing ever fails: text without a block is returned as content.
package frontmatter

import (
	"regexp"
	"strings"
)

// blockPattern matches a leading "---" block from offset 0. The interior
// is matched lazily, so the block ends at the first "---" after it.
var blockPattern = regexp.MustCompile(`\A---\s*((?s).*?)\s*---`)

// Frontmatter maps keys to either a string or a []string.
type Frontmatter map[string]any

// Document is a post split into its metadata and body.
type Document struct {
	Frontmatter Frontmatter
	Content     string
}

// String returns the value for key when it is a string, or "".
func (f Frontmatter) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// List returns the value for key when it is a list. The bool is false
// for missing keys and for scalar values.
func (f Frontmatter) List(key string) ([]string, bool) {
	l, ok := f[key].([]string)
	return l, ok
}

// Parse splits raw into frontmatter and content. Malformed or absent
// frontmatter yields an empty map and raw as the content.
func Parse(raw string) Document {
	loc := blockPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Document{Frontmatter: Frontmatter{}, Content: raw}
	}

	block := raw[loc[2]:loc[3]]
	fm := Frontmatter{}

	for _, line := range strings.Split(block, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		fm[key] = parseValue(strings.TrimSpace(line[idx+1:]))
	}

	return Document{
		Frontmatter: fm,
		Content:     strings.TrimSpace(raw[loc[1]:]),
	}
}

func parseValue(value string) any {
	if isWrapped(value, '"', '"') {
		return unwrap(value)
	}

	if isWrapped(value, '[', ']') {
		// Commas inside quoted elements are not protected: ["a,b"] splits.
		parts := strings.Split(unwrap(value), ",")
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if isWrapped(part, '"', '"') {
				part = unwrap(part)
			}
			items = append(items, part)
		}
		return items
	}

	return value
}

// isWrapped reports whether s starts with open and ends with closing. A
// lone quote character counts as wrapped, so it unwraps to "".
func isWrapped(s string, open, closing byte) bool {
	return len(s) > 0 && s[0] == open && s[len(s)-1] == closing
}

func unwrap(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}
