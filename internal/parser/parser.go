// Package parser turns a Markdown job clipping (YAML frontmatter plus a
// free-form body) into a loosely-typed job record.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	urlRe   = regexp.MustCompile(`https?://[^\s<>()\[\]"']+`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Result holds the output of parsing a clipping.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	URL         string
	Email       string
}

// Parse extracts frontmatter, body, and the first title, link and email
// address from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		URL:         strings.TrimRight(urlRe.FindString(body), ".,;:"),
		Email:       emailRe.FindString(body),
	}, nil
}

// Record builds the raw job object for the clipping. Frontmatter fields
// win; the title, url, poster email and notes are filled from the body
// when the frontmatter lacks them.
func (r *Result) Record() map[string]any {
	raw := make(map[string]any, len(r.Frontmatter)+4)
	for k, v := range r.Frontmatter {
		raw[k] = v
	}
	fill := func(key, value string) {
		if value == "" {
			return
		}
		if cur, ok := raw[key]; ok && cur != nil && cur != "" {
			return
		}
		raw[key] = value
	}
	fill("title", r.Title)
	fill("url", r.URL)
	fill("posterEmail", r.Email)
	fill("notes", strings.TrimSpace(stripTitle(r.Body)))
	return raw
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the whole clipping as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// stripTitle drops a leading H1 heading so it is not repeated in notes.
func stripTitle(body string) string {
	trimmed := strings.TrimLeft(body, "\n\r\t ")
	if !strings.HasPrefix(trimmed, "# ") {
		return body
	}
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[i+1:]
	}
	return ""
}
