package site

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

// frontMatter holds the keys the stand-in engine understands. Unknown keys
// are ignored.
type frontMatter struct {
	Title  string `yaml:"title"`
	Weight int    `yaml:"weight"`
	Draft  bool   `yaml:"draft"`
}

// splitFrontMatter separates `---` delimited YAML from the markdown body.
// Content without an opening delimiter is all body.
func splitFrontMatter(content []byte) (frontMatter, []byte, error) {
	var fm frontMatter
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, content, nil
	}
	rest := content[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return fm, rest[len("---\n"):], nil
	}
	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			idx = len(rest) - len("\n---")
		} else {
			return fm, nil, errors.ParseError("front matter closing delimiter is missing").Build()
		}
	}
	raw := rest[:idx]
	body := rest[min(len(rest), idx+len("\n---\n")):]
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return fm, nil, errors.WrapError(err, errors.CategoryParse, "invalid front matter").Build()
	}
	return fm, body, nil
}

var h1Pattern = regexp.MustCompile(`(?m)^# (.+)$`)

// firstHeading returns the text of the first ATX level-one heading when no
// text precedes it.
func firstHeading(body []byte) string {
	m := h1Pattern.FindSubmatchIndex(body)
	if m == nil {
		return ""
	}
	if strings.TrimSpace(string(body[:m[0]])) != "" {
		return ""
	}
	return strings.TrimSpace(string(body[m[2]:m[3]]))
}
