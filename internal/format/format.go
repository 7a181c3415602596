// Package format post-processes serialized pages. A Formatter is the last
// step of the per-page pipeline and must be a pure function of its input.
package format

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

// Formatter rewrites a serialized page.
type Formatter interface {
	Format(s string) (string, error)
}

// Func adapts a plain function to Formatter.
type Func func(s string) (string, error)

func (f Func) Format(s string) (string, error) { return f(s) }

// Noop returns its input unchanged.
type Noop struct{}

func (Noop) Format(s string) (string, error) { return s, nil }

// Whitespace normalizes line endings to \n, strips trailing whitespace from
// lines outside pre, textarea, script and style elements, collapses runs of
// three or more blank lines into one and ends the output with exactly one
// newline.
type Whitespace struct{}

var preservedTag = regexp.MustCompile(`(?i)<(/?)(pre|textarea|script|style)\b`)

func (Whitespace) Format(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	var st preserveState
	blanks := 0

	for _, line := range lines {
		if err := st.track(line); err != nil {
			return "", err
		}
		// Whitespace at the end of a line that ends inside a preserved
		// element is content.
		if st.closed() {
			line = strings.TrimRight(line, " \t\f\v")
			if line == "" {
				blanks++
				out = append(out, line)
				continue
			}
		}
		out = collapse(out, blanks)
		blanks = 0
		out = append(out, line)
	}
	if !st.closed() {
		return "", errors.FormatError("unterminated preserved block").
			WithContext("tag", st.open()).
			Build()
	}
	out = collapse(out, blanks)

	result := strings.Join(out, "\n")
	return strings.TrimRight(result, "\n") + "\n", nil
}

// preserveState tracks the preserved elements open at the end of a line.
// Script, style and textarea hold raw text: inside them only the matching
// end tag counts, so markup inside string literals is ignored.
type preserveState struct {
	pre int
	raw string
}

func (st *preserveState) closed() bool { return st.pre == 0 && st.raw == "" }

func (st *preserveState) open() string {
	if st.raw != "" {
		return st.raw
	}
	return "pre"
}

func (st *preserveState) track(line string) error {
	for _, m := range preservedTag.FindAllStringSubmatch(line, -1) {
		closing, name := m[1] == "/", strings.ToLower(m[2])
		switch {
		case st.raw != "":
			if closing && name == st.raw {
				st.raw = ""
			}
		case name != "pre":
			if closing {
				return errors.FormatError("unbalanced preserved block").WithContext("tag", m[0]).Build()
			}
			st.raw = name
		case closing:
			if st.pre == 0 {
				return errors.FormatError("unbalanced preserved block").WithContext("tag", m[0]).Build()
			}
			st.pre--
		default:
			st.pre++
		}
	}
	return nil
}

// collapse reduces a trailing run of n blank lines in out to one when n >= 3.
func collapse(out []string, n int) []string {
	if n < 3 {
		return out
	}
	return out[:len(out)-n+1]
}
