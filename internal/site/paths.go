package site

import (
	"path"
	"strings"
)

// RenderResult is one rendered page as handed to the post-render pipeline.
// OutputPath is relative to the output directory and uses forward slashes.
type RenderResult struct {
	OutputPath string
	Content    string
}

// OutputPathFor maps a source markdown path to its output path:
// "a/b.md" becomes "a/b/index.html" and "a/index.md" or "a/README.md"
// become "a/index.html".
func OutputPathFor(source string) string {
	p := normalize(source)
	dir, file := path.Split(p)
	name := strings.TrimSuffix(file, path.Ext(file))
	if strings.EqualFold(name, "index") || strings.EqualFold(name, "readme") || strings.EqualFold(name, "_index") {
		return dir + "index.html"
	}
	return dir + name + "/index.html"
}

// URLFor returns the site-relative URL of an output path. "index.html"
// maps to "/", "a/index.html" to "/a/" and anything else keeps its file
// name, so "a/b.html" maps to "/a/b.html".
func URLFor(outputPath string) string {
	p := strings.TrimPrefix(normalize(outputPath), "/")
	switch {
	case p == "index.html" || p == "":
		return "/"
	case strings.HasSuffix(p, "/index.html"):
		return "/" + strings.TrimSuffix(p, "index.html")
	default:
		return "/" + p
	}
}

// FallbackTitle derives a title from an output path when a page has none:
// the base name without extension, or for index.html the name of the
// enclosing directory ("index" at the root).
func FallbackTitle(outputPath string) string {
	p := strings.TrimPrefix(normalize(outputPath), "/")
	dir, file := path.Split(p)
	name := strings.TrimSuffix(file, path.Ext(file))
	if name != "index" {
		return name
	}
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		return "index"
	}
	return path.Base(dir)
}

func normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
