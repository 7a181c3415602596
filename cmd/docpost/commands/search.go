package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpost/internal/search"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query []string `arg:"" help:"Search terms"`
	Limit int      `short:"n" help:"Maximum number of results (0 for all)" default:"10"`
	JSON  bool     `help:"Print results as JSON"`
	Index string   `help:"Index file (defaults to the configured output location)" type:"path"`
}

func (s *SearchCmd) Run(g *Global, root *CLI) error {
	path := s.Index
	if path == "" {
		cfg, err := root.loadConfig(g)
		if err != nil {
			return err
		}
		path = cfg.SearchSettings().IndexPath()
	}
	a, err := search.LoadArtifact(path)
	if err != nil {
		return err
	}
	results, err := a.Search(strings.Join(s.Query, " "), s.Limit)
	if err != nil {
		return err
	}

	out := g.out()
	if s.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No results")
		return nil
	}
	for i, r := range results {
		_, _ = fmt.Fprintf(out, "%2d. %-30s %-40s %.4f\n", i+1, r.Title, r.URL, r.Score)
	}
	return nil
}
