package search

import (
	"encoding/json"
	"os"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

// Ref is what a search hit links to.
type Ref struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Artifact is the persisted search index: the serialized inverted index and
// the id to {title, url} map.
type Artifact struct {
	SearchIndex *SerializedIndex `json:"searchIndex"`
	Map         map[int]Ref      `json:"map"`
}

// Result is a resolved search hit.
type Result struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Marshal encodes the artifact. The output is deterministic.
func (a *Artifact) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// LoadArtifact reads an artifact written by Builder.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read search index").
			WithContext("path", path).
			Build()
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.WrapError(err, errors.CategoryIndex, "decode search index").
			WithContext("path", path).
			Build()
	}
	if a.SearchIndex == nil {
		return nil, errors.IndexError("search index artifact has no searchIndex").
			WithContext("path", path).
			Build()
	}
	return &a, nil
}

// Search queries the artifact's index and resolves hits through its map.
func (a *Artifact) Search(query string, limit int) ([]Result, error) {
	ix, err := FromSerialized(a.SearchIndex)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryIndex, "invalid search index").Build()
	}
	hits := ix.Search(query, limit)
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		ref := a.Map[h.ID]
		out = append(out, Result{ID: h.ID, Title: ref.Title, URL: ref.URL, Score: h.Score})
	}
	return out, nil
}
