package search

import (
	"fmt"
	"math"
	"sort"
)

// Field names of an indexed page.
const (
	FieldTitle    = "title"
	FieldHeadings = "headings"
	FieldBody     = "body"
)

// IndexVersion is written into every serialized index.
const IndexVersion = 1

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// Entry is one page as it is indexed.
type Entry struct {
	ID       int
	Title    string
	Headings string
	Body     string
	URL      string
}

func (e Entry) field(name string) string {
	switch name {
	case FieldTitle:
		return e.Title
	case FieldHeadings:
		return e.Headings
	case FieldBody:
		return e.Body
	}
	return ""
}

// Field is an indexed field and its relevance multiplier.
type Field struct {
	Name  string  `json:"name"`
	Boost float64 `json:"boost"`
}

// fieldFreq maps field name to term frequency.
type fieldFreq map[string]int

// Index is an in-memory inverted index with per-field term frequencies.
// It is built by a single writer and is not safe for concurrent mutation.
type Index struct {
	fields      []Field
	terms       map[string]map[int]fieldFreq
	fieldLength map[int]map[string]int
	fieldTotal  map[string]int
}

// Hit is a scored document id.
type Hit struct {
	ID    int
	Score float64
}

// NewIndex returns an empty index over fields.
func NewIndex(fields []Field) *Index {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Index{
		fields:      fs,
		terms:       make(map[string]map[int]fieldFreq),
		fieldLength: make(map[int]map[string]int),
		fieldTotal:  make(map[string]int),
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.fieldLength) }

// Fields returns the indexed fields in scoring order.
func (ix *Index) Fields() []Field {
	out := make([]Field, len(ix.fields))
	copy(out, ix.fields)
	return out
}

// Add indexes e under e.ID.
func (ix *Index) Add(e Entry) error {
	if _, dup := ix.fieldLength[e.ID]; dup {
		return fmt.Errorf("document %d already indexed", e.ID)
	}
	lengths := make(map[string]int, len(ix.fields))
	for _, f := range ix.fields {
		tokens := Tokenize(e.field(f.Name))
		lengths[f.Name] = len(tokens)
		ix.fieldTotal[f.Name] += len(tokens)
		for _, term := range tokens {
			postings, ok := ix.terms[term]
			if !ok {
				postings = make(map[int]fieldFreq)
				ix.terms[term] = postings
			}
			ff, ok := postings[e.ID]
			if !ok {
				ff = make(fieldFreq, 1)
				postings[e.ID] = ff
			}
			ff[f.Name]++
		}
	}
	ix.fieldLength[e.ID] = lengths
	return nil
}

func (ix *Index) avgFieldLength(field string) float64 {
	n := ix.Len()
	if n == 0 {
		return 0
	}
	return float64(ix.fieldTotal[field]) / float64(n)
}

// Search scores every document containing at least one query term. The
// score is the sum over terms and fields of BM25 times the field boost.
// Results are ordered by score descending, then id ascending. A limit of
// zero or less returns all hits.
func (ix *Index) Search(query string, limit int) []Hit {
	n := ix.Len()
	scores := make(map[int]float64)
	for _, term := range uniqueTerms(query) {
		postings := ix.terms[term]
		if len(postings) == 0 {
			continue
		}
		w := idf(n, len(postings))
		for id, ff := range postings {
			for _, f := range ix.fields {
				tf := ff[f.Name]
				if tf == 0 {
					continue
				}
				norm := tfNorm(float64(tf), float64(ix.fieldLength[id][f.Name]), ix.avgFieldLength(f.Name))
				scores[id] += w * norm * f.Boost
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, s := range scores {
		hits = append(hits, Hit{ID: id, Score: math.Round(s*10000) / 10000})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// idf is the BM25 inverse document frequency with the +1 inside the log,
// which keeps it positive even when every document holds the term.
func idf(totalDocs, docFreq int) float64 {
	return math.Log(1 + (float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5))
}

func tfNorm(tf, fieldLen, avgFieldLen float64) float64 {
	if avgFieldLen == 0 {
		return 0
	}
	return tf * (k1 + 1) / (tf + k1*(1-b+b*fieldLen/avgFieldLen))
}

// SerializedIndex is the JSON form of an Index.
type SerializedIndex struct {
	Version        int                               `json:"version"`
	Fields         []Field                           `json:"fields"`
	DocCount       int                               `json:"docCount"`
	AvgFieldLength map[string]float64                `json:"avgFieldLength"`
	FieldLength    map[int]map[string]int            `json:"fieldLength"`
	Terms          map[string]map[int]map[string]int `json:"terms"`
}

// Serialize returns the JSON form of ix. Map keys are sorted by
// encoding/json, so equal indexes serialize to identical bytes.
func (ix *Index) Serialize() *SerializedIndex {
	s := &SerializedIndex{
		Version:        IndexVersion,
		Fields:         ix.Fields(),
		DocCount:       ix.Len(),
		AvgFieldLength: make(map[string]float64, len(ix.fields)),
		FieldLength:    make(map[int]map[string]int, len(ix.fieldLength)),
		Terms:          make(map[string]map[int]map[string]int, len(ix.terms)),
	}
	for _, f := range ix.fields {
		s.AvgFieldLength[f.Name] = ix.avgFieldLength(f.Name)
	}
	for id, lengths := range ix.fieldLength {
		s.FieldLength[id] = lengths
	}
	for term, postings := range ix.terms {
		out := make(map[int]map[string]int, len(postings))
		for id, ff := range postings {
			out[id] = ff
		}
		s.Terms[term] = out
	}
	return s
}

// FromSerialized rebuilds an Index from its JSON form.
func FromSerialized(s *SerializedIndex) (*Index, error) {
	if s == nil {
		return nil, fmt.Errorf("missing serialized index")
	}
	if s.Version != IndexVersion {
		return nil, fmt.Errorf("unsupported index version %d (want %d)", s.Version, IndexVersion)
	}
	ix := NewIndex(s.Fields)
	for id, lengths := range s.FieldLength {
		ix.fieldLength[id] = lengths
		for field, n := range lengths {
			ix.fieldTotal[field] += n
		}
	}
	for term, postings := range s.Terms {
		m := make(map[int]fieldFreq, len(postings))
		for id, ff := range postings {
			if _, ok := ix.fieldLength[id]; !ok {
				return nil, fmt.Errorf("term %q references unknown document %d", term, id)
			}
			m[id] = ff
		}
		ix.terms[term] = m
	}
	if len(ix.fieldLength) != s.DocCount {
		return nil, fmt.Errorf("docCount %d does not match %d documents", s.DocCount, len(ix.fieldLength))
	}
	return ix, nil
}
