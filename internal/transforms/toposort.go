package transforms

import (
	"fmt"
	"sort"
	"strings"
)

// Edge is one declared ordering constraint: From runs before To. Field names
// the Dependencies list of DeclaredBy that carries it.
type Edge struct {
	From       string
	To         string
	DeclaredBy string
	Field      string
}

func (e Edge) String() string {
	if e.Field == "MustRunBefore" {
		return fmt.Sprintf("%s MustRunBefore %s", e.From, e.To)
	}
	return fmt.Sprintf("%s MustRunAfter %s", e.To, e.From)
}

// CycleError names the transforms of one stage that could not be ordered and
// the declared edges between them.
type CycleError struct {
	Transforms []string
	Edges      []Edge
}

func (e *CycleError) Error() string {
	edges := make([]string, len(e.Edges))
	for i, ed := range e.Edges {
		edges[i] = ed.String()
	}
	return fmt.Sprintf("circular dependency detected involving transforms: %v (declared: %s)",
		e.Transforms, strings.Join(edges, ", "))
}

// topologicalSort orders the transforms of one stage using Kahn's algorithm.
// Edges to transforms outside the slice are ignored here; Validate checks them.
// When no order exists the result is a *CycleError listing the edges that
// could not be satisfied.
func topologicalSort(transforms []Transformer) ([]Transformer, error) {
	if len(transforms) == 0 {
		return []Transformer{}, nil
	}

	byName := make(map[string]Transformer, len(transforms))
	for _, t := range transforms {
		name := t.Name()
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate transformer name: %q", name)
		}
		byName[name] = t
	}

	graph := make(map[string][]string, len(transforms))
	inDegree := make(map[string]int, len(transforms))
	for _, t := range transforms {
		graph[t.Name()] = nil
		inDegree[t.Name()] = 0
	}

	edges := stageEdges(transforms, byName)
	for _, e := range edges {
		graph[e.From] = append(graph[e.From], e.To)
		inDegree[e.To]++
	}

	var queue []string
	for _, t := range transforms {
		if inDegree[t.Name()] == 0 {
			queue = append(queue, t.Name())
		}
	}
	// Ties break by name so the order is deterministic.
	sort.Strings(queue)

	result := make([]Transformer, 0, len(transforms))
	visited := make(map[string]bool, len(transforms))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, byName[current])

		neighbors := graph[current]
		sort.Strings(neighbors)
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(transforms) {
		cycle := &CycleError{}
		for _, t := range transforms {
			if !visited[t.Name()] {
				cycle.Transforms = append(cycle.Transforms, t.Name())
			}
		}
		sort.Strings(cycle.Transforms)
		for _, e := range edges {
			if !visited[e.From] && !visited[e.To] {
				cycle.Edges = append(cycle.Edges, e)
			}
		}
		return nil, cycle
	}

	return result, nil
}

// stageEdges collects the declared edges whose ends are both in byName, in
// declaration order. Edges leaving the stage are ignored here.
func stageEdges(transforms []Transformer, byName map[string]Transformer) []Edge {
	var edges []Edge
	for _, t := range transforms {
		name := t.Name()
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			if _, ok := byName[dep]; ok {
				edges = append(edges, Edge{From: dep, To: name, DeclaredBy: name, Field: "MustRunAfter"})
			}
		}
		for _, after := range deps.MustRunBefore {
			if _, ok := byName[after]; ok {
				edges = append(edges, Edge{From: name, To: after, DeclaredBy: name, Field: "MustRunBefore"})
			}
		}
	}
	return edges
}

// order groups transforms by stage and sorts each stage by its dependencies.
func order(transforms []Transformer) ([]Transformer, error) {
	byStage := make(map[Stage][]Transformer)
	for _, t := range transforms {
		if !IsValidStage(t.Stage()) {
			return nil, fmt.Errorf("transform %q has invalid stage: %q", t.Name(), t.Stage())
		}
		byStage[t.Stage()] = append(byStage[t.Stage()], t)
	}

	result := make([]Transformer, 0, len(transforms))
	for _, stage := range StageOrder {
		sorted, err := topologicalSort(byStage[stage])
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		result = append(result, sorted...)
	}
	return result, nil
}
