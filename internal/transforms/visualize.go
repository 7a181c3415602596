package transforms

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VisualizationFormat represents the output format for chain visualization.
type VisualizationFormat string

const (
	FormatText    VisualizationFormat = "text"
	FormatMermaid VisualizationFormat = "mermaid"
	FormatDOT     VisualizationFormat = "dot"
	FormatJSON    VisualizationFormat = "json"
)

// SupportedFormats returns the visualization formats in display order.
func SupportedFormats() []VisualizationFormat {
	return []VisualizationFormat{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// Visualize renders an ordered chain. Use Resolve first so the listing shows
// the real execution order.
func Visualize(list []Transformer, format VisualizationFormat) (string, error) {
	switch format {
	case FormatText:
		return visualizeText(list), nil
	case FormatMermaid:
		return visualizeMermaid(list), nil
	case FormatDOT:
		return visualizeDOT(list), nil
	case FormatJSON:
		return visualizeJSON(list)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func groupByStage(list []Transformer) map[Stage][]Transformer {
	byStage := make(map[Stage][]Transformer)
	for _, t := range list {
		byStage[t.Stage()] = append(byStage[t.Stage()], t)
	}
	return byStage
}

func visualizeText(list []Transformer) string {
	var sb strings.Builder
	sb.WriteString("Transform Chain\n")
	sb.WriteString("===============\n\n")

	byStage := groupByStage(list)
	n := 0
	for i, stage := range StageOrder {
		ts := byStage[stage]
		if len(ts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "┌─ Stage %d: %s\n", i+1, stage)
		for j, t := range ts {
			n++
			prefix, connector := "├──", "│   "
			if j == len(ts)-1 {
				prefix, connector = "└──", "    "
			}
			fmt.Fprintf(&sb, "│ %s %d. %s\n", prefix, n, t.Name())
			deps := t.Dependencies()
			if len(deps.MustRunAfter) > 0 {
				fmt.Fprintf(&sb, "│ %s   ⤷ runs after: %s\n", connector, strings.Join(deps.MustRunAfter, ", "))
			}
			if len(deps.MustRunBefore) > 0 {
				fmt.Fprintf(&sb, "│ %s   ⤶ runs before: %s\n", connector, strings.Join(deps.MustRunBefore, ", "))
			}
		}
		sb.WriteString("↓\n")
	}
	fmt.Fprintf(&sb, "\nTotal: %d transforms across %d stages\n", len(list), len(byStage))
	return sb.String()
}

func mermaidID(name string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(name)
}

func visualizeMermaid(list []Transformer) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")
	byStage := groupByStage(list)
	for _, stage := range StageOrder {
		ts := byStage[stage]
		if len(ts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph %s[\"Stage: %s\"]\n", stage, stage)
		for _, t := range ts {
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", mermaidID(t.Name()), t.Name())
		}
		sb.WriteString("    end\n")
	}
	sb.WriteString("\n")
	for _, t := range list {
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(dep), mermaidID(t.Name()))
		}
		for _, after := range deps.MustRunBefore {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(t.Name()), mermaidID(after))
		}
	}
	sb.WriteString("```\n")
	return sb.String()
}

func visualizeDOT(list []Transformer) string {
	var sb strings.Builder
	sb.WriteString("digraph TransformChain {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")
	byStage := groupByStage(list)
	for i, stage := range StageOrder {
		ts := byStage[stage]
		if len(ts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph cluster_%d {\n", i)
		fmt.Fprintf(&sb, "        label=\"Stage: %s\";\n", stage)
		sb.WriteString("        style=filled;\n        color=lightgrey;\n")
		for _, t := range ts {
			fmt.Fprintf(&sb, "        %q;\n", t.Name())
		}
		sb.WriteString("    }\n\n")
	}
	for _, t := range list {
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			fmt.Fprintf(&sb, "    %q -> %q;\n", dep, t.Name())
		}
		for _, after := range deps.MustRunBefore {
			fmt.Fprintf(&sb, "    %q -> %q;\n", t.Name(), after)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

type jsonTransform struct {
	Name          string   `json:"name"`
	Stage         Stage    `json:"stage"`
	Order         int      `json:"order"`
	MustRunAfter  []string `json:"mustRunAfter"`
	MustRunBefore []string `json:"mustRunBefore"`
}

type jsonChain struct {
	Transforms      []jsonTransform `json:"transforms"`
	TotalTransforms int             `json:"totalTransforms"`
	TotalStages     int             `json:"totalStages"`
}

func visualizeJSON(list []Transformer) (string, error) {
	out := jsonChain{Transforms: make([]jsonTransform, 0, len(list)), TotalTransforms: len(list)}
	for i, t := range list {
		deps := t.Dependencies()
		jt := jsonTransform{
			Name:          t.Name(),
			Stage:         t.Stage(),
			Order:         i + 1,
			MustRunAfter:  append([]string{}, deps.MustRunAfter...),
			MustRunBefore: append([]string{}, deps.MustRunBefore...),
		}
		out.Transforms = append(out.Transforms, jt)
	}
	out.TotalStages = len(groupByStage(list))
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
