package parser

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderDelta serializes a spec delta back to canonical markdown.
// Rendering is the inverse of ParseDelta up to formatting: parsing the
// rendered output yields a delta equal to the input.
func RenderDelta(delta *SpecDelta) string {
	var sb strings.Builder

	renderFrontmatter(&sb, delta.Frontmatter)

	sections := []struct {
		op   string
		reqs []Requirement
	}{
		{OpAdded, delta.Added},
		{OpModified, delta.Modified},
		{OpRemoved, delta.Removed},
	}

	for _, section := range sections {
		if len(section.reqs) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s Requirements\n", section.op)
		for _, req := range section.reqs {
			sb.WriteString("\n")
			renderRequirement(&sb, req)
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// RenderCapability serializes a canonical capability spec to markdown.
func RenderCapability(spec *CapabilitySpec) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n", spec.Title)

	if spec.Purpose != "" {
		sb.WriteString("\n## Purpose\n\n")
		sb.WriteString(spec.Purpose)
		sb.WriteString("\n")
	}

	if len(spec.Requirements) > 0 {
		sb.WriteString("\n## Requirements\n")
		for _, req := range spec.Requirements {
			sb.WriteString("\n")
			renderRequirement(&sb, req)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderRequirement(sb *strings.Builder, req Requirement) {
	fmt.Fprintf(sb, "### Requirement: %s\n", req.Title)
	if req.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(req.Body)
		sb.WriteString("\n")
	}
	for _, scenario := range req.Scenarios {
		sb.WriteString("\n")
		fmt.Fprintf(sb, "#### Scenario: %s\n\n", scenario.Title)
		for _, step := range scenario.Steps {
			marker := string(step.Kind)
			if step.And {
				marker = "And"
			}
			fmt.Fprintf(sb, "- **%s** %s\n", marker, step.Text)
		}
	}
}

// renderFrontmatter emits YAML frontmatter with sorted keys so rendering
// is deterministic.
func renderFrontmatter(sb *strings.Builder, frontmatter map[string]any) {
	if len(frontmatter) == 0 {
		return
	}

	keys := make([]string, 0, len(frontmatter))
	for k := range frontmatter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("---\n")
	for _, k := range keys {
		data, err := yaml.Marshal(map[string]any{k: frontmatter[k]})
		if err != nil {
			continue
		}
		sb.Write(data)
	}
	sb.WriteString("---\n\n")
}
