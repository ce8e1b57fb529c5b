// Package parser parses OpenSpec markdown documents: spec deltas
// (ADDED/MODIFIED/REMOVED requirement sections) and canonical capability
// specs. Parsing is pure and deterministic; the same input always yields
// the same structured output or the same ParseError.
package parser

import (
	"regexp"
	"strings"
)

// Delta operation names.
const (
	OpAdded    = "ADDED"
	OpModified = "MODIFIED"
	OpRemoved  = "REMOVED"
)

// StepKind identifies a scenario step.
type StepKind string

// Scenario step kinds. And lines inherit the kind of the preceding
// distinct step and are recorded under that kind.
const (
	StepGiven StepKind = "Given"
	StepWhen  StepKind = "When"
	StepThen  StepKind = "Then"
)

// Regex patterns for the OpenSpec grammar.
var (
	deltaSectionPattern = regexp.MustCompile(`^##\s+(ADDED|MODIFIED|REMOVED)\s+Requirements\s*$`)
	reqHeaderPattern    = regexp.MustCompile(`^###\s+Requirement:\s+(.+)$`)
	scenarioPattern     = regexp.MustCompile(`^####\s+Scenario:\s+(.+)$`)
	stepPattern         = regexp.MustCompile(`^(?:[-*]\s+)?\*\*(Given|When|Then|And)\*\*\s+(.+)$`)
	normativePattern    = regexp.MustCompile(`(?:SHALL|MUST)(?:\s+NOT)?\s+[^.]+\.`)
	headingPattern      = regexp.MustCompile(`^#{1,4}\s+`)
)

// Step is a single Given/When/Then line within a scenario.
type Step struct {
	// Kind is the effective step kind. And lines carry the kind they inherit.
	Kind StepKind `json:"kind"`

	// And marks a step written as **And** rather than its effective kind.
	And bool `json:"and,omitempty"`

	// Text is the step text after the bold marker.
	Text string `json:"text"`
}

// Scenario is a BDD example under a requirement.
type Scenario struct {
	// Title is the text after "#### Scenario:".
	Title string `json:"title"`

	// Steps are the ordered step lines.
	Steps []Step `json:"steps"`
}

// Requirement is a testable behavioral statement with at least one scenario.
type Requirement struct {
	// Title is the text after "### Requirement:".
	Title string `json:"title"`

	// Body is the prose between the header and the first scenario.
	Body string `json:"body"`

	// Normatives are SHALL/MUST statements extracted from the body.
	Normatives []string `json:"normatives,omitempty"`

	// Scenarios are the ordered scenario blocks. Always non-empty after a
	// successful parse.
	Scenarios []Scenario `json:"scenarios"`
}

// SpecDelta is the parsed form of one change's delta against one capability.
type SpecDelta struct {
	// File is the source file path, when known.
	File string `json:"file,omitempty"`

	// Frontmatter holds any YAML frontmatter from the document.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`

	// Added, Modified and Removed preserve the document's internal ordering.
	// Titles are unique within each operation.
	Added    []Requirement `json:"added,omitempty"`
	Modified []Requirement `json:"modified,omitempty"`
	Removed  []Requirement `json:"removed,omitempty"`
}

// IsEmpty reports whether the delta contains no operations.
func (d *SpecDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// Requirements returns the requirements under the named operation.
func (d *SpecDelta) Requirements(op string) []Requirement {
	switch op {
	case OpAdded:
		return d.Added
	case OpModified:
		return d.Modified
	case OpRemoved:
		return d.Removed
	default:
		return nil
	}
}

// ParseDelta parses a spec-delta document. The returned error, if any,
// is always a *ParseError.
func ParseDelta(file string, content []byte) (*SpecDelta, error) {
	frontmatter, body, offset := extractFrontmatter(string(content))

	delta := &SpecDelta{
		File:        file,
		Frontmatter: frontmatter,
	}

	lines := strings.Split(body, "\n")

	var (
		currentOp string
		seen      = map[string]map[string]bool{
			OpAdded:    {},
			OpModified: {},
			OpRemoved:  {},
		}
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		lineNum := offset + i + 1

		if m := deltaSectionPattern.FindStringSubmatch(line); m != nil {
			currentOp = m[1]
			i++
			continue
		}

		// Any other h2 heading closes the current delta section.
		if strings.HasPrefix(line, "## ") {
			currentOp = ""
			i++
			continue
		}

		if m := reqHeaderPattern.FindStringSubmatch(line); m != nil {
			title := strings.TrimSpace(m[1])

			if currentOp == "" {
				return nil, &ParseError{
					Kind:   ErrMissingSectionHeader,
					File:   file,
					Line:   lineNum,
					Detail: title,
				}
			}
			if seen[currentOp][title] {
				return nil, &ParseError{
					Kind:   ErrDuplicateRequirementTitle,
					File:   file,
					Line:   lineNum,
					Detail: title,
				}
			}
			seen[currentOp][title] = true

			req, next, err := parseRequirement(file, lines, i, offset)
			if err != nil {
				return nil, err
			}

			switch currentOp {
			case OpAdded:
				delta.Added = append(delta.Added, *req)
			case OpModified:
				delta.Modified = append(delta.Modified, *req)
			case OpRemoved:
				delta.Removed = append(delta.Removed, *req)
			}

			i = next
			continue
		}

		i++
	}

	return delta, nil
}

// parseRequirement parses a requirement block starting at lines[start],
// which must be a "### Requirement:" header. It returns the requirement
// and the index of the first line after the block.
func parseRequirement(file string, lines []string, start, offset int) (*Requirement, int, error) {
	m := reqHeaderPattern.FindStringSubmatch(lines[start])
	title := strings.TrimSpace(m[1])

	reqLine := offset + start + 1
	req := &Requirement{
		Title: title,
	}

	var bodyLines []string
	i := start + 1

	// Body runs until the first scenario or the next header.
	for i < len(lines) {
		line := lines[i]
		if scenarioPattern.MatchString(line) || reqHeaderPattern.MatchString(line) || deltaSectionPattern.MatchString(line) || isTerminatingHeading(line) {
			break
		}
		bodyLines = append(bodyLines, line)
		i++
	}
	req.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	req.Normatives = extractNormatives(req.Body)

	// Scenario blocks.
	for i < len(lines) {
		sm := scenarioPattern.FindStringSubmatch(lines[i])
		if sm == nil {
			break
		}
		scenario, next, err := parseScenario(file, lines, i, offset)
		if err != nil {
			return nil, 0, err
		}
		req.Scenarios = append(req.Scenarios, *scenario)
		i = next
	}

	if len(req.Scenarios) == 0 {
		return nil, 0, &ParseError{
			Kind:   ErrRequirementWithoutScenario,
			File:   file,
			Line:   reqLine,
			Detail: title,
		}
	}

	return req, i, nil
}

// parseScenario parses one scenario block starting at lines[start],
// which must be a "#### Scenario:" header.
func parseScenario(file string, lines []string, start, offset int) (*Scenario, int, error) {
	m := scenarioPattern.FindStringSubmatch(lines[start])
	scenarioLine := offset + start + 1
	scenario := &Scenario{
		Title: strings.TrimSpace(m[1]),
	}

	// Phase tracks progress through Given(1) -> When(2) -> Then(3).
	// A step whose kind precedes the current phase is out of order.
	phase := 0
	phases := map[StepKind]int{StepGiven: 1, StepWhen: 2, StepThen: 3}

	i := start + 1
	for i < len(lines) {
		line := lines[i]
		if scenarioPattern.MatchString(line) || reqHeaderPattern.MatchString(line) || deltaSectionPattern.MatchString(line) || isTerminatingHeading(line) {
			break
		}

		if sm := stepPattern.FindStringSubmatch(line); sm != nil {
			lineNum := offset + i + 1
			marker := sm[1]
			text := strings.TrimSpace(sm[2])

			if marker == "And" {
				if len(scenario.Steps) == 0 {
					return nil, 0, &ParseError{
						Kind:   ErrStepsOutOfOrder,
						File:   file,
						Line:   lineNum,
						Detail: scenario.Title,
					}
				}
				prev := scenario.Steps[len(scenario.Steps)-1]
				scenario.Steps = append(scenario.Steps, Step{
					Kind: prev.Kind,
					And:  true,
					Text: text,
				})
				i++
				continue
			}

			kind := StepKind(marker)
			if phases[kind] < phase {
				return nil, 0, &ParseError{
					Kind:   ErrStepsOutOfOrder,
					File:   file,
					Line:   lineNum,
					Detail: scenario.Title,
				}
			}
			phase = phases[kind]
			scenario.Steps = append(scenario.Steps, Step{
				Kind: kind,
				Text: text,
			})
		}

		i++
	}

	// Every scenario needs at least one of each step kind.
	for _, kind := range []StepKind{StepGiven, StepWhen, StepThen} {
		if !scenario.hasKind(kind) {
			return nil, 0, &ParseError{
				Kind:   ErrScenarioMissingStep,
				File:   file,
				Line:   scenarioLine,
				Step:   kind,
				Detail: scenario.Title,
			}
		}
	}

	return scenario, i, nil
}

func (s *Scenario) hasKind(kind StepKind) bool {
	for _, step := range s.Steps {
		if step.Kind == kind && !step.And {
			return true
		}
	}
	return false
}

// isTerminatingHeading reports whether a line is a markdown heading that
// ends the current block without being part of the delta grammar.
func isTerminatingHeading(line string) bool {
	if !headingPattern.MatchString(line) {
		return false
	}
	return !reqHeaderPattern.MatchString(line) &&
		!scenarioPattern.MatchString(line) &&
		!deltaSectionPattern.MatchString(line)
}

// extractNormatives finds SHALL/MUST statements in requirement prose.
func extractNormatives(text string) []string {
	var normatives []string
	for _, m := range normativePattern.FindAllString(text, -1) {
		normatives = append(normatives, strings.TrimSpace(m))
	}
	return normatives
}
