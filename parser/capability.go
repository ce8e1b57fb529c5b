package parser

import (
	"regexp"
	"strings"
)

var (
	titlePattern   = regexp.MustCompile(`^#\s+(.+)$`)
	purposePattern = regexp.MustCompile(`^##\s+Purpose\s*$`)
)

// CapabilitySpec is the canonical, merged state of one capability: an
// ordered mapping of requirement title to requirement. It is only ever
// mutated through delta merges.
type CapabilitySpec struct {
	// Name is the capability directory name (e.g. "api-gateway").
	Name string `json:"name"`

	// Title is the document title, defaulting to the capability name.
	Title string `json:"title"`

	// Purpose is the prose under "## Purpose".
	Purpose string `json:"purpose,omitempty"`

	// Requirements preserve document order. Titles are unique.
	Requirements []Requirement `json:"requirements"`
}

// Find returns the index of the requirement with the given title, or -1.
func (c *CapabilitySpec) Find(title string) int {
	for i, req := range c.Requirements {
		if req.Title == title {
			return i
		}
	}
	return -1
}

// Has reports whether a requirement with the given title exists.
func (c *CapabilitySpec) Has(title string) bool {
	return c.Find(title) >= 0
}

// Clone returns a deep copy of the spec. Merging works on a clone so a
// failed merge leaves the original untouched.
func (c *CapabilitySpec) Clone() *CapabilitySpec {
	out := &CapabilitySpec{
		Name:    c.Name,
		Title:   c.Title,
		Purpose: c.Purpose,
	}
	for _, req := range c.Requirements {
		out.Requirements = append(out.Requirements, cloneRequirement(req))
	}
	return out
}

func cloneRequirement(req Requirement) Requirement {
	out := req
	out.Normatives = append([]string(nil), req.Normatives...)
	out.Scenarios = nil
	for _, sc := range req.Scenarios {
		scCopy := sc
		scCopy.Steps = append([]Step(nil), sc.Steps...)
		out.Scenarios = append(out.Scenarios, scCopy)
	}
	return out
}

// ParseCapability parses a canonical capability spec document. The
// returned error, if any, is always a *ParseError.
func ParseCapability(name, file string, content []byte) (*CapabilitySpec, error) {
	_, body, offset := extractFrontmatter(string(content))

	spec := &CapabilitySpec{
		Name:  name,
		Title: name,
	}

	lines := strings.Split(body, "\n")
	seen := map[string]bool{}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := titlePattern.FindStringSubmatch(line); m != nil && spec.Title == name {
			spec.Title = strings.TrimSpace(m[1])
			i++
			continue
		}

		if purposePattern.MatchString(line) {
			purpose, next := collectSection(lines, i+1)
			spec.Purpose = purpose
			i = next
			continue
		}

		if reqHeaderPattern.MatchString(line) {
			m := reqHeaderPattern.FindStringSubmatch(line)
			title := strings.TrimSpace(m[1])
			if seen[title] {
				return nil, &ParseError{
					Kind:   ErrDuplicateRequirementTitle,
					File:   file,
					Line:   offset + i + 1,
					Detail: title,
				}
			}
			seen[title] = true

			req, next, err := parseRequirement(file, lines, i, offset)
			if err != nil {
				return nil, err
			}
			spec.Requirements = append(spec.Requirements, *req)
			i = next
			continue
		}

		i++
	}

	return spec, nil
}

// collectSection gathers prose until the next heading, returning the
// trimmed text and the index of the terminating line.
func collectSection(lines []string, start int) (string, int) {
	var out []string
	i := start
	for i < len(lines) {
		if headingPattern.MatchString(lines[i]) {
			break
		}
		out = append(out, lines[i])
		i++
	}
	return strings.TrimSpace(strings.Join(out, "\n")), i
}
