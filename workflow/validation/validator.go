// Package validation checks change proposals before promotion. It
// inspects the proposal document, task list, and spec deltas of a
// change directory and reports diagnostics with file and line
// positions.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/openspec/parser"
	"github.com/c360studio/openspec/storage"
)

// Document file names inside a change directory.
const (
	proposalFile = "proposal.md"
	tasksFile    = "tasks.md"
	specsDir     = "specs"
	specFile     = "spec.md"
)

// Pre-compiled patterns shared across validations.
var (
	// sectionHeaderRe matches second-level markdown headers.
	sectionHeaderRe = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	// relatedRe matches capability cross-reference lines in proposals.
	relatedRe = regexp.MustCompile(`^Related:\s*(.+)$`)
	// checkboxRe matches well-formed task checkbox items.
	checkboxRe = regexp.MustCompile(`^[-*]\s*\[[ xX]\]\s+.+$`)
	// bulletRe matches bullet lines that may be malformed tasks.
	bulletRe = regexp.MustCompile(`^[-*]\s+(.*)$`)
)

// SectionRequirement defines one expected proposal section.
type SectionRequirement struct {
	// Name is the header text, matched case-insensitively.
	Name string
	// Pattern matches the section header line.
	Pattern *regexp.Regexp
	// Optional sections may be omitted without a diagnostic.
	Optional bool
}

// ProposalSections lists the expected proposal sections in the order
// they must appear.
var ProposalSections = []SectionRequirement{
	{Name: "Executive Summary", Pattern: regexp.MustCompile(`(?i)^##\s+executive\s+summary\s*$`)},
	{Name: "Background", Pattern: regexp.MustCompile(`(?i)^##\s+(background|why)\s*$`)},
	{Name: "Goals", Pattern: regexp.MustCompile(`(?i)^##\s+goals\s*$`), Optional: true},
	{Name: "Scope", Pattern: regexp.MustCompile(`(?i)^##\s+scope\s*$`)},
	{Name: "Approach", Pattern: regexp.MustCompile(`(?i)^##\s+approach\s*$`)},
	{Name: "Risks", Pattern: regexp.MustCompile(`(?i)^##\s+risks\s*$`)},
	{Name: "Validation", Pattern: regexp.MustCompile(`(?i)^##\s+validation\s*$`)},
	{Name: "Open Questions", Pattern: regexp.MustCompile(`(?i)^##\s+open\s+questions\s*$`), Optional: true},
}

// Validator checks one change directory against the project's specs.
type Validator struct {
	changeDir string
	store     *storage.Store
	sections  []SectionRequirement
}

// New creates a Validator for a change directory. The store provides
// existing capabilities for cross-reference checks.
func New(changeDir string, store *storage.Store) *Validator {
	return &Validator{
		changeDir: changeDir,
		store:     store,
		sections:  ProposalSections,
	}
}

// Validate runs every check and returns the collected diagnostics.
// It returns an error only for I/O failures, not for findings.
func (v *Validator) Validate() (*Report, error) {
	report := &Report{Change: filepath.Base(v.changeDir)}

	deltas, err := v.deltaFiles()
	if err != nil {
		return nil, err
	}

	v.checkRequiredFiles(report, deltas)
	if err := v.checkProposal(report, deltas); err != nil {
		return nil, err
	}
	if err := v.checkDeltas(report, deltas); err != nil {
		return nil, err
	}
	if err := v.checkTasks(report); err != nil {
		return nil, err
	}

	return report, nil
}

// deltaFiles returns the change's spec delta paths relative to the
// change directory, sorted.
func (v *Validator) deltaFiles() ([]string, error) {
	pattern := filepath.Join(v.changeDir, specsDir, "*", specFile)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing deltas: %w", err)
	}

	rel := make([]string, 0, len(matches))
	for _, match := range matches {
		r, err := filepath.Rel(v.changeDir, match)
		if err != nil {
			return nil, err
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	sort.Strings(rel)
	return rel, nil
}

// checkRequiredFiles verifies the change has a proposal, a task list,
// and at least one spec delta.
func (v *Validator) checkRequiredFiles(report *Report, deltas []string) {
	for _, name := range []string{proposalFile, tasksFile} {
		if !v.exists(name) {
			report.AddError(name, 0, "required file is missing")
		}
	}
	if len(deltas) == 0 {
		report.AddError("", 0, "change has no spec deltas under %s/", specsDir)
	}
}

// checkProposal verifies section presence and ordering, and resolves
// capability cross-references.
func (v *Validator) checkProposal(report *Report, deltas []string) error {
	if !v.exists(proposalFile) {
		return nil
	}
	content, err := v.read(proposalFile)
	if err != nil {
		return err
	}

	v.checkSections(report, content)
	v.checkCrossReferences(report, content, deltas)
	return nil
}

// checkSections requires the known proposal sections to appear in
// order. A missing required section is a warning; a section out of
// order is an error.
func (v *Validator) checkSections(report *Report, content string) {
	found := make(map[string]int)
	lastIdx := -1
	orderBroken := false

	for n, line := range strings.Split(content, "\n") {
		if sectionHeaderRe.FindStringSubmatch(line) == nil {
			continue
		}
		for idx, req := range v.sections {
			if !req.Pattern.MatchString(line) {
				continue
			}
			if _, seen := found[req.Name]; !seen {
				found[req.Name] = n + 1
			}
			if idx < lastIdx && !orderBroken {
				orderBroken = true
				report.AddError(proposalFile, n+1, "section %q appears out of order", req.Name)
			}
			if idx > lastIdx {
				lastIdx = idx
			}
			break
		}
	}

	for _, req := range v.sections {
		if req.Optional {
			continue
		}
		if _, ok := found[req.Name]; !ok {
			report.AddWarning(proposalFile, 0, "proposal is missing a %q section", req.Name)
		}
	}
}

// checkCrossReferences resolves Related: lines against existing
// capabilities and capabilities this change introduces.
func (v *Validator) checkCrossReferences(report *Report, content string, deltas []string) {
	introduced := make(map[string]bool)
	for _, rel := range deltas {
		parts := strings.Split(rel, "/")
		if len(parts) == 3 {
			introduced[parts[1]] = true
		}
	}

	for n, line := range strings.Split(content, "\n") {
		m := relatedRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		for _, ref := range strings.Split(m[1], ",") {
			name := strings.Trim(strings.TrimSpace(ref), "`")
			if name == "" {
				continue
			}
			if introduced[name] || (v.store != nil && v.store.Exists(name)) {
				continue
			}
			report.AddError(proposalFile, n+1, "related capability %q does not exist", name)
		}
	}
}

// checkDeltas parses every spec delta and reports parse failures and
// empty deltas.
func (v *Validator) checkDeltas(report *Report, deltas []string) error {
	for _, rel := range deltas {
		content, err := v.read(rel)
		if err != nil {
			return err
		}

		delta, err := parser.ParseDelta(rel, []byte(content))
		if err != nil {
			var parseErr *parser.ParseError
			if errors.As(err, &parseErr) {
				report.AddError(parseErr.File, parseErr.Line, "%s", parseErr.Message())
				continue
			}
			return err
		}

		if delta.IsEmpty() {
			report.AddWarning(rel, 0, "delta declares no requirements")
		}
	}
	return nil
}

// checkTasks verifies task list syntax. Bullet lines that are not
// checkboxes are malformed tasks.
func (v *Validator) checkTasks(report *Report) error {
	if !v.exists(tasksFile) {
		return nil
	}
	content, err := v.read(tasksFile)
	if err != nil {
		return err
	}

	taskCount := 0
	for n, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if checkboxRe.MatchString(trimmed) {
			taskCount++
			continue
		}
		if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
			if strings.HasPrefix(m[1], "[") {
				report.AddError(tasksFile, n+1, "task checkbox must be [ ], [x], or [X]")
			} else {
				report.AddError(tasksFile, n+1, "task line is missing a checkbox")
			}
		}
	}
	if taskCount == 0 {
		report.AddWarning(tasksFile, 0, "task list has no tasks")
	}
	return nil
}

func (v *Validator) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(v.changeDir, rel))
	return err == nil
}

func (v *Validator) read(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(v.changeDir, rel))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}
