package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// extractFrontmatter splits optional YAML frontmatter from a document.
// It returns the parsed frontmatter (nil when absent or malformed), the
// remaining body, and the number of lines consumed before the body so
// callers can report 1-based line numbers against the original file.
func extractFrontmatter(content string) (map[string]any, string, int) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return nil, content, 0
	}

	lines := strings.Split(content, "\n")
	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			closing = i
			break
		}
	}
	if closing == -1 {
		// No closing delimiter; treat the whole document as body.
		return nil, content, 0
	}

	yamlContent := strings.Join(lines[1:closing], "\n")
	body := strings.Join(lines[closing+1:], "\n")

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &frontmatter); err != nil {
		return nil, body, closing + 1
	}

	return frontmatter, body, closing + 1
}
