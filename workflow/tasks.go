package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// Task represents a checklist item extracted from tasks.md.
type Task struct {
	// ID is the task identifier ("1.1", "2.3"), taken from the task
	// text when present and generated from position otherwise.
	ID string

	// Section is the section header the task belongs to.
	Section string

	// Description is the task description text.
	Description string

	// Completed indicates whether the checkbox is checked.
	Completed bool
}

// taskLinePattern matches markdown checkbox items: - [ ] or - [x]
var taskLinePattern = regexp.MustCompile(`^[-*]\s*\[([ xX])\]\s*(.+)$`)

// taskIDPattern matches a leading dotted task number in the description.
var taskIDPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.+)$`)

// taskSectionPattern matches markdown section headers: ## Section Name
var taskSectionPattern = regexp.MustCompile(`^##\s+(.+)$`)

// ParseTasks parses tasks.md content into structured task data.
// Tasks are markdown checkboxes grouped under section headers.
func ParseTasks(content string) []Task {
	var tasks []Task
	currentSection := ""
	sectionNum := 0
	taskNum := 0

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if matches := taskSectionPattern.FindStringSubmatch(trimmed); matches != nil {
			currentSection = matches[1]
			sectionNum++
			taskNum = 0
			continue
		}

		matches := taskLinePattern.FindStringSubmatch(trimmed)
		if matches == nil {
			continue
		}

		if currentSection == "" {
			currentSection = "Tasks"
			sectionNum = 1
		}
		taskNum++

		description := strings.TrimSpace(matches[2])
		id := fmt.Sprintf("%d.%d", sectionNum, taskNum)
		if idMatch := taskIDPattern.FindStringSubmatch(description); idMatch != nil {
			id = idMatch[1]
			description = idMatch[2]
		}

		tasks = append(tasks, Task{
			ID:          id,
			Section:     currentSection,
			Description: description,
			Completed:   matches[1] == "x" || matches[1] == "X",
		})
	}

	return tasks
}

// ReadTasks returns the raw tasks.md content for a change.
func (m *Manager) ReadTasks(id string) (string, error) {
	return m.readFile(m.TasksPath(id))
}

// TaskStats returns total and completed counts for parsed tasks.
func TaskStats(tasks []Task) (total, completed int) {
	total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return total, completed
}
