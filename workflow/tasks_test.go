package workflow

import (
	"testing"
)

func TestParseTasks(t *testing.T) {
	content := `# Tasks: Add auth refresh

## 1. Implementation

- [x] 1.1 Add refresh endpoint
- [ ] 1.2 Wire token rotation

## 2. Testing

- [X] 2.1 Cover expiry edge cases
- Just a note, not a task
`

	tasks := ParseTasks(content)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	if tasks[0].ID != "1.1" || !tasks[0].Completed {
		t.Errorf("task 0 = %+v, want completed 1.1", tasks[0])
	}
	if tasks[0].Section != "1. Implementation" {
		t.Errorf("Section = %q, want %q", tasks[0].Section, "1. Implementation")
	}
	if tasks[0].Description != "Add refresh endpoint" {
		t.Errorf("Description = %q", tasks[0].Description)
	}

	if tasks[1].ID != "1.2" || tasks[1].Completed {
		t.Errorf("task 1 = %+v, want incomplete 1.2", tasks[1])
	}

	if tasks[2].ID != "2.1" || !tasks[2].Completed {
		t.Errorf("task 2 = %+v, want completed 2.1", tasks[2])
	}
}

func TestParseTasksGeneratedIDs(t *testing.T) {
	content := `## Setup

- [ ] Install dependencies
- [ ] Configure linters
`

	tasks := ParseTasks(content)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "1.1" || tasks[1].ID != "1.2" {
		t.Errorf("generated IDs = %q, %q, want 1.1, 1.2", tasks[0].ID, tasks[1].ID)
	}
}

func TestParseTasksNoSection(t *testing.T) {
	tasks := ParseTasks("- [ ] Orphan task\n")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Section != "Tasks" {
		t.Errorf("Section = %q, want Tasks", tasks[0].Section)
	}
}

func TestTaskStats(t *testing.T) {
	tasks := []Task{
		{ID: "1.1", Completed: true},
		{ID: "1.2"},
		{ID: "1.3"},
	}

	total, completed := TaskStats(tasks)
	if total != 3 || completed != 1 {
		t.Errorf("TaskStats = %d/%d, want 1/3", completed, total)
	}
}
