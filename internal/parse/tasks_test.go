package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredFive = `Here are the starter tasks:

1. Run the linter on one package
Description: Run the configured linter and read its findings.
Difficulty: Easy
Estimated Time: 30 minutes
Learning Objective: Learn the lint toolchain
Acceptance Criteria: Linter runs clean; Findings are understood
Hints: The CI config shows the exact command
Related Files: Makefile, .golangci.yml
Skills: tooling

2. **Read the config loader**
It wires flags, environment and file values together.
Difficulty: Easy

3. Trace the startup path
Description: Follow main() until the server starts listening.

4. Add a happy-path test
Description: Cover the default configuration with one test.
Difficulty: Medium
Hints: Copy a neighbouring test

5. Extend the status endpoint
Description: Add one field to the status payload.
Difficulty: hard
Skills: api design, testing
`

func TestTasksParsesLabeledBlocks(t *testing.T) {
	tasks := Tasks(structuredFive)
	require.Len(t, tasks, 5)

	first := tasks[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Run the linter on one package", first.Title)
	assert.Equal(t, "Run the configured linter and read its findings.", first.Description)
	assert.Equal(t, Easy, first.Difficulty)
	assert.Equal(t, "30 minutes", first.EstimatedTime)
	assert.Equal(t, "Learn the lint toolchain", first.LearningObjective)
	assert.Equal(t, []string{"Linter runs clean", "Findings are understood"}, first.AcceptanceCriteria)
	assert.Equal(t, []string{"The CI config shows the exact command"}, first.Hints)
	assert.Equal(t, []string{"Makefile", ".golangci.yml"}, first.RelatedFiles)
	assert.Equal(t, []string{"tooling"}, first.Skills)

	// bold title markup stripped, prose promoted to description
	second := tasks[1]
	assert.Equal(t, "Read the config loader", second.Title)
	assert.Equal(t, "It wires flags, environment and file values together.", second.Description)

	// case-insensitive difficulty
	assert.Equal(t, Hard, tasks[4].Difficulty)
	assert.Equal(t, []string{"api design", "testing"}, tasks[4].Skills)
}

func TestTasksPositionalDefaults(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&sb, "%d. Task number %d\nDescription: Body %d\n\n", i, i, i)
	}
	tasks := Tasks(sb.String())
	require.Len(t, tasks, 8)

	wantDifficulty := []Difficulty{Easy, Easy, Easy, Medium, Medium, Medium, Medium, Hard}
	for i, task := range tasks {
		assert.Equalf(t, wantDifficulty[i], task.Difficulty, "task %d", i+1)
		assert.NotEmpty(t, task.EstimatedTime)
		assert.NotEmpty(t, task.AcceptanceCriteria)
		assert.NotEmpty(t, task.Hints)
	}
}

func TestTasksDiscardsShortTitles(t *testing.T) {
	raw := structuredFive + "\n6. ok\nDescription: Title too short to keep.\n"
	tasks := Tasks(raw)
	require.Len(t, tasks, 5)
	for _, task := range tasks {
		assert.NotEqual(t, "ok", task.Title)
	}
}

func TestTasksFallbackOnUnstructuredInput(t *testing.T) {
	tasks := Tasks("no structured content here")
	assert.Equal(t, Fallback(), tasks)
}

func TestTasksFallbackBelowThreshold(t *testing.T) {
	raw := "1. Read the readme\n2. Run the tests\n3. Open the main file\n4. Check CI\n"
	tasks := Tasks(raw)
	assert.Equal(t, Fallback(), tasks)
}

func TestAssembleExactlyTen(t *testing.T) {
	tcs := map[string]struct {
		first  int
		second int
	}{
		"two full batches":  {first: 5, second: 5},
		"short second":      {first: 5, second: 2},
		"short both":        {first: 3, second: 2},
		"empty batches":     {first: 0, second: 0},
		"oversized batches": {first: 10, second: 10},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			mk := func(n int, prefix string) []StarterTask {
				var out []StarterTask
				for i := 0; i < n; i++ {
					out = append(out, StarterTask{ID: i + 1, Title: fmt.Sprintf("%s %d", prefix, i+1)})
				}
				return out
			}
			got := Assemble(mk(tc.first, "first"), mk(tc.second, "second"))
			require.Len(t, got, 10)
			for i, task := range got {
				assert.Equal(t, i+1, task.ID)
				assert.NotEmpty(t, task.Title)
			}
		})
	}
}

func TestAssembleKeepsParsedBeforeFallback(t *testing.T) {
	first := []StarterTask{{ID: 1, Title: "Parsed task"}}
	got := Assemble(first, nil)
	require.Len(t, got, 10)
	assert.Equal(t, "Parsed task", got[0].Title)
	assert.Equal(t, Fallback()[0].Title, got[1].Title)
}

func TestFallbackShape(t *testing.T) {
	tasks := Fallback()
	require.Len(t, tasks, 10)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.ID)
		assert.GreaterOrEqual(t, len(task.Title), 3)
		assert.NotEmpty(t, task.Description)
		assert.Contains(t, []Difficulty{Easy, Medium, Hard}, task.Difficulty)
		assert.NotEmpty(t, task.AcceptanceCriteria)
	}
	// callers mutate their copy; a second call must come back clean
	tasks[0].Title = "mutated"
	assert.NotEqual(t, "mutated", Fallback()[0].Title)
}
