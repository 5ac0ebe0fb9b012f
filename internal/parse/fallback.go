package parse

// Fallback returns the fixed starter task set used whenever generated
// content yields too little structure. Callers may renumber or truncate, so
// every call returns a fresh copy.
func Fallback() []StarterTask {
	tasks := []StarterTask{
		{
			Title:              "Run the project locally",
			Description:        "Clone the repository, install dependencies, and start the project with the commands from the runbook.",
			Difficulty:         Easy,
			EstimatedTime:      "30-60 minutes",
			LearningObjective:  "Know the build and run workflow",
			AcceptanceCriteria: []string{"Project builds without errors", "Main entry point runs"},
			Hints:              []string{"The runbook lists the install and run commands"},
			RelatedFiles:       []string{"README.md"},
			Skills:             []string{"tooling", "environment setup"},
		},
		{
			Title:              "Read the main entry point",
			Description:        "Find the program entry point and follow the startup sequence until the first unit of real work.",
			Difficulty:         Easy,
			EstimatedTime:      "30-60 minutes",
			LearningObjective:  "Understand how the program boots",
			AcceptanceCriteria: []string{"Can explain the startup sequence in a few sentences"},
			Hints:              []string{"Entry points are listed in the architecture summary"},
			RelatedFiles:       []string{},
			Skills:             []string{"code reading"},
		},
		{
			Title:              "Map the directory layout",
			Description:        "Walk the top-level directories and write one line about what each contains.",
			Difficulty:         Easy,
			EstimatedTime:      "30 minutes",
			LearningObjective:  "Build a mental model of the repository layout",
			AcceptanceCriteria: []string{"Every top-level directory has a one-line description"},
			Hints:              []string{"The component diagram shows how the directories relate"},
			RelatedFiles:       []string{},
			Skills:             []string{"code reading", "documentation"},
		},
		{
			Title:              "Trace one request end to end",
			Description:        "Pick one externally visible operation and follow it through every layer it touches.",
			Difficulty:         Medium,
			EstimatedTime:      "1-2 hours",
			LearningObjective:  "See how the layers collaborate at runtime",
			AcceptanceCriteria: []string{"A written trace names each function on the path"},
			Hints:              []string{"Start from an entry point and read downward"},
			RelatedFiles:       []string{},
			Skills:             []string{"debugging", "code reading"},
		},
		{
			Title:              "Add a unit test for an existing function",
			Description:        "Choose a small pure function without coverage and write a test exercising its edge cases.",
			Difficulty:         Medium,
			EstimatedTime:      "1-2 hours",
			LearningObjective:  "Learn the test layout and assertion style",
			AcceptanceCriteria: []string{"New test passes", "Test covers at least one edge case"},
			Hints:              []string{"Copy the structure of a neighbouring test file"},
			RelatedFiles:       []string{},
			Skills:             []string{"testing"},
		},
		{
			Title:              "Improve an error message",
			Description:        "Find an error that surfaces without context and rewrite it to say what failed and with which input.",
			Difficulty:         Medium,
			EstimatedTime:      "1 hour",
			LearningObjective:  "Learn the error handling conventions",
			AcceptanceCriteria: []string{"Message names the failing operation", "Existing tests still pass"},
			Hints:              []string{"Grep for the error text to find where it is raised"},
			RelatedFiles:       []string{},
			Skills:             []string{"error handling"},
		},
		{
			Title:              "Document one module",
			Description:        "Pick an undocumented module and write a short doc comment covering purpose, inputs, and outputs.",
			Difficulty:         Medium,
			EstimatedTime:      "1-2 hours",
			LearningObjective:  "Read a module closely enough to describe it",
			AcceptanceCriteria: []string{"Doc comment reviewed by a teammate"},
			Hints:              []string{"The key-file summaries point at modules worth documenting"},
			RelatedFiles:       []string{},
			Skills:             []string{"documentation", "code reading"},
		},
		{
			Title:              "Fix a small reported issue",
			Description:        "Take an open minor bug, reproduce it, fix it, and add a regression test.",
			Difficulty:         Hard,
			EstimatedTime:      "2-4 hours",
			LearningObjective:  "Complete the full change workflow",
			AcceptanceCriteria: []string{"Bug no longer reproduces", "Regression test added"},
			Hints:              []string{"Reproduce before changing anything"},
			RelatedFiles:       []string{},
			Skills:             []string{"debugging", "testing"},
		},
		{
			Title:              "Refactor one function for clarity",
			Description:        "Find a long function, split it into named helpers, and keep the behavior identical.",
			Difficulty:         Hard,
			EstimatedTime:      "2-4 hours",
			LearningObjective:  "Change code safely under test coverage",
			AcceptanceCriteria: []string{"Behavior unchanged", "All tests pass"},
			Hints:              []string{"Write a characterization test first if coverage is thin"},
			RelatedFiles:       []string{},
			Skills:             []string{"refactoring", "testing"},
		},
		{
			Title:              "Extend an existing feature",
			Description:        "Add one small option or field to an existing feature, wired through every layer it crosses.",
			Difficulty:         Hard,
			EstimatedTime:      "3-5 hours",
			LearningObjective:  "Make a change that spans multiple layers",
			AcceptanceCriteria: []string{"Option works end to end", "Tests cover the new path"},
			Hints:              []string{"Follow the trace from the earlier task"},
			RelatedFiles:       []string{},
			Skills:             []string{"feature work", "testing"},
		},
	}
	for i := range tasks {
		tasks[i].ID = i + 1
	}
	return tasks
}
