// Package parse turns loosely structured model output into typed starter
// task records. Parsing is best-effort: anything that does not yield
// enough structure is replaced wholesale by the fallback set, so callers
// always end up with exactly ten usable tasks.
package parse

import (
	"regexp"
	"strings"
)

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// StarterTask is one onboarding exercise in the final artifact.
type StarterTask struct {
	ID                 int        `json:"id" yaml:"id"`
	Title              string     `json:"title" yaml:"title"`
	Description        string     `json:"description" yaml:"description"`
	Difficulty         Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedTime      string     `json:"estimatedTime" yaml:"estimated_time"`
	LearningObjective  string     `json:"learningObjective,omitempty" yaml:"learning_objective,omitempty"`
	AcceptanceCriteria []string   `json:"acceptanceCriteria" yaml:"acceptance_criteria"`
	Hints              []string   `json:"hints" yaml:"hints"`
	RelatedFiles       []string   `json:"relatedFiles" yaml:"related_files"`
	Skills             []string   `json:"skills" yaml:"skills"`
}

// minValidTasks is the threshold below which a parse is discarded entirely;
// a sparse low-quality parse is worth less than the deterministic fallback.
const minValidTasks = 5

const taskCount = 10

// blockMarker matches a numbered list item, optionally behind heading or
// bold markup. Block boundaries exist only at these markers: a model that
// glues labeled fields to the end of the previous item leaks them into
// that item's record.
var blockMarker = regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?\d{1,2}[.)][ \t]+`)

// labelLine matches "Label: value" rows, with optional bullet and bold
// markup around the label.
var labelLine = regexp.MustCompile(`^[ \t]*(?:[-*•][ \t]*)?(?:\*\*)?([A-Za-z][A-Za-z ]{2,24}?)(?:\*\*)?[ \t]*:[ \t]*(.*)$`)

// canonical label spellings the models actually produce
var fieldNames = map[string]string{
	"description":         "description",
	"difficulty":          "difficulty",
	"estimated time":      "time",
	"time estimate":       "time",
	"time":                "time",
	"learning objective":  "objective",
	"objective":           "objective",
	"acceptance criteria": "criteria",
	"criteria":            "criteria",
	"hints":               "hints",
	"hint":                "hints",
	"related files":       "files",
	"files":               "files",
	"skills":              "skills",
	"skill":               "skills",
}

// Tasks parses a free-text task list. Fewer than minValidTasks usable
// records discards the whole parse in favor of the fallback set.
func Tasks(raw string) []StarterTask {
	blocks := splitBlocks(raw)
	tasks := make([]StarterTask, 0, len(blocks))
	for _, block := range blocks {
		task, ok := parseBlock(block)
		if !ok {
			continue
		}
		task.ID = len(tasks) + 1
		applyDefaults(&task, len(tasks))
		tasks = append(tasks, task)
	}
	if len(tasks) < minValidTasks {
		return Fallback()
	}
	return tasks
}

// Assemble concatenates per-batch parse results into the final list:
// renumbered 1..10, padded from the fallback set when short, truncated when
// long. The result always has exactly ten tasks.
func Assemble(batches ...[]StarterTask) []StarterTask {
	var combined []StarterTask
	for _, b := range batches {
		combined = append(combined, b...)
	}
	if len(combined) < taskCount {
		for _, f := range Fallback() {
			if len(combined) >= taskCount {
				break
			}
			combined = append(combined, f)
		}
	}
	combined = combined[:taskCount]
	for i := range combined {
		combined[i].ID = i + 1
	}
	return combined
}

func splitBlocks(raw string) []string {
	locs := blockMarker.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}
	blocks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, raw[loc[1]:end])
	}
	return blocks
}

func parseBlock(block string) (StarterTask, bool) {
	lines := strings.Split(block, "\n")
	title := cleanTitle(lines[0])
	if len(title) < 3 {
		return StarterTask{}, false
	}

	// walk the remaining lines into labeled sections; unlabeled prose before
	// the first label becomes the description fallback
	sections := map[string][]string{}
	var prose []string
	current := ""
	for _, line := range lines[1:] {
		if m := labelLine.FindStringSubmatch(line); m != nil {
			if name, ok := fieldNames[strings.ToLower(strings.TrimSpace(m[1]))]; ok {
				current = name
				if v := strings.TrimSpace(m[2]); v != "" {
					sections[current] = append(sections[current], v)
				}
				continue
			}
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if current == "" {
			prose = append(prose, trimmed)
		} else {
			sections[current] = append(sections[current], trimmed)
		}
	}

	task := StarterTask{
		Title:              title,
		Description:        strings.Join(sections["description"], " "),
		Difficulty:         parseDifficulty(strings.Join(sections["difficulty"], " ")),
		EstimatedTime:      strings.Join(sections["time"], " "),
		LearningObjective:  strings.Join(sections["objective"], " "),
		AcceptanceCriteria: splitItems(sections["criteria"], ";"),
		Hints:              splitItems(sections["hints"], ";"),
		RelatedFiles:       splitItems(sections["files"], ",;"),
		Skills:             splitItems(sections["skills"], ",;"),
	}
	if task.Description == "" {
		task.Description = strings.Join(prose, " ")
	}
	return task, true
}

func cleanTitle(line string) string {
	title := strings.TrimSpace(line)
	title = strings.Trim(title, "*#`")
	title = strings.TrimSuffix(title, ":")
	return strings.TrimSpace(title)
}

func parseDifficulty(v string) Difficulty {
	switch {
	case strings.Contains(strings.ToLower(v), "easy"):
		return Easy
	case strings.Contains(strings.ToLower(v), "medium"):
		return Medium
	case strings.Contains(strings.ToLower(v), "hard"):
		return Hard
	default:
		return ""
	}
}

// splitItems flattens section lines into list entries, splitting on the
// given separators and shedding bullet markup.
func splitItems(lines []string, seps string) []string {
	var items []string
	for _, line := range lines {
		for _, part := range strings.FieldsFunc(line, func(r rune) bool {
			return strings.ContainsRune(seps, r)
		}) {
			part = strings.TrimSpace(strings.TrimLeft(part, "-*•– \t"))
			part = strings.Trim(part, "`")
			if part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}

// applyDefaults synthesizes the fields a sparse block omitted. Position
// drives the ramp: the first three tasks stay easy, the next four medium,
// the rest hard.
func applyDefaults(task *StarterTask, pos int) {
	if task.Difficulty == "" {
		switch {
		case pos < 3:
			task.Difficulty = Easy
		case pos < 7:
			task.Difficulty = Medium
		default:
			task.Difficulty = Hard
		}
	}
	if task.EstimatedTime == "" {
		switch task.Difficulty {
		case Easy:
			task.EstimatedTime = "30-60 minutes"
		case Medium:
			task.EstimatedTime = "1-2 hours"
		default:
			task.EstimatedTime = "2-4 hours"
		}
	}
	if task.Description == "" {
		task.Description = "Work through this task to get familiar with the codebase."
	}
	if len(task.AcceptanceCriteria) == 0 {
		task.AcceptanceCriteria = []string{"Change is implemented and existing tests still pass"}
	}
	if len(task.Hints) == 0 {
		task.Hints = []string{"Start by reading the related files end to end"}
	}
}
