package pipeline

import "math"

// StepStatus is the lifecycle state of one pipeline step. Transitions
// only move forward: Pending, Running, then Completed or Failed.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
)

// Progress is one observer event. The payload shape is shared with UI
// consumers, hence the camelCase tags.
type Progress struct {
	StepNumber int        `json:"stepNumber"`
	TotalSteps int        `json:"totalSteps"`
	StepID     string     `json:"stepId"`
	StepName   string     `json:"stepName"`
	Status     StepStatus `json:"stepStatus"`
	Detail     string     `json:"detail,omitempty"`
	Percent    float64    `json:"progress"`
}

// Observer receives every progress event of a run, in order. Observers
// are called synchronously from the engine goroutine.
type Observer func(Progress)

// percent computes overall progress from the completed step count. A
// running step contributes half its share, so the value grows
// monotonically and reaches 100 only when the final step completes.
func percent(completed, total int, running bool) float64 {
	share := 100.0 / float64(total)
	p := float64(completed) * share
	if running {
		p += share / 2
	}
	return math.Round(p*10) / 10
}
