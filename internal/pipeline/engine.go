// Package pipeline drives an onboarding run: nine fixed steps from
// provider status check to artifact output, with per-step status,
// monotonic progress reporting and fail-fast semantics.
package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gangplank/internal/artifact"
	"gangplank/internal/parse"
	"gangplank/internal/provider"
	"gangplank/internal/scan"
)

// Step is the externally visible record of one pipeline step.
type Step struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
	Error  string     `json:"error,omitempty"`
}

type stepDef struct {
	id   string
	name string
	run  func(*run, context.Context) error
}

// stepDefs is the fixed step order. Steps are never reordered or
// skipped at runtime; a step may be a no-op but still transitions
// through the full lifecycle. Assigned in init rather than a composite
// literal initializer: the step methods reach emit, which reads
// len(stepDefs), and a static initializer would form an
// initialization cycle.
var stepDefs []stepDef

func init() {
	stepDefs = []stepDef{
		{"provider-status", "Check inference provider", (*run).checkProvider},
		{"repo-scan", "Scan repository", (*run).scanRepo},
		{"key-files", "Analyze key files", (*run).analyzeKeyFiles},
		{"architecture", "Generate architecture summary", (*run).generateArchitecture},
		{"tasks", "Generate starter tasks", (*run).generateTasks},
		{"diagram", "Generate component diagram", (*run).generateDiagram},
		{"compile", "Compile onboarding bundle", (*run).compileBundle},
		{"tech-validation", "Validate detected technologies", (*run).validateTechnologies},
		{"write-output", "Write artifacts", (*run).writeOutput},
	}
}

// Publisher pushes rendered documents to remote storage after the local
// write succeeded.
type Publisher interface {
	Publish(ctx context.Context, runID string, docs []artifact.Document) error
}

// Options configure one engine. Zero values select sane defaults.
type Options struct {
	RepoPath string
	OutDir   string
	// Project overrides the project name; defaults to the repo base name.
	Project string
	// SkipInference forces fallback content even when the provider is ready.
	SkipInference bool
	// KeyFileLimit caps how many key files are summarized. Default 6.
	KeyFileLimit int
	// Publisher, when set, receives the rendered documents after writing.
	Publisher Publisher
	Observers []Observer
	// Now is injectable for tests.
	Now func() time.Time
}

// Engine executes onboarding runs against one provider client.
type Engine struct {
	client provider.Client
	opts   Options
}

// Result is what a run returns. Bundle is nil when the run failed;
// Steps always carries the full step history.
type Result struct {
	RunID     string           `json:"runId"`
	Steps     []Step           `json:"steps"`
	Bundle    *artifact.Bundle `json:"-"`
	Duration  time.Duration    `json:"duration"`
	Published bool             `json:"published"`
	// InferenceUsed reports whether any step called the provider.
	InferenceUsed bool `json:"inferenceUsed"`
}

func New(client provider.Client, opts Options) *Engine {
	if opts.KeyFileLimit <= 0 {
		opts.KeyFileLimit = 6
	}
	if opts.Project == "" {
		opts.Project = filepath.Base(opts.RepoPath)
	}
	if opts.OutDir == "" {
		opts.OutDir = "onboarding"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{client: client, opts: opts}
}

// run carries the mutable state of one execution through the steps.
type run struct {
	eng       *Engine
	id        string
	steps     []Step
	cur       int
	completed int

	inference    bool
	status       provider.Status
	scanner      *scan.Scanner
	report       *scan.Report
	summaries    []artifact.FileSummary
	architecture string
	tasks        []parse.StarterTask
	diagramText  string
	bundle       *artifact.Bundle
	docs         []artifact.Document
	published    bool
	calls        int
}

// Run executes all nine steps in order. The first failing step aborts
// the run; the returned Result still carries the step history.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	r := &run{eng: e, id: uuid.NewString()}
	r.steps = make([]Step, len(stepDefs))
	for i, d := range stepDefs {
		r.steps[i] = Step{ID: d.id, Name: d.name, Status: StatusPending}
	}

	start := e.opts.Now()
	res := &Result{RunID: r.id, Steps: r.steps}
	log.Printf("pipeline: run %s starting for %s", r.id, e.opts.RepoPath)

	for i, d := range stepDefs {
		r.cur = i
		step := &r.steps[i]
		step.Status = StatusRunning
		r.emit(StatusRunning, "")

		if err := d.run(r, ctx); err != nil {
			step.Status = StatusFailed
			step.Error = err.Error()
			r.emit(StatusFailed, step.Error)
			res.Duration = e.opts.Now().Sub(start)
			res.InferenceUsed = r.calls > 0
			log.Printf("pipeline: run %s failed at %s: %v", r.id, d.id, err)
			return res, errors.Wrapf(err, "step %s failed", d.id)
		}

		step.Status = StatusCompleted
		r.completed++
		r.emit(StatusCompleted, step.Detail)
	}

	res.Bundle = r.bundle
	res.Duration = e.opts.Now().Sub(start)
	res.Published = r.published
	res.InferenceUsed = r.calls > 0
	log.Printf("pipeline: run %s finished in %s", r.id, res.Duration.Round(time.Millisecond))
	return res, nil
}

// emit reports the current step with the overall percentage. Detail
// updates during a running step re-report the same percentage.
func (r *run) emit(status StepStatus, detail string) {
	p := Progress{
		StepNumber: r.cur + 1,
		TotalSteps: len(stepDefs),
		StepID:     r.steps[r.cur].ID,
		StepName:   r.steps[r.cur].Name,
		Status:     status,
		Detail:     detail,
		Percent:    percent(r.completed, len(stepDefs), status == StatusRunning || status == StatusFailed),
	}
	for _, ob := range r.eng.opts.Observers {
		ob(p)
	}
}

// note publishes a detail update for the running step and records it on
// the step itself.
func (r *run) note(detail string) {
	r.steps[r.cur].Detail = detail
	r.emit(StatusRunning, detail)
}

// complete wraps a provider call so every step counts its inference
// usage the same way.
func (r *run) complete(ctx context.Context, req provider.Request) (provider.Response, error) {
	r.calls++
	return r.eng.client.Complete(ctx, req)
}
