// Package artifact holds the onboarding bundle assembled by the
// pipeline, writes rendered documents to disk and optionally publishes
// them to S3-compatible storage.
package artifact

import (
	"time"

	"gangplank/internal/parse"
	"gangplank/internal/scan"
)

// FileSummary is a one-line description of a key repository file.
type FileSummary struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

// AgentConfig is the machine-readable repo briefing written as
// agent.yaml for coding agents.
type AgentConfig struct {
	Project     string   `yaml:"project" json:"project"`
	Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
	Languages   []string `yaml:"languages,omitempty" json:"languages,omitempty"`
	Install     string   `yaml:"install,omitempty" json:"install,omitempty"`
	Build       string   `yaml:"build,omitempty" json:"build,omitempty"`
	Test        string   `yaml:"test,omitempty" json:"test,omitempty"`
	Run         string   `yaml:"run,omitempty" json:"run,omitempty"`
	KeyFiles    []string `yaml:"key_files,omitempty" json:"keyFiles,omitempty"`
	Conventions []string `yaml:"conventions,omitempty" json:"conventions,omitempty"`
}

// Bundle is everything the pipeline produced for one run.
type Bundle struct {
	Project      string              `json:"project"`
	RunID        string              `json:"runId"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Architecture string              `json:"architecture"`
	KeyFiles     []FileSummary       `json:"keyFiles"`
	Tasks        []parse.StarterTask `json:"tasks"`
	Diagram      string              `json:"diagram"`
	Technologies []scan.Technology   `json:"technologies"`
	Agent        AgentConfig         `json:"agent"`
	Scan         *scan.Report        `json:"scan,omitempty"`
}

// Document is one rendered output file.
type Document struct {
	Name    string
	Content []byte
}
