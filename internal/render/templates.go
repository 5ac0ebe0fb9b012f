package render

// docTemplates holds every markdown template. Code fences come from the
// fence helper because backticks cannot appear in raw string literals.
const docTemplates = `
{{- define "onboarding" -}}
# {{.Project}} Onboarding Guide

Generated {{.GeneratedAt.UTC.Format "2006-01-02 15:04"}} UTC. Run {{.RunID}}.

## Architecture

{{.Architecture}}
{{- if .Scan}}{{if .Scan.Languages}}

## Languages

| Language | Files | Share |
| --- | --- | --- |
{{- range .Scan.Languages}}
| {{.Name}} | {{.Files}} | {{printf "%.1f%%" .Share}} |
{{- end}}
{{- end}}{{end}}
{{- if .KeyFiles}}

## Key Files
{{range .KeyFiles}}
- {{.Path}}: {{.Summary}}
{{- end}}
{{- end}}
{{- if .Technologies}}

## Technologies

| Name | Category | Evidence |
| --- | --- | --- |
{{- range .Technologies}}
| {{.Name}} | {{.Category}} | {{.Evidence}} |
{{- end}}
{{- end}}

## Component Diagram

{{fence}}mermaid
{{.Diagram}}
{{fence}}
{{- if .Scan}}{{if .Scan.Tree}}

## Repository Layout

{{fence}}
{{.Scan.Tree}}
{{fence}}
{{- end}}{{end}}
{{end}}

{{- define "runbook" -}}
# {{.Project}} Runbook
{{- if .Scan}}

## Build and Run

| Ecosystem | Manifest | Install | Build | Test | Run |
| --- | --- | --- | --- | --- | --- |
{{- range .Scan.Builds}}
| {{.Ecosystem}} | {{.Manifest}} | {{or .Install "-"}} | {{or .Build "-"}} | {{or .Test "-"}} | {{or .Run "-"}} |
{{- end}}
{{- if .Scan.EntryPoints}}

## Entry Points
{{range .Scan.EntryPoints}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Scan.ConfigFiles}}

## Configuration
{{range .Scan.ConfigFiles}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Scan.TestFrameworks}}

## Test Frameworks
{{range .Scan.TestFrameworks}}
- {{.}}
{{- end}}
{{- end}}
{{- else}}

No repository metadata was collected for this run.
{{- end}}
{{end}}

{{- define "tasks" -}}
# Starter Tasks

Ten hands-on tasks for new contributors, ordered easy to hard.
{{range .Tasks}}
## {{.ID}}. {{.Title}}

Difficulty: {{.Difficulty}}. Estimated time: {{.EstimatedTime}}.

{{.Description}}
{{- if .LearningObjective}}

Objective: {{.LearningObjective}}
{{- end}}
{{- if .AcceptanceCriteria}}

Acceptance criteria:
{{range .AcceptanceCriteria}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Hints}}

Hints:
{{range .Hints}}
- {{.}}
{{- end}}
{{- end}}
{{- if .RelatedFiles}}

Related files: {{join .RelatedFiles ", "}}
{{- end}}
{{- if .Skills}}

Skills practiced: {{join .Skills ", "}}
{{- end}}
{{end}}
{{- end}}

{{- define "agents" -}}
# Agent Briefing: {{.Project}}

Machine-oriented notes for coding agents working in this repository.
A YAML version of this briefing is written alongside as agent.yaml.

## Commands
{{if .Agent.Install}}
- Install: {{.Agent.Install}}
{{- end}}
{{- if .Agent.Build}}
- Build: {{.Agent.Build}}
{{- end}}
{{- if .Agent.Test}}
- Test: {{.Agent.Test}}
{{- end}}
{{- if .Agent.Run}}
- Run: {{.Agent.Run}}
{{- end}}
{{- if .Agent.Languages}}

## Languages

{{join .Agent.Languages ", "}}
{{- end}}
{{- if .Agent.KeyFiles}}

## Key Files
{{range .Agent.KeyFiles}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Agent.Conventions}}

## Conventions
{{range .Agent.Conventions}}
- {{.}}
{{- end}}
{{- end}}
{{end}}
`
