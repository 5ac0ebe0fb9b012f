package pipeline

import (
	"fmt"
	"strings"

	"gangplank/internal/artifact"
	"gangplank/internal/scan"
)

const systemPrompt = `You are a senior engineer writing onboarding material for new
contributors. Be concrete, reference real file paths, and never invent
components that are not in the provided metadata.`

// promptFileCap bounds how much file content is inlined into a prompt.
const promptFileCap = 6000

func keyFilePrompt(path string, content []byte) string {
	text := string(content)
	if len(text) > promptFileCap {
		text = text[:promptFileCap]
	}
	return fmt.Sprintf(`Summarize the purpose of this file in 1-2 plain sentences.
File: %s

%s`, path, text)
}

func architecturePrompt(rep *scan.Report, summaries []artifact.FileSummary) string {
	var b strings.Builder
	b.WriteString("Write an architecture summary (3-6 paragraphs) of this repository for a new contributor.\n")
	b.WriteString("Cover the major components, how they interact, and where to start reading.\n\n")
	writeRepoContext(&b, rep)
	if len(summaries) > 0 {
		b.WriteString("\nKey file summaries:\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "- %s: %s\n", s.Path, s.Summary)
		}
	}
	return b.String()
}

func tasksPrompt(rep *scan.Report, architecture string, from, to int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Propose starter tasks %d through %d for a new contributor to this repository.
Number each task. For every task provide these labeled lines:
Description, Difficulty (Easy, Medium or Hard), Estimated time,
Learning objective, Acceptance criteria, Hints, Related files, Skills.

`, from, to)
	writeRepoContext(&b, rep)
	if architecture != "" {
		b.WriteString("\nArchitecture summary:\n")
		b.WriteString(architecture)
		b.WriteString("\n")
	}
	return b.String()
}

func diagramPrompt(rep *scan.Report, architecture string) string {
	var b strings.Builder
	b.WriteString(`Draw a Mermaid component diagram of this repository.
Output only the diagram, starting with "graph TD". Use simple node ids,
short labels, and arrows for dependencies. No prose, no code fences.

`)
	writeRepoContext(&b, rep)
	if architecture != "" {
		b.WriteString("\nArchitecture summary:\n")
		b.WriteString(architecture)
		b.WriteString("\n")
	}
	return b.String()
}

func writeRepoContext(b *strings.Builder, rep *scan.Report) {
	fmt.Fprintf(b, "Repository: %s\n", rep.Name)
	if len(rep.Languages) > 0 {
		var langs []string
		for _, l := range rep.Languages {
			langs = append(langs, fmt.Sprintf("%s %.1f%%", l.Name, l.Share))
		}
		fmt.Fprintf(b, "Languages: %s\n", strings.Join(langs, ", "))
	}
	if len(rep.EntryPoints) > 0 {
		fmt.Fprintf(b, "Entry points: %s\n", strings.Join(rep.EntryPoints, ", "))
	}
	if len(rep.Dependencies) > 0 {
		deps := rep.Dependencies
		if len(deps) > 30 {
			deps = deps[:30]
		}
		fmt.Fprintf(b, "Dependencies: %s\n", strings.Join(deps, ", "))
	}
	if rep.Tree != "" {
		fmt.Fprintf(b, "Layout:\n%s\n", rep.Tree)
	}
}
