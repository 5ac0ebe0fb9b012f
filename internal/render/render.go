// Package render turns an onboarding bundle into the output documents:
// markdown guides, the agent briefing and the raw diagram file.
package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gangplank/internal/artifact"
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"fence": func() string { return "```" },
}

var docs = template.Must(template.New("docs").Funcs(funcs).Parse(docTemplates))

// markdownNames maps output file names to their template names, in
// write order.
var markdownNames = []struct{ file, tmpl string }{
	{"onboarding.md", "onboarding"},
	{"runbook.md", "runbook"},
	{"tasks.md", "tasks"},
	{"AGENTS.md", "agents"},
}

// Documents renders the full document set for a bundle.
func Documents(b *artifact.Bundle) ([]artifact.Document, error) {
	out := make([]artifact.Document, 0, len(markdownNames)+2)
	for _, m := range markdownNames {
		var buf bytes.Buffer
		if err := docs.ExecuteTemplate(&buf, m.tmpl, b); err != nil {
			return nil, errors.Wrapf(err, "render %s", m.file)
		}
		out = append(out, artifact.Document{Name: m.file, Content: buf.Bytes()})
	}

	agentYAML, err := yaml.Marshal(b.Agent)
	if err != nil {
		return nil, errors.Wrap(err, "marshal agent config")
	}
	out = append(out, artifact.Document{Name: "agent.yaml", Content: agentYAML})
	out = append(out, artifact.Document{Name: "diagram.mmd", Content: []byte(b.Diagram)})
	return out, nil
}
