package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gangplank/internal/artifact"
	"gangplank/internal/diagram"
	"gangplank/internal/parse"
	"gangplank/internal/provider"
	"gangplank/internal/render"
	"gangplank/internal/scan"
)

const (
	keyFileMaxTokens      = 256
	architectureMaxTokens = 1024
	tasksMaxTokens        = 2048
	diagramMaxTokens      = 768
)

// checkProvider records the provider snapshot and decides whether the
// rest of the run may use inference. Status problems never fail a run.
func (r *run) checkProvider(ctx context.Context) error {
	st, err := r.eng.client.CheckStatus(ctx)
	if err != nil {
		log.Printf("pipeline: provider status check errored: %v", err)
	}
	r.status = st
	r.inference = st.Available && r.eng.client.Ready() && !r.eng.opts.SkipInference
	switch {
	case r.eng.opts.SkipInference:
		r.note("inference disabled, using deterministic fallbacks")
	case !r.inference:
		r.note("provider unavailable, using deterministic fallbacks")
	default:
		r.note(fmt.Sprintf("provider ready at %s, model %s", r.eng.client.Endpoint(), r.eng.client.Model()))
	}
	return nil
}

func (r *run) scanRepo(ctx context.Context) error {
	s, err := scan.New(r.eng.opts.RepoPath)
	if err != nil {
		return err
	}
	r.scanner = s
	rep, err := s.Analyze(ctx)
	if err != nil {
		return err
	}
	r.report = rep
	r.note(fmt.Sprintf("%d files, %d languages, %d dependencies",
		rep.FileCount, len(rep.Languages), len(rep.Dependencies)))
	return nil
}

// analyzeKeyFiles summarizes the selected key files one at a time,
// reporting per-file detail. Without inference the summaries come from
// the deterministic headline extractor.
func (r *run) analyzeKeyFiles(ctx context.Context) error {
	keys := r.report.KeyFiles(r.eng.opts.KeyFileLimit)
	for i, p := range keys {
		r.note(fmt.Sprintf("summarizing file %d/%d", i+1, len(keys)))
		content, err := r.scanner.ReadFile(p)
		if err != nil {
			continue
		}
		var summary string
		if r.inference {
			resp, err := r.complete(ctx, provider.Request{
				SystemPrompt: systemPrompt,
				Prompt:       keyFilePrompt(p, content),
				MaxTokens:    keyFileMaxTokens,
			})
			if err != nil {
				return err
			}
			summary = strings.TrimSpace(resp.Content)
		}
		if summary == "" {
			summary = scan.Summarize(p, content)
		}
		r.summaries = append(r.summaries, artifact.FileSummary{Path: p, Summary: summary})
	}
	return nil
}

func (r *run) generateArchitecture(ctx context.Context) error {
	if r.inference {
		resp, err := r.complete(ctx, provider.Request{
			SystemPrompt: systemPrompt,
			Prompt:       architecturePrompt(r.report, r.summaries),
			MaxTokens:    architectureMaxTokens,
		})
		if err != nil {
			return err
		}
		r.architecture = strings.TrimSpace(resp.Content)
	}
	if r.architecture == "" {
		r.architecture = offlineArchitecture(r.report)
	}
	return nil
}

// generateTasks requests tasks in two batches and assembles exactly ten
// records, padding from the fallback set as needed.
func (r *run) generateTasks(ctx context.Context) error {
	var first, second []parse.StarterTask
	if r.inference {
		batches := []struct {
			from, to int
			dst      *[]parse.StarterTask
		}{
			{1, 5, &first},
			{6, 10, &second},
		}
		for _, b := range batches {
			r.note(fmt.Sprintf("generating tasks %d-%d", b.from, b.to))
			resp, err := r.complete(ctx, provider.Request{
				SystemPrompt: systemPrompt,
				Prompt:       tasksPrompt(r.report, r.architecture, b.from, b.to),
				MaxTokens:    tasksMaxTokens,
			})
			if err != nil {
				return err
			}
			*b.dst = parse.Tasks(resp.Content)
		}
	}
	r.tasks = parse.Assemble(first, second)
	r.note(fmt.Sprintf("%d starter tasks ready", len(r.tasks)))
	return nil
}

func (r *run) generateDiagram(ctx context.Context) error {
	if r.inference {
		resp, err := r.complete(ctx, provider.Request{
			SystemPrompt: systemPrompt,
			Prompt:       diagramPrompt(r.report, r.architecture),
			MaxTokens:    diagramMaxTokens,
		})
		if err != nil {
			return err
		}
		clean := diagram.Sanitize(resp.Content)
		if nodes, edges := diagram.Inventory(clean); edges > 0 {
			r.diagramText = clean
			r.note(fmt.Sprintf("diagram with %d nodes, %d edges", nodes, edges))
			return nil
		}
		r.note("generated diagram had no usable structure, using fallback")
	}
	r.diagramText = diagram.Fallback(r.eng.opts.Project, r.report.Components())
	return nil
}

func (r *run) compileBundle(ctx context.Context) error {
	r.bundle = &artifact.Bundle{
		Project:      r.eng.opts.Project,
		RunID:        r.id,
		GeneratedAt:  r.eng.opts.Now(),
		Architecture: r.architecture,
		KeyFiles:     r.summaries,
		Tasks:        r.tasks,
		Diagram:      r.diagramText,
		Technologies: r.report.Technologies,
		Agent:        r.agentConfig(),
		Scan:         r.report,
	}
	r.note("bundle assembled")
	return nil
}

// validateTechnologies re-checks each detected technology's evidence
// against the final report and drops entries that no longer hold.
func (r *run) validateTechnologies(ctx context.Context) error {
	kept := make([]scan.Technology, 0, len(r.bundle.Technologies))
	dropped := 0
	for _, t := range r.bundle.Technologies {
		if r.report.Evidenced(t) {
			kept = append(kept, t)
		} else {
			dropped++
		}
	}
	r.bundle.Technologies = kept
	r.report.Technologies = kept
	r.note(fmt.Sprintf("%d technologies validated, %d dropped", len(kept), dropped))
	return nil
}

// writeOutput renders and writes the documents. Remote publishing is
// best effort: the local artifacts already exist when it runs.
func (r *run) writeOutput(ctx context.Context) error {
	docs, err := render.Documents(r.bundle)
	if err != nil {
		return err
	}
	r.docs = docs
	if err := artifact.Write(r.eng.opts.OutDir, docs); err != nil {
		return err
	}
	r.note(fmt.Sprintf("wrote %d documents to %s", len(docs), r.eng.opts.OutDir))

	if p := r.eng.opts.Publisher; p != nil {
		if err := p.Publish(ctx, r.id, docs); err != nil {
			log.Printf("pipeline: publish failed: %v", err)
			r.note("remote publish failed, local artifacts written")
		} else {
			r.published = true
			r.note("published to remote storage")
		}
	}
	return nil
}

func (r *run) agentConfig() artifact.AgentConfig {
	cfg := artifact.AgentConfig{
		Project: r.eng.opts.Project,
		Model:   r.eng.client.Model(),
	}
	for _, l := range r.report.Languages {
		cfg.Languages = append(cfg.Languages, l.Name)
	}
	for _, b := range r.report.Builds {
		if cfg.Install == "" {
			cfg.Install = b.Install
		}
		if cfg.Build == "" {
			cfg.Build = b.Build
		}
		if cfg.Test == "" {
			cfg.Test = b.Test
		}
		if cfg.Run == "" {
			cfg.Run = b.Run
		}
	}
	for _, s := range r.summaries {
		cfg.KeyFiles = append(cfg.KeyFiles, s.Path)
	}
	cfg.Conventions = conventions(r.report)
	return cfg
}

func conventions(rep *scan.Report) []string {
	var out []string
	for _, tf := range rep.TestFrameworks {
		out = append(out, "Tests run with "+tf)
	}
	for _, c := range rep.ConfigFiles {
		if c == "Dockerfile" {
			out = append(out, "The service ships as a container image")
		}
		if strings.HasPrefix(c, ".github/workflows/") {
			out = append(out, "CI runs through GitHub Actions")
			break
		}
	}
	return out
}

// offlineArchitecture produces a non-empty summary from scan metadata
// alone. Used whenever inference is off or returned nothing.
func offlineArchitecture(rep *scan.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s contains %d files", rep.Name, rep.FileCount)
	if len(rep.Languages) > 0 {
		names := make([]string, 0, len(rep.Languages))
		for _, l := range rep.Languages {
			names = append(names, fmt.Sprintf("%s (%.1f%%)", l.Name, l.Share))
		}
		fmt.Fprintf(&b, ", written mainly in %s", strings.Join(names, ", "))
	}
	b.WriteString(".")
	if len(rep.Builds) > 0 {
		ecos := make([]string, 0, len(rep.Builds))
		for _, bd := range rep.Builds {
			ecos = append(ecos, bd.Ecosystem)
		}
		fmt.Fprintf(&b, " Build tooling: %s.", strings.Join(dedupe(ecos), ", "))
	}
	if eps := rep.EntryPoints; len(eps) > 0 {
		fmt.Fprintf(&b, " Entry points: %s.", strings.Join(eps, ", "))
	}
	if comps := rep.Components(); len(comps) > 0 {
		fmt.Fprintf(&b, " Top-level components: %s.", strings.Join(comps, ", "))
	}
	if len(rep.TestFrameworks) > 0 {
		fmt.Fprintf(&b, " Tests: %s.", strings.Join(rep.TestFrameworks, ", "))
	}
	return b.String()
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
