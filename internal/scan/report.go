package scan

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FileMeta carries per-file metadata collected during the walk.
type FileMeta struct {
	// Repo-relative path using forward slashes (e.g., "src/app.go").
	Path string `json:"path"`
	// File size in bytes.
	Size int64 `json:"size"`
	// Newline count + 1 for text files under the read limit, 0 otherwise.
	Lines int `json:"lines,omitempty"`
	// Lowercased extension including the dot; empty for no-ext files.
	Ext     string    `json:"ext,omitempty"`
	ModTime time.Time `json:"-"`
}

// Language is one entry of the per-language byte share breakdown.
type Language struct {
	Name  string  `json:"name"`
	Files int     `json:"files"`
	Share float64 `json:"share"` // percent of source bytes, one decimal
}

// BuildDescriptor describes how one detected ecosystem is installed,
// built, tested and run.
type BuildDescriptor struct {
	Ecosystem string `json:"ecosystem"`
	Manifest  string `json:"manifest"`
	Install   string `json:"install,omitempty"`
	Build     string `json:"build,omitempty"`
	Test      string `json:"test,omitempty"`
	Run       string `json:"run,omitempty"`
}

// Technology is a detected stack element with the evidence that produced
// it. Evidence uses a "kind:value" form ("dependency:express",
// "file:Dockerfile", "ext:.ts") so it can be re-checked later.
type Technology struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Evidence string `json:"evidence"`
}

// Report is the full result of analyzing a repository.
type Report struct {
	Root           string            `json:"root"`
	Name           string            `json:"name"`
	FileCount      int               `json:"fileCount"`
	TotalBytes     int64             `json:"totalBytes"`
	Languages      []Language        `json:"languages"`
	Builds         []BuildDescriptor `json:"builds"`
	Dependencies   []string          `json:"dependencies"`
	EntryPoints    []string          `json:"entryPoints"`
	ConfigFiles    []string          `json:"configFiles"`
	TestFrameworks []string          `json:"testFrameworks"`
	Technologies   []Technology      `json:"technologies"`
	Tree           string            `json:"tree"`
	Files          []FileMeta        `json:"-"`
}

// readmePattern matches README, README.md, Readme.rst and friends.
var readmePattern = regexp.MustCompile(`(?i)^readme(\.[a-z]+)?$`)

// KeyFiles selects up to limit files worth reading first: manifests, then
// the README, then entry points, then the largest source files.
func (r *Report) KeyFiles(limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if p == "" || seen[p] || len(out) >= limit {
			return
		}
		if _, ok := r.find(p); !ok {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, b := range r.Builds {
		add(b.Manifest)
	}
	for _, f := range r.Files {
		if readmePattern.MatchString(path.Base(f.Path)) {
			add(f.Path)
			break
		}
	}
	for _, e := range r.EntryPoints {
		add(e)
	}

	bySize := make([]FileMeta, 0, len(r.Files))
	for _, f := range r.Files {
		if _, ok := extLanguage[f.Ext]; ok {
			bySize = append(bySize, f)
		}
	}
	sort.SliceStable(bySize, func(i, j int) bool { return bySize[i].Size > bySize[j].Size })
	for _, f := range bySize {
		add(f.Path)
	}
	return out
}

// Components returns the top-level directories that hold source files,
// for use as diagram nodes when no generated diagram is available.
func (r *Report) Components() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range r.Files {
		if _, ok := extLanguage[f.Ext]; !ok {
			continue
		}
		i := strings.IndexByte(f.Path, '/')
		if i < 0 {
			continue
		}
		seg := f.Path[:i]
		if seg == "" || strings.HasPrefix(seg, ".") || seen[seg] {
			continue
		}
		seen[seg] = true
		out = append(out, seg)
	}
	sort.Strings(out)
	return out
}

// Evidenced re-checks a technology's recorded evidence against the
// report. Entries whose evidence no longer holds should be dropped.
func (r *Report) Evidenced(t Technology) bool {
	kind, value, ok := strings.Cut(t.Evidence, ":")
	if !ok || value == "" {
		return false
	}
	switch kind {
	case "dependency":
		for _, d := range r.Dependencies {
			if strings.EqualFold(d, value) {
				return true
			}
		}
	case "file":
		for _, f := range r.Files {
			if strings.EqualFold(path.Base(f.Path), value) {
				return true
			}
			for _, seg := range strings.Split(path.Dir(f.Path), "/") {
				if strings.EqualFold(seg, value) {
					return true
				}
			}
		}
	case "ext":
		for _, f := range r.Files {
			if f.Ext == value {
				return true
			}
		}
	}
	return false
}

func (r *Report) find(p string) (FileMeta, bool) {
	for _, f := range r.Files {
		if f.Path == p {
			return f, true
		}
	}
	return FileMeta{}, false
}

// headlinePatterns pull the first meaningful line out of a file: a
// markdown heading, a comment, or failing those any non-blank line.
var (
	headingLine = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)
	commentLine = regexp.MustCompile(`(?m)^\s*(?://+|#|/\*+|\*)\s*([A-Za-z].*)$`)
	symbolDecl  = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:pub\s+)?(?:func|def|function|fn|class|interface|struct|type)\s+[A-Za-z_]`)
)

// Summarize builds a deterministic one-line description of a file from
// its first heading or comment plus rough declaration counts. Used when
// no inference backend is available.
func Summarize(rel string, content []byte) string {
	text := string(content)
	head := firstHeadline(rel, text)
	lines := strings.Count(text, "\n")
	if len(text) > 0 && !strings.HasSuffix(text, "\n") {
		lines++
	}
	decls := len(symbolDecl.FindAllString(text, -1))

	stats := fmt.Sprintf("%d lines", lines)
	if decls > 0 {
		stats += fmt.Sprintf(", %d declarations", decls)
	}
	if head == "" {
		return stats
	}
	return fmt.Sprintf("%s (%s)", head, stats)
}

func firstHeadline(rel, text string) string {
	if strings.HasSuffix(strings.ToLower(rel), ".md") {
		if m := headingLine.FindStringSubmatch(text); m != nil {
			return clip(m[1])
		}
	}
	if m := commentLine.FindStringSubmatch(text); m != nil {
		return clip(m[1])
	}
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return clip(l)
		}
	}
	return ""
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
