package scan

import (
	"math"
	"sort"
)

var extLanguage = map[string]string{
	".go":     "Go",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".mjs":    "JavaScript",
	".py":     "Python",
	".rs":     "Rust",
	".java":   "Java",
	".kt":     "Kotlin",
	".rb":     "Ruby",
	".php":    "PHP",
	".cs":     "C#",
	".c":      "C",
	".h":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".hpp":    "C++",
	".swift":  "Swift",
	".scala":  "Scala",
	".sh":     "Shell",
	".sql":    "SQL",
	".html":   "HTML",
	".css":    "CSS",
	".scss":   "CSS",
	".vue":    "Vue",
	".svelte": "Svelte",
}

// languageShares computes the per-language byte share over source files
// only, sorted by share descending. Shares are percentages rounded to
// one decimal.
func languageShares(files []FileMeta) []Language {
	type agg struct {
		files int
		bytes int64
	}
	byLang := map[string]*agg{}
	var total int64
	for _, f := range files {
		lang, ok := extLanguage[f.Ext]
		if !ok {
			continue
		}
		a := byLang[lang]
		if a == nil {
			a = &agg{}
			byLang[lang] = a
		}
		a.files++
		a.bytes += f.Size
		total += f.Size
	}
	if total == 0 {
		return nil
	}

	out := make([]Language, 0, len(byLang))
	for name, a := range byLang {
		share := math.Round(float64(a.bytes)/float64(total)*1000) / 10
		out = append(out, Language{Name: name, Files: a.files, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		return out[i].Name < out[j].Name
	})
	return out
}
