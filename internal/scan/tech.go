package scan

import (
	"path"
	"sort"
	"strings"
)

// techRule maps observable evidence (a dependency, a file base name or
// an extension) to a named technology. The first matching source is
// recorded as the evidence string.
type techRule struct {
	name     string
	category string
	deps     []string
	files    []string
	exts     []string
}

var techRules = []techRule{
	{name: "React", category: "framework", deps: []string{"react"}},
	{name: "Next.js", category: "framework", deps: []string{"next"}},
	{name: "Express", category: "framework", deps: []string{"express"}},
	{name: "Vue", category: "framework", deps: []string{"vue"}, exts: []string{".vue"}},
	{name: "Svelte", category: "framework", deps: []string{"svelte"}, exts: []string{".svelte"}},
	{name: "Django", category: "framework", deps: []string{"django"}},
	{name: "Flask", category: "framework", deps: []string{"flask"}},
	{name: "FastAPI", category: "framework", deps: []string{"fastapi"}},
	{name: "Spring", category: "framework", deps: []string{"spring-boot-starter", "spring-core"}},
	{name: "TypeScript", category: "language", deps: []string{"typescript"}, exts: []string{".ts", ".tsx"}},
	{name: "Go", category: "language", files: []string{"go.mod"}},
	{name: "Rust", category: "language", files: []string{"Cargo.toml"}},
	{name: "Python", category: "language", files: []string{"pyproject.toml", "requirements.txt"}},
	{name: "PostgreSQL", category: "database", deps: []string{"pg", "pgx", "lib/pq", "psycopg2", "psycopg2-binary", "postgres"}},
	{name: "MySQL", category: "database", deps: []string{"mysql", "mysql2", "go-sql-driver/mysql"}},
	{name: "MongoDB", category: "database", deps: []string{"mongodb", "mongoose", "pymongo"}},
	{name: "Redis", category: "database", deps: []string{"redis", "go-redis", "ioredis"}},
	{name: "SQLite", category: "database", deps: []string{"sqlite3", "better-sqlite3", "mattn/go-sqlite3"}},
	{name: "Docker", category: "infrastructure", files: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"}},
	{name: "GitHub Actions", category: "infrastructure", files: []string{"workflows"}},
	{name: "Kafka", category: "infrastructure", deps: []string{"kafkajs", "kafka-python", "sarama"}},
	{name: "GraphQL", category: "api", deps: []string{"graphql", "apollo-server", "graphene"}},
	{name: "gRPC", category: "api", deps: []string{"grpc", "grpcio", "google.golang.org/grpc"}},
	{name: "Jest", category: "testing", deps: []string{"jest"}},
	{name: "Vitest", category: "testing", deps: []string{"vitest"}},
	{name: "pytest", category: "testing", deps: []string{"pytest"}},
	{name: "Webpack", category: "build", deps: []string{"webpack"}},
	{name: "Vite", category: "build", deps: []string{"vite"}},
	{name: "esbuild", category: "build", deps: []string{"esbuild"}},
}

func detectTechnologies(rep *Report) []Technology {
	baseSet := map[string]bool{}
	extSet := map[string]bool{}
	for _, f := range rep.Files {
		baseSet[strings.ToLower(path.Base(f.Path))] = true
		if f.Ext != "" {
			extSet[f.Ext] = true
		}
		// directory evidence is matched on the segment, not the base
		for _, seg := range strings.Split(path.Dir(f.Path), "/") {
			baseSet[strings.ToLower(seg)] = true
		}
	}

	var out []Technology
	for _, rule := range techRules {
		if t, ok := rule.match(rep, baseSet, extSet); ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r techRule) match(rep *Report, baseSet, extSet map[string]bool) (Technology, bool) {
	for _, dep := range r.deps {
		for _, have := range rep.Dependencies {
			if depMatches(have, dep) {
				return Technology{Name: r.name, Category: r.category, Evidence: "dependency:" + have}, true
			}
		}
	}
	for _, f := range r.files {
		if baseSet[strings.ToLower(f)] {
			return Technology{Name: r.name, Category: r.category, Evidence: "file:" + f}, true
		}
	}
	for _, ext := range r.exts {
		if extSet[ext] {
			return Technology{Name: r.name, Category: r.category, Evidence: "ext:" + ext}, true
		}
	}
	return Technology{}, false
}

// depMatches compares a recorded dependency against a rule name. Module
// paths match on their last segment so "jackc/pgx/v5" satisfies "pgx".
func depMatches(have, want string) bool {
	if strings.EqualFold(have, want) {
		return true
	}
	if !strings.Contains(have, "/") {
		return false
	}
	segs := strings.Split(strings.ToLower(have), "/")
	want = strings.ToLower(want)
	for _, seg := range segs {
		if seg == want {
			return true
		}
	}
	// "lib/pq" style two-segment rule names
	return strings.HasSuffix(strings.ToLower(have), "/"+want) || strings.Contains(strings.ToLower(have), "/"+want+"/")
}
