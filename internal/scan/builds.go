package scan

import (
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"
)

// manifestBases maps known build manifests to their ecosystem. The first
// occurrence of each base name during the sorted walk wins, so a root
// manifest shadows nested ones.
var manifestBases = map[string]string{
	"package.json":     "node",
	"go.mod":           "go",
	"pyproject.toml":   "python",
	"requirements.txt": "python",
	"Cargo.toml":       "rust",
	"pom.xml":          "jvm",
	"build.gradle":     "jvm",
	"Makefile":         "make",
}

// detectBuilds fills Builds and Dependencies from every recognized
// manifest. Dependencies are merged across ecosystems, deduplicated and
// sorted.
func (s *Scanner) detectBuilds(rep *Report) {
	seenBase := map[string]bool{}
	depSet := map[string]bool{}

	for _, f := range rep.Files {
		base := path.Base(f.Path)
		if _, ok := manifestBases[base]; !ok || seenBase[base] {
			continue
		}
		seenBase[base] = true

		content, err := s.ReadFile(f.Path)
		if err != nil {
			continue
		}
		desc, deps := parseManifest(base, f.Path, content)
		if desc.Ecosystem != "" {
			rep.Builds = append(rep.Builds, desc)
		}
		for _, d := range deps {
			depSet[d] = true
		}
	}

	sort.Slice(rep.Builds, func(i, j int) bool {
		return rep.Builds[i].Manifest < rep.Builds[j].Manifest
	})
	for d := range depSet {
		rep.Dependencies = append(rep.Dependencies, d)
	}
	sort.Strings(rep.Dependencies)
}

func parseManifest(base, rel string, content []byte) (BuildDescriptor, []string) {
	switch base {
	case "package.json":
		return parsePackageJSON(rel, content)
	case "go.mod":
		return parseGoMod(rel, content)
	case "pyproject.toml":
		return parsePyProject(rel, content)
	case "requirements.txt":
		return parseRequirements(rel, content)
	case "Cargo.toml":
		return parseCargo(rel, content)
	case "pom.xml":
		return parsePOM(rel, content)
	case "build.gradle":
		return parseGradle(rel, content)
	case "Makefile":
		return parseMakefile(rel, content)
	}
	return BuildDescriptor{}, nil
}

type packageJSON struct {
	Name            string            `json:"name"`
	Main            string            `json:"main"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(rel string, content []byte) (BuildDescriptor, []string) {
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return BuildDescriptor{Ecosystem: "node", Manifest: rel, Install: "npm install"}, nil
	}
	desc := BuildDescriptor{Ecosystem: "node", Manifest: rel, Install: "npm install"}
	if _, ok := pkg.Scripts["build"]; ok {
		desc.Build = "npm run build"
	}
	if _, ok := pkg.Scripts["test"]; ok {
		desc.Test = "npm test"
	}
	switch {
	case pkg.Scripts["start"] != "":
		desc.Run = "npm start"
	case pkg.Scripts["dev"] != "":
		desc.Run = "npm run dev"
	case pkg.Main != "":
		desc.Run = "node " + pkg.Main
	}

	var deps []string
	for d := range pkg.Dependencies {
		deps = append(deps, d)
	}
	for d := range pkg.DevDependencies {
		deps = append(deps, d)
	}
	return desc, deps
}

var goRequire = regexp.MustCompile(`(?m)^\s*(?:require\s+)?([a-z0-9][\w./-]+)\s+v[\w.+-]+`)

func parseGoMod(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "go",
		Manifest:  rel,
		Install:   "go mod download",
		Build:     "go build ./...",
		Test:      "go test ./...",
	}
	var deps []string
	for _, m := range goRequire.FindAllStringSubmatch(string(content), -1) {
		if m[1] == "go" || m[1] == "module" {
			continue
		}
		deps = append(deps, m[1])
	}
	return desc, deps
}

var (
	pyProjectDeps = regexp.MustCompile(`(?s)dependencies\s*=\s*\[(.*?)\]`)
	pyDepName     = regexp.MustCompile(`["']([A-Za-z0-9][A-Za-z0-9._-]*)`)
)

func parsePyProject(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "python",
		Manifest:  rel,
		Install:   "pip install -e .",
		Build:     "python -m build",
	}
	var deps []string
	if m := pyProjectDeps.FindSubmatch(content); m != nil {
		for _, d := range pyDepName.FindAllStringSubmatch(string(m[1]), -1) {
			deps = append(deps, d[1])
		}
	}
	if containsFold(deps, "pytest") {
		desc.Test = "pytest"
	}
	return desc, deps
}

func parseRequirements(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "python",
		Manifest:  rel,
		Install:   "pip install -r requirements.txt",
	}
	var deps []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name := line
		for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<", "[", ";", " "} {
			if i := strings.Index(name, sep); i >= 0 {
				name = name[:i]
			}
		}
		if name != "" {
			deps = append(deps, name)
		}
	}
	if containsFold(deps, "pytest") {
		desc.Test = "pytest"
	}
	return desc, deps
}

var cargoSection = regexp.MustCompile(`(?m)^\[(dev-)?dependencies\]\s*$`)

func parseCargo(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "rust",
		Manifest:  rel,
		Install:   "cargo fetch",
		Build:     "cargo build",
		Test:      "cargo test",
		Run:       "cargo run",
	}
	var deps []string
	lines := strings.Split(string(content), "\n")
	inDeps := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDeps = cargoSection.MatchString(trimmed)
			continue
		}
		if !inDeps || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, ok := strings.Cut(trimmed, "="); ok {
			name = strings.TrimSpace(name)
			if name != "" {
				deps = append(deps, name)
			}
		}
	}
	return desc, deps
}

var pomArtifact = regexp.MustCompile(`<artifactId>\s*([^<\s]+)\s*</artifactId>`)

func parsePOM(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "jvm",
		Manifest:  rel,
		Install:   "mvn install",
		Build:     "mvn package",
		Test:      "mvn test",
	}
	seen := map[string]bool{}
	var deps []string
	for i, m := range pomArtifact.FindAllStringSubmatch(string(content), -1) {
		// first artifactId is the project itself
		if i == 0 || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		deps = append(deps, m[1])
	}
	return desc, deps
}

var gradleDep = regexp.MustCompile(`(?m)(?:implementation|api|testImplementation|compileOnly)\s*[('"]+[\w.-]+:([\w.-]+):`)

func parseGradle(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{
		Ecosystem: "jvm",
		Manifest:  rel,
		Install:   "./gradlew build",
		Build:     "./gradlew build",
		Test:      "./gradlew test",
	}
	var deps []string
	for _, m := range gradleDep.FindAllStringSubmatch(string(content), -1) {
		deps = append(deps, m[1])
	}
	return desc, deps
}

var makeTarget = regexp.MustCompile(`(?m)^([A-Za-z0-9_.-]+):(?:[^=]|$)`)

func parseMakefile(rel string, content []byte) (BuildDescriptor, []string) {
	desc := BuildDescriptor{Ecosystem: "make", Manifest: rel, Build: "make"}
	for _, m := range makeTarget.FindAllStringSubmatch(string(content), -1) {
		switch m[1] {
		case "test":
			desc.Test = "make test"
		case "install":
			desc.Install = "make install"
		case "run":
			desc.Run = "make run"
		}
	}
	return desc, nil
}

// entryCandidates lists well-known entry point paths per ecosystem, in
// reporting order.
var entryCandidates = []string{
	"main.go",
	"src/index.ts",
	"src/index.js",
	"src/main.ts",
	"src/main.js",
	"index.ts",
	"index.js",
	"main.py",
	"app.py",
	"src/main.py",
	"src/main.rs",
}

func entryPoints(rep *Report) []string {
	present := map[string]bool{}
	for _, f := range rep.Files {
		present[f.Path] = true
	}

	var out []string
	for _, c := range entryCandidates {
		if present[c] {
			out = append(out, c)
		}
	}
	// every cmd/<name>/main.go is an entry point
	for _, f := range rep.Files {
		if strings.HasPrefix(f.Path, "cmd/") && path.Base(f.Path) == "main.go" {
			out = append(out, f.Path)
		}
	}
	return dedupe(out)
}

var configBases = map[string]bool{
	"Dockerfile":         true,
	"docker-compose.yml": true,
	"docker-compose.yaml": true,
	".env.example":       true,
	"tsconfig.json":      true,
	".eslintrc.json":     true,
	".eslintrc.js":       true,
	".golangci.yml":      true,
	".editorconfig":      true,
	"Makefile":           true,
}

func configFiles(files []FileMeta) []string {
	var out []string
	for _, f := range files {
		base := path.Base(f.Path)
		if configBases[base] || strings.HasPrefix(f.Path, ".github/workflows/") {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out
}

func testFrameworks(rep *Report) []string {
	var out []string
	for _, f := range rep.Files {
		if strings.HasSuffix(f.Path, "_test.go") {
			out = append(out, "go test")
			break
		}
	}
	for _, name := range []string{"jest", "vitest", "mocha"} {
		if containsFold(rep.Dependencies, name) {
			out = append(out, name)
		}
	}
	if containsFold(rep.Dependencies, "pytest") {
		out = append(out, "pytest")
	} else {
		for _, f := range rep.Files {
			base := path.Base(f.Path)
			if base == "conftest.py" || (strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py")) {
				out = append(out, "pytest")
				break
			}
		}
	}
	for _, b := range rep.Builds {
		if b.Ecosystem == "rust" {
			out = append(out, "cargo test")
		}
	}
	if containsFold(rep.Dependencies, "junit") || containsFold(rep.Dependencies, "junit-jupiter") {
		out = append(out, "junit")
	}
	return dedupe(out)
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
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
