// Package scan collects repository metadata: language shares, build
// descriptors, dependencies, entry points and a directory tree. All
// reads stay confined to the repository root and go through a small
// LRU cache so key files are read once per run.
package scan

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"gangplank/internal/safeio"
)

const (
	// maxReadBytes caps every content read; large files are truncated.
	maxReadBytes = 128 << 10
	cacheSize    = 256
	maxTreePaths = 400
)

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".next":        true,
	".cache":       true,
}

// Scanner analyzes one repository root.
type Scanner struct {
	fs    *safeio.FS
	cache *lru.Cache[string, []byte]
}

// New returns a Scanner rooted at dir. All subsequent reads are
// confined to that root.
func New(dir string) (*Scanner, error) {
	cfs, err := safeio.New(dir)
	if err != nil {
		return nil, errors.Wrap(err, "open repository root")
	}
	c, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{fs: cfs, cache: c}, nil
}

// Root returns the resolved repository root.
func (s *Scanner) Root() string { return s.fs.Root() }

// ReadFile returns up to maxReadBytes of a repo-relative file, caching
// the result. Callers must not mutate the returned slice.
func (s *Scanner) ReadFile(rel string) ([]byte, error) {
	if b, ok := s.cache.Get(rel); ok {
		return b, nil
	}
	b, err := s.fs.ReadFileLimit(rel, maxReadBytes)
	if err != nil {
		return nil, err
	}
	s.cache.Add(rel, b)
	return b, nil
}

// Analyze walks the repository and assembles the full Report.
func (s *Scanner) Analyze(ctx context.Context) (*Report, error) {
	rep := &Report{
		Root: s.fs.Root(),
		Name: filepath.Base(s.fs.Root()),
	}

	err := s.walk(ctx, ".", func(rel string, info fs.FileInfo) {
		ext := strings.ToLower(path.Ext(rel))
		if binaryExts[ext] {
			return
		}
		meta := FileMeta{
			Path:    rel,
			Size:    info.Size(),
			Ext:     ext,
			ModTime: info.ModTime(),
		}
		if _, ok := extLanguage[ext]; ok && info.Size() <= maxReadBytes {
			if b, e := s.ReadFile(rel); e == nil {
				meta.Lines = countLines(b)
			}
		}
		rep.Files = append(rep.Files, meta)
		rep.FileCount++
		rep.TotalBytes += info.Size()
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan repository")
	}

	rep.Languages = languageShares(rep.Files)
	s.detectBuilds(rep)
	rep.EntryPoints = entryPoints(rep)
	rep.ConfigFiles = configFiles(rep.Files)
	rep.TestFrameworks = testFrameworks(rep)
	rep.Technologies = detectTechnologies(rep)
	rep.Tree = renderTree(rep)
	return rep, nil
}

// walk visits every regular file under dir in sorted order, skipping
// dependency and VCS directories. Symlinks are not followed.
func (s *Scanner) walk(ctx context.Context, dir string, visit func(rel string, info fs.FileInfo)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		rel := path.Join(dir, e.Name())
		if e.IsDir() {
			if skipDirs[e.Name()] {
				continue
			}
			if err := s.walk(ctx, rel, visit); err != nil {
				return err
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		visit(rel, info)
	}
	return nil
}

func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := strings.Count(string(b), "\n")
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".bmp": true, ".tiff": true, ".svg": true,
	".mp4": true, ".m4v": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true,
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true,
	".pdf": true, ".zip": true, ".jar": true, ".gz": true, ".tgz": true,
	".bz2": true, ".7z": true, ".exe": true, ".dll": true, ".dylib": true,
	".so": true, ".woff": true, ".woff2": true, ".bin": true,
}

func renderTree(rep *Report) string {
	paths := make([]string, 0, len(rep.Files))
	for _, f := range rep.Files {
		paths = append(paths, f.Path)
		if len(paths) >= maxTreePaths {
			break
		}
	}
	return Tree(paths)
}
