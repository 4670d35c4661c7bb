// Package snapshot builds an immutable view of one target tree: the doctrine
// files found in it, their contents, and their symlink shape. Rules read
// snapshots and nothing else, which keeps every rule a pure function of the
// tree it was given.
package snapshot

import (
	"path/filepath"
	"strings"

	"doctrinecheck/internal/config"
)

// Canonical doctrine file names. Matching during the walk is case-insensitive
// so rules can report near-misses (e.g. agents.md) instead of silently
// ignoring them.
const (
	NameAgents      = "AGENTS.md"
	NameClaude      = "CLAUDE.md"
	NameGemini      = "GEMINI.md"
	NameCursorrules = ".cursorrules"
	NameChangelog   = "CHANGELOG.md"
)

var interestNames = map[string]string{
	strings.ToLower(NameAgents):      NameAgents,
	strings.ToLower(NameClaude):      NameClaude,
	strings.ToLower(NameGemini):      NameGemini,
	strings.ToLower(NameCursorrules): NameCursorrules,
	strings.ToLower(NameChangelog):   NameChangelog,
}

// File is one doctrine file captured during the walk.
type File struct {
	// RelPath is slash-separated and relative to the target root.
	RelPath string
	// Name is the base name exactly as it appears on disk.
	Name string
	// Content is read through symlinks; nil when the link is broken.
	Content []byte
	Size    int64

	IsSymlink bool
	// LinkTarget is the raw readlink value (may be relative).
	LinkTarget string
	// ResolvedTarget is the fully resolved absolute path, empty when the
	// link chain is broken.
	ResolvedTarget string
	LinkResolves   bool
}

// LineCount counts content lines. A trailing newline does not add a line;
// an empty file has zero lines.
func (f *File) LineCount() int {
	if f == nil || len(f.Content) == 0 {
		return 0
	}
	n := strings.Count(string(f.Content), "\n")
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// Snapshot is the read-only result of scanning one target tree.
type Snapshot struct {
	// Root is the path as given on the command line.
	Root string
	// AbsRoot is the absolute root with symlinks resolved; file resolution
	// comparisons are made against it.
	AbsRoot string
	// Files holds every matched doctrine file, ordered by RelPath.
	Files []File
	// Config is the parsed .doctrine.yml, nil when the target has none.
	Config *config.RepoConfig
}

// FileAtRoot returns the root-level file with the exact base name.
func (s *Snapshot) FileAtRoot(name string) (*File, bool) {
	for i := range s.Files {
		f := &s.Files[i]
		if f.RelPath == name {
			return f, true
		}
	}
	return nil, false
}

// RootMatch returns the root-level file matching name case-insensitively.
// Rules use it to distinguish "missing" from "present under the wrong casing".
func (s *Snapshot) RootMatch(name string) (*File, bool) {
	for i := range s.Files {
		f := &s.Files[i]
		if !strings.Contains(f.RelPath, "/") && strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return nil, false
}

// ResolvesToRootFile reports whether f is a symlink whose chain ends at the
// root-level file with the given canonical name.
func (s *Snapshot) ResolvesToRootFile(f *File, name string) bool {
	if f == nil || !f.IsSymlink || !f.LinkResolves {
		return false
	}
	return f.ResolvedTarget == filepath.Join(s.AbsRoot, name)
}
