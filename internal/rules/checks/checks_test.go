package checks

import (
	"path/filepath"

	"doctrinecheck/internal/snapshot"
)

// Test fixtures are built in memory; the scanner has its own filesystem
// tests. AbsRoot is a fixed absolute path so symlink resolution comparisons
// behave like they do on a real tree.

const testRoot = "/repo"

func snapWithFiles(files ...snapshot.File) *snapshot.Snapshot {
	return &snapshot.Snapshot{Root: testRoot, AbsRoot: testRoot, Files: files}
}

func regularFile(rel, content string) snapshot.File {
	return snapshot.File{
		RelPath: rel,
		Name:    filepath.Base(rel),
		Content: []byte(content),
		Size:    int64(len(content)),
	}
}

func symlinkTo(rel, target string, resolvesTo string) snapshot.File {
	f := snapshot.File{
		RelPath:    rel,
		Name:       filepath.Base(rel),
		IsSymlink:  true,
		LinkTarget: target,
	}
	if resolvesTo != "" {
		f.ResolvedTarget = resolvesTo
		f.LinkResolves = true
	}
	return f
}
