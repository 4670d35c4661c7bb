package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"doctrinecheck/internal/config"
	"doctrinecheck/internal/logger"
)

// Sentinel errors for fatal scan failures. Both abort the run (exit code 2);
// non-conformance is never reported through them.
var (
	ErrPathNotFound = errors.New("path not found")
	ErrPermission   = errors.New("path not readable")
)

// ignoredDirs is the fixed denylist of directories never descended into.
var ignoredDirs = map[string]struct{}{
	".git":        {},
	".hg":         {},
	".svn":        {},
	"node_modules": {},
	"vendor":      {},
	".venv":       {},
	"venv":        {},
	"__pycache__": {},
	".tox":        {},
	"dist":        {},
	"build":       {},
	"target":      {},
	".terraform":  {},
	".cache":      {},
	".idea":       {},
}

// Scanner walks a target tree and produces a Snapshot. It performs read-only
// filesystem access and nothing else.
type Scanner struct {
	exclude []string
}

// NewScanner creates a Scanner with extra exclude patterns (doublestar syntax,
// matched against slash-separated paths relative to the target root). Patterns
// from the target's .doctrine.yml are added on top at scan time.
func NewScanner(exclude ...string) *Scanner {
	return &Scanner{exclude: exclude}
}

// Scan builds the snapshot for root. It fails with ErrPathNotFound or
// ErrPermission when the root itself is unusable; files that disappear or
// become unreadable mid-walk are logged and skipped instead.
func (s *Scanner) Scan(ctx context.Context, root string) (*Snapshot, error) {
	log := logger.G(ctx).WithField("target", root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, classifyAccessError(err, root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrPathNotFound, "%s is not a directory", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", root)
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	rc, err := config.LoadRepoConfig(root)
	if err != nil {
		return nil, err
	}

	patterns := append([]string(nil), s.exclude...)
	if rc != nil {
		patterns = append(patterns, rc.Exclude...)
	}

	snap := &Snapshot{
		Root:    root,
		AbsRoot: absRoot,
		Config:  rc,
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == root || filepath.Clean(path) == filepath.Clean(root) {
				return classifyAccessError(err, root)
			}
			log.WithError(err).WithField("path", path).Debug("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if _, ignored := ignoredDirs[d.Name()]; ignored {
				log.WithField("dir", rel).Debug("skipping ignored directory")
				return filepath.SkipDir
			}
			if matchesAny(patterns, rel) {
				log.WithField("dir", rel).Debug("skipping excluded directory")
				return filepath.SkipDir
			}
			return nil
		}

		if _, interesting := interestNames[strings.ToLower(d.Name())]; !interesting {
			return nil
		}
		if matchesAny(patterns, rel) {
			log.WithField("file", rel).Debug("skipping excluded file")
			return nil
		}

		snap.Files = append(snap.Files, s.captureFile(log, absRoot, path, rel, d))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return snap, nil
}

func (s *Scanner) captureFile(log *logrus.Entry, absRoot, path, rel string, d fs.DirEntry) File {
	f := File{
		RelPath: rel,
		Name:    d.Name(),
	}

	if d.Type()&fs.ModeSymlink != 0 {
		f.IsSymlink = true
		if target, err := os.Readlink(path); err == nil {
			f.LinkTarget = target
		}
		if resolved, err := filepath.EvalSymlinks(filepath.Join(absRoot, filepath.FromSlash(rel))); err == nil {
			f.ResolvedTarget = resolved
			f.LinkResolves = true
		}
	}

	// Content follows symlinks; a broken link simply has no content.
	content, err := os.ReadFile(path)
	if err != nil {
		if !f.IsSymlink {
			// The file vanished or became unreadable between the walk and the
			// read; record its presence without content.
			log.WithError(err).WithField("file", rel).Debug("file became unreadable during scan")
		}
	} else {
		f.Content = content
		f.Size = int64(len(content))
	}

	return f
}

func matchesAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func classifyAccessError(err error, root string) error {
	switch {
	case os.IsNotExist(err):
		return errors.Wrapf(ErrPathNotFound, "%s", root)
	case os.IsPermission(err):
		return errors.Wrapf(ErrPermission, "%s", root)
	default:
		return errors.Wrapf(err, "failed to access %s", root)
	}
}
