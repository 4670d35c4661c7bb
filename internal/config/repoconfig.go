package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RepoConfigFileName is the optional per-target configuration file, located at
// the target root.
const RepoConfigFileName = ".doctrine.yml"

// RepoConfig carries per-target settings read from .doctrine.yml.
//
// Waivers acknowledge known findings so they stop failing the run; they never
// hide the result, a waived failure is reported as PASS with a waiver message.
type RepoConfig struct {
	Waivers []Waiver `yaml:"waivers"`
	Exclude []string `yaml:"exclude"`
}

type Waiver struct {
	Rule   string `yaml:"rule"`
	Reason string `yaml:"reason"`
}

// LoadRepoConfig reads .doctrine.yml from the given target root. A missing
// file is not an error; it returns a nil config.
func LoadRepoConfig(root string) (*RepoConfig, error) {
	path := filepath.Join(root, RepoConfigFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", RepoConfigFileName)
	}

	var rc RepoConfig
	if err := yaml.Unmarshal(raw, &rc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", RepoConfigFileName)
	}

	for i, w := range rc.Waivers {
		rc.Waivers[i].Rule = strings.TrimSpace(w.Rule)
		if rc.Waivers[i].Rule == "" {
			return nil, errors.Errorf("%s: waiver %d has an empty rule id", RepoConfigFileName, i+1)
		}
	}
	for _, pat := range rc.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, errors.Errorf("%s: invalid exclude pattern %q", RepoConfigFileName, pat)
		}
	}

	return &rc, nil
}

// WaiverFor returns the waiver entry for the given rule id, if any.
func (rc *RepoConfig) WaiverFor(ruleID string) (Waiver, bool) {
	if rc == nil {
		return Waiver{}, false
	}
	for _, w := range rc.Waivers {
		if w.Rule == ruleID {
			return w, true
		}
	}
	return Waiver{}, false
}
