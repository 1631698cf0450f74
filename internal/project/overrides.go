// Package project persists per-project, per-stage overrides of normative
// parameters. Each project owns a directory; each calculation stage keeps
// one YAML fragment that the parameter resolver layers over the base
// normative profile.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// overrideVersion is the persisted document format version.
const overrideVersion = "1.0"

// Override is the persisted fragment for one (project, stage) pair.
// Sections holds partial normative sections keyed exactly like the
// profile's YAML shape, so the fragment round-trips losslessly.
type Override struct {
	ProjectID    string         `yaml:"project_id" json:"project_id"`
	Stage        string         `yaml:"stage" json:"stage"`
	BaseNorm     string         `yaml:"base_norm" json:"base_norm"`
	LastModified string         `yaml:"last_modified" json:"last_modified"`
	Version      string         `yaml:"version" json:"version"`
	Sections     map[string]any `yaml:"sections" json:"sections"`
}

// Store reads and writes override files under a projects root directory.
// Layout: <root>/<project>/normatives/<stage>.yaml.
type Store struct {
	Root string
}

// NewStore returns a store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// DefaultRoot returns the default projects directory, ~/.cablesizer/projects.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cablesizer", "projects")
}

func (s *Store) path(projectID, stage string) (string, error) {
	if err := validateKey(projectID); err != nil {
		return "", fmt.Errorf("invalid project id: %w", err)
	}
	if err := validateKey(stage); err != nil {
		return "", fmt.Errorf("invalid stage: %w", err)
	}
	return filepath.Join(s.Root, projectID, "normatives", stage+".yaml"), nil
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("must not be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%q contains path elements", key)
	}
	return nil
}

// Exists reports whether an override file is present for the pair.
func (s *Store) Exists(projectID, stage string) bool {
	path, err := s.path(projectID, stage)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the override for a (project, stage) pair.
// A missing file returns (nil, nil): absence is a normal state, the stage
// simply runs on the base normative.
func (s *Store) Load(projectID, stage string) (*Override, error) {
	path, err := s.path(projectID, stage)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read override file: %w", err)
	}
	var ov Override
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("failed to parse override file %s: %w", path, err)
	}
	return &ov, nil
}

// Save deep-merges new sections into the stored fragment (creating it on
// first save) and persists the result. The write goes to a temp file in
// the same directory followed by an atomic rename, so concurrent readers
// never observe a partial document and two saves cannot interleave.
func (s *Store) Save(projectID, stage, baseNorm string, sections map[string]any) (*Override, error) {
	path, err := s.path(projectID, stage)
	if err != nil {
		return nil, err
	}

	existing, err := s.Load(projectID, stage)
	if err != nil {
		return nil, err
	}
	merged := map[string]any{}
	if existing != nil && existing.Sections != nil {
		merged = existing.Sections
	}
	DeepMerge(merged, sections)

	ov := &Override{
		ProjectID:    projectID,
		Stage:        stage,
		BaseNorm:     baseNorm,
		LastModified: time.Now().UTC().Format(time.RFC3339),
		Version:      overrideVersion,
		Sections:     merged,
	}

	data, err := yaml.Marshal(ov)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal override: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create override directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+stage+"-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp override file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to write override file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to close override file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to replace override file: %w", err)
	}
	return ov, nil
}

// Delete removes the override, reverting the stage to the base normative.
// Deleting an absent override is not an error.
func (s *Store) Delete(projectID, stage string) error {
	path, err := s.path(projectID, stage)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete override file: %w", err)
	}
	return nil
}

// Stages lists the stages that have an override file for a project.
func (s *Store) Stages(projectID string) ([]string, error) {
	if err := validateKey(projectID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.Root, projectID, "normatives"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var stages []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasSuffix(name, ".yaml") && !strings.HasPrefix(name, ".") {
			stages = append(stages, strings.TrimSuffix(name, ".yaml"))
		}
	}
	return stages, nil
}
