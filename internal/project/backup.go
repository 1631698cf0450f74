package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupData is the top-level structure for export/import of one project's
// persisted overrides.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	ProjectID string               `json:"project_id"`
	Stages    map[string]*Override `json:"stages"`
}

// ExportProjectData exports every stage override of a project to a single
// JSON file at the specified path.
func ExportProjectData(store *Store, projectID, exportPath string) error {
	stages, err := store.Stages(projectID)
	if err != nil {
		return fmt.Errorf("failed to list project stages: %w", err)
	}

	backup := BackupData{
		Version:   overrideVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		ProjectID: projectID,
		Stages:    map[string]*Override{},
	}
	for _, stage := range stages {
		ov, err := store.Load(projectID, stage)
		if err != nil {
			return fmt.Errorf("failed to load stage %s: %w", stage, err)
		}
		if ov != nil {
			backup.Stages[stage] = ov
		}
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportProjectData reads a backup JSON file and returns the contained data.
// The caller decides whether to apply it via RestoreProjectData.
func ImportProjectData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.ProjectID == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing project_id field")
	}
	return backup, nil
}

// RestoreProjectData replaces a project's stage overrides with the backup
// contents. Existing stage files are removed first so the result matches
// the backup exactly instead of merging into prior state.
func RestoreProjectData(store *Store, backup BackupData) error {
	for stage, ov := range backup.Stages {
		if err := store.Delete(backup.ProjectID, stage); err != nil {
			return fmt.Errorf("failed to clear stage %s: %w", stage, err)
		}
		if ov == nil || len(ov.Sections) == 0 {
			continue
		}
		if _, err := store.Save(backup.ProjectID, stage, ov.BaseNorm, ov.Sections); err != nil {
			return fmt.Errorf("failed to restore stage %s: %w", stage, err)
		}
	}
	return nil
}
