package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied when the corresponding flag is not given
	DefaultNormative  string `json:"default_normative"`
	DefaultPanelModel string `json:"default_panel_model"`
	DefaultClass      string `json:"default_class"`

	// Application preferences
	ProjectsDir    string   `json:"projects_dir,omitempty"`
	RecentProjects []string `json:"recent_projects"`
}

// maxRecentProjects caps the recent project history.
const maxRecentProjects = 10

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultNormative:  "IEC",
		DefaultPanelModel: "Custom Panel",
		DefaultClass:      string(ClassDCStrings),
		RecentProjects:    []string{},
	}
}

// AddRecentProject records a project id at the front of the recent list,
// deduplicating and trimming to the history cap.
func (c *AppConfig) AddRecentProject(projectID string) {
	if projectID == "" {
		return
	}
	recent := []string{projectID}
	for _, p := range c.RecentProjects {
		if p != projectID {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}
