package model

import "testing"

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.DefaultNormative != "IEC" {
		t.Errorf("expected default normative IEC, got %s", cfg.DefaultNormative)
	}
	if cfg.DefaultClass != string(ClassDCStrings) {
		t.Errorf("expected default class dc_strings, got %s", cfg.DefaultClass)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := DefaultAppConfig()

	cfg.AddRecentProject("alpha")
	cfg.AddRecentProject("beta")
	cfg.AddRecentProject("alpha")

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 recent projects, got %d", len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "alpha" {
		t.Errorf("expected most recent 'alpha', got %s", cfg.RecentProjects[0])
	}
	if cfg.RecentProjects[1] != "beta" {
		t.Errorf("expected 'beta' second, got %s", cfg.RecentProjects[1])
	}
}

func TestAddRecentProject_Cap(t *testing.T) {
	cfg := DefaultAppConfig()
	for i := 0; i < 15; i++ {
		cfg.AddRecentProject(string(rune('a' + i)))
	}
	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Errorf("expected %d recent projects, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
}

func TestAddRecentProject_EmptyIgnored(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("")
	if len(cfg.RecentProjects) != 0 {
		t.Errorf("empty project id should be ignored, got %v", cfg.RecentProjects)
	}
}
