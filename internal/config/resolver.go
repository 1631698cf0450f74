// Package config builds the effective calculation configuration for one
// sizing request by layering parameter sources: base normative profile,
// persisted project-stage overrides, ad-hoc caller overrides, and the
// panel's electrical data.
package config

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CableSizer/internal/model"
	"github.com/piwi3910/CableSizer/internal/normative"
	"github.com/piwi3910/CableSizer/internal/panel"
	"github.com/piwi3910/CableSizer/internal/project"
)

// Request describes one configuration resolution.
type Request struct {
	ProjectID  string
	Normative  string
	Stage      string
	PanelModel string

	// AmbientTempC is an explicit ambient override; it wins over both the
	// stage override file and the normative's design ambient.
	AmbientTempC *float64

	// AdHoc carries call-specific override sections in the profile's YAML
	// shape. They apply on top of the persisted overrides and are never
	// persisted themselves.
	AdHoc map[string]any
}

// Resolver merges the parameter layers into one CalculationConfig.
// It performs no writes: saving or deleting overrides is a separate
// path on the project store.
type Resolver struct {
	Catalog   *normative.Catalog
	Overrides *project.Store // optional; nil disables the persisted layer
	Panels    panel.Lookup
}

// Resolve produces the flattened configuration plus traceability
// metadata. Calling it twice with identical inputs and unchanged stores
// yields an identical configuration.
func (r *Resolver) Resolve(req Request) (model.CalculationConfig, error) {
	profile, err := r.Catalog.Get(req.Normative)
	if err != nil {
		return model.CalculationConfig{}, err
	}

	meta := model.ConfigMetadata{
		Normative: profile.Code,
		ProjectID: req.ProjectID,
		Stage:     req.Stage,
	}

	base, err := profileToMap(profile)
	if err != nil {
		return model.CalculationConfig{}, err
	}

	if r.Overrides != nil && req.ProjectID != "" && req.Stage != "" {
		ov, err := r.Overrides.Load(req.ProjectID, req.Stage)
		if err != nil {
			return model.CalculationConfig{}, fmt.Errorf("failed to load project overrides: %w", err)
		}
		if ov != nil && len(ov.Sections) > 0 {
			meta.OverridesApplied = true
			meta.OverriddenSections = project.DeepMerge(base, ov.Sections)
			meta.OverrideLastChanged = ov.LastModified
			slog.Debug("project overrides applied",
				"project", req.ProjectID, "stage", req.Stage, "sections", meta.OverriddenSections)
		}
	}

	if len(req.AdHoc) > 0 {
		meta.AdHocSections = project.DeepMerge(base, req.AdHoc)
	}

	effective, err := mapToProfile(base, profile.Code)
	if err != nil {
		return model.CalculationConfig{}, err
	}
	if err := effective.ValidateStructure(); err != nil {
		return model.CalculationConfig{}, fmt.Errorf("effective configuration invalid: %w", err)
	}

	p, err := r.Panels.Lookup(req.PanelModel)
	if err != nil {
		return model.CalculationConfig{}, err
	}
	meta.PanelModel = p.Model

	return model.CalculationConfig{
		Panel: model.PanelSpec{
			Model:     p.Model,
			IscA:      p.IscA,
			VocV:      p.VocV,
			PowerStcW: p.PowerStcW,
		},
		Safety:       effective.SafetyFactors,
		Cable:        effective.Cable,
		Installation: effective.Installation,
		Temperature:  effective.TemperatureDerating,
		Grouping:     effective.GroupingDerating,
		VoltageDrop:  effective.VoltageDrop.Sanitized(),
		Sections:     effective.CommercialSections,
		AmbientTempC: req.AmbientTempC,
		Metadata:     meta,
	}, nil
}

// profileToMap converts a typed profile into the generic section mapping
// the merge layers operate on, through its YAML representation.
func profileToMap(p model.NormativeProfile) (map[string]any, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile %s: %w", p.Code, err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", p.Code, err)
	}
	return out, nil
}

// mapToProfile converts the merged section mapping back into the typed
// profile, recovering compile-time structure over the parameter tree.
func mapToProfile(m map[string]any, code string) (model.NormativeProfile, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return model.NormativeProfile{}, fmt.Errorf("failed to encode merged configuration: %w", err)
	}
	var p model.NormativeProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.NormativeProfile{}, fmt.Errorf("failed to decode merged configuration: %w", err)
	}
	p.Code = code
	return p, nil
}
