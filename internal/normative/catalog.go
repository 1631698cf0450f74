// Package normative maintains the catalog of electrical code profiles.
// The catalog is an explicit instance handed to the parameter resolver,
// never process-global state, so switching or reloading normatives can
// not interfere with a calculation already in flight.
package normative

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CableSizer/internal/model"
)

// UnknownNormativeError reports a lookup for a code the catalog does not
// hold. There is no silent substitution; leniency is GetOrDefault.
type UnknownNormativeError struct {
	Code      string
	Available []string
}

func (e *UnknownNormativeError) Error() string {
	return fmt.Sprintf("unknown normative %q (available: %v)", e.Code, e.Available)
}

// DefaultCode is the profile GetOrDefault falls back to.
const DefaultCode = "IEC"

// Catalog holds the registered normative profiles. Reads are
// copy-on-return: callers can never mutate catalog state through a
// profile they obtained from Get.
type Catalog struct {
	mu       sync.RWMutex
	profiles map[string]model.NormativeProfile
	path     string // optional YAML document layered over the builtins
}

// NewCatalog builds a catalog seeded with the builtin profiles.
func NewCatalog() *Catalog {
	c := &Catalog{profiles: make(map[string]model.NormativeProfile)}
	for _, p := range model.BuiltinProfiles() {
		c.profiles[p.Code] = p
	}
	return c
}

// LoadCatalog builds a catalog from the builtins plus a normatives YAML
// document. The file is remembered so Reload can re-read it later.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	c.path = path
	if err := c.loadFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// catalogDocument is the on-disk shape of a normatives file:
//
//	normativas:
//	  IEC:
//	    safety_factors: {...}
type catalogDocument struct {
	Normativas map[string]model.NormativeProfile `yaml:"normativas"`
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read normatives file: %w", err)
	}
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse normatives file: %w", err)
	}
	if len(doc.Normativas) == 0 {
		return fmt.Errorf("normatives file %s has no normativas mapping", path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for code, profile := range doc.Normativas {
		profile.Code = code
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("invalid profile in %s: %w", path, err)
		}
		c.profiles[code] = profile
	}
	slog.Info("normative catalog loaded", "path", path, "profiles", len(doc.Normativas))
	return nil
}

// Reload re-reads the catalog file over the builtins without a process
// restart. Catalogs created without a file reset to the builtins only.
func (c *Catalog) Reload() error {
	c.mu.Lock()
	c.profiles = make(map[string]model.NormativeProfile)
	for _, p := range model.BuiltinProfiles() {
		c.profiles[p.Code] = p
	}
	path := c.path
	c.mu.Unlock()

	if path == "" {
		return nil
	}
	return c.loadFile(path)
}

// Register adds or replaces a profile after validating it.
func (c *Catalog) Register(profile model.NormativeProfile) error {
	if profile.Code == "" {
		return fmt.Errorf("profile code must not be empty")
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[profile.Code] = profile
	return nil
}

// Get returns a deep copy of the profile for a code, or an
// UnknownNormativeError when the code is not registered.
func (c *Catalog) Get(code string) (model.NormativeProfile, error) {
	c.mu.RLock()
	profile, ok := c.profiles[code]
	c.mu.RUnlock()
	if !ok {
		return model.NormativeProfile{}, &UnknownNormativeError{Code: code, Available: c.Codes()}
	}
	return cloneProfile(profile)
}

// GetOrDefault is the opt-in lenient lookup: a miss logs a warning and
// returns the default profile instead of failing.
func (c *Catalog) GetOrDefault(code string) (model.NormativeProfile, error) {
	profile, err := c.Get(code)
	if err == nil {
		return profile, nil
	}
	slog.Warn("normative not found, using default", "requested", code, "default", DefaultCode)
	return c.Get(DefaultCode)
}

// Codes returns the registered codes in sorted order.
func (c *Catalog) Codes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	codes := make([]string, 0, len(c.profiles))
	for code := range c.profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// cloneProfile deep-copies a profile through its YAML representation,
// which is lossless for every profile field except the code.
func cloneProfile(p model.NormativeProfile) (model.NormativeProfile, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return model.NormativeProfile{}, fmt.Errorf("failed to clone profile %s: %w", p.Code, err)
	}
	var out model.NormativeProfile
	if err := yaml.Unmarshal(data, &out); err != nil {
		return model.NormativeProfile{}, fmt.Errorf("failed to clone profile %s: %w", p.Code, err)
	}
	out.Code = p.Code
	return out, nil
}
