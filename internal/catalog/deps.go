package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DependencyState is the outcome of checking one dependency.
type DependencyState string

// Dependency states.
const (
	DependencySatisfied   DependencyState = "satisfied"
	DependencyMissing     DependencyState = "missing"
	DependencyUnsatisfied DependencyState = "unsatisfied"
	DependencyInvalid     DependencyState = "invalid"
)

// DependencyCheck reports one dependency of a plugin against the catalog.
type DependencyCheck struct {
	Name       string          `json:"name"`
	Constraint string          `json:"constraint"`
	Available  string          `json:"available,omitempty"`
	State      DependencyState `json:"state"`
	Detail     string          `json:"detail,omitempty"`
}

// Dependent is a plugin that requires another one.
type Dependent struct {
	Plugin   Plugin
	Requires string
}

// ParseVersionConstraint parses a dependency range. A bare version is a minimum,
// so "1.2.0" means ">=1.2.0".
func ParseVersionConstraint(constraint string) (*semver.Constraints, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return nil, errors.New("empty version constraint")
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(constraint, "v")); err == nil {
		constraint = ">=" + constraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return c, nil
}

// SatisfiesConstraint reports whether version meets c.
func SatisfiesConstraint(version string, c *semver.Constraints) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return c.Check(v), nil
}

// CheckDependencies checks every dependency of p against the catalog, sorted by name.
func CheckDependencies(plugins []Plugin, p Plugin) []DependencyCheck {
	names := make([]string, 0, len(p.Dependencies))
	for name := range p.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DependencyCheck, 0, len(names))
	for _, name := range names {
		check := DependencyCheck{Name: name, Constraint: p.Dependencies[name]}

		dep, ok := Find(plugins, name)
		if !ok {
			check.State = DependencyMissing
			out = append(out, check)
			continue
		}
		check.Available = dep.Version

		c, err := ParseVersionConstraint(check.Constraint)
		if err != nil {
			check.State = DependencyInvalid
			check.Detail = err.Error()
			out = append(out, check)
			continue
		}

		ok, err = SatisfiesConstraint(dep.Version, c)
		switch {
		case err != nil:
			check.State = DependencyInvalid
			check.Detail = err.Error()
		case ok:
			check.State = DependencySatisfied
		default:
			check.State = DependencyUnsatisfied
		}
		out = append(out, check)
	}
	return out
}

// Dependents returns the plugins whose dependency map names name.
func Dependents(plugins []Plugin, name string) []Dependent {
	var out []Dependent
	for _, p := range plugins {
		if req, ok := p.Dependencies[name]; ok {
			out = append(out, Dependent{Plugin: p, Requires: req})
		}
	}
	return out
}
