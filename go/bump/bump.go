/*
Copyright 2025 The IJ Update Bot Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bump derives the next plugin version from a platform upgrade.
package bump

import (
	"math"

	msemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/ij-update-bot/ij-update-bot/go/semver"
)

// ErrUnrepresentable is returned when a version cannot be incremented.
var ErrUnrepresentable = errors.New("version cannot be incremented")

type Component int

const (
	Patch Component = iota
	Minor
	Major
)

func (c Component) String() string {
	switch c {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	}

	return "unknown"
}

// Decide picks the plugin component to bump for a platform moving from current
// to latest. The highest changed platform component wins; a change confined to
// the extra group still counts as a patch.
//
//	Platform: 2022.3.2 -> 2023.1.0    Plugin: 0.2.6 -> 1.0.0
//	Platform: 2022.1.1 -> 2022.2.0    Plugin: 0.2.6 -> 0.3.0
//	Platform: 2022.3.2 -> 2022.3.3    Plugin: 0.2.6 -> 0.2.7
//	Platform: 2024.3.1 -> 2024.3.1.1  Plugin: 0.2.6 -> 0.2.7
func Decide(current, latest semver.Version) Component {
	switch {
	case latest.Major > current.Major:
		return Major
	case latest.Minor > current.Minor:
		return Minor
	case latest.Patch > current.Patch:
		return Patch
	}

	return Patch
}

// Increment bumps c in v, resetting the lower components and dropping any
// extra group. Zero and a component already at its maximum cannot be
// incremented.
func Increment(v semver.Version, c Component) (semver.Version, error) {
	if v.IsZero() {
		return semver.Zero, errors.Wrapf(ErrUnrepresentable, "failed to increment %s version of %s", c, v)
	}

	base := msemver.New(v.Major, v.Minor, v.Patch, "", "")

	var (
		next      msemver.Version
		component uint64
	)
	switch c {
	case Major:
		next, component = base.IncMajor(), v.Major
	case Minor:
		next, component = base.IncMinor(), v.Minor
	case Patch:
		next, component = base.IncPatch(), v.Patch
	default:
		return semver.Zero, errors.Wrapf(ErrUnrepresentable, "failed to increment %s version of %s", c, v)
	}

	if component == math.MaxUint64 {
		return semver.Zero, errors.Wrapf(ErrUnrepresentable, "%s version of %s overflows", c, v)
	}

	return semver.New(next.Major(), next.Minor(), next.Patch()), nil
}

// NextPluginVersion returns the plugin version to release alongside a platform
// upgrade from current to latest. Callers skip it when the platform is
// unchanged.
func NextPluginVersion(plugin, current, latest semver.Version) (semver.Version, error) {
	return Increment(plugin, Decide(current, latest))
}

// Engine exposes NextPluginVersion as a value for callers that take the bump
// rule as a dependency.
type Engine struct{}

func (Engine) NextPluginVersion(plugin, current, latest semver.Version) (semver.Version, error) {
	return NextPluginVersion(plugin, current, latest)
}
