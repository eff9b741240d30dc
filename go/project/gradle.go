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

package project

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ij-update-bot/ij-update-bot/go/semver"
)

const (
	GradlePropertiesFile = "gradle.properties"
	DefaultVersionKey    = "pluginVersion"

	platformVersionKey     = "platformVersion"
	verifierIdeVersionsKey = "pluginVerifierIdeVersions"
	sinceBuildKey          = "pluginSinceBuild"
	untilBuildKey          = "pluginUntilBuild"
)

// Bumper computes the plugin version to release with a platform upgrade.
type Bumper interface {
	NextPluginVersion(plugin, current, latest semver.Version) (semver.Version, error)
}

// GradleUpdater rewrites the version properties of a gradle.properties file.
type GradleUpdater struct {
	Path string
	// VersionKey names the plugin version property. Defaults to DefaultVersionKey.
	VersionKey string
	Bumper     Bumper
}

type GradleResult struct {
	CurrentPlatform     semver.Version
	PluginVersion       semver.Version
	NextPluginVersion   semver.Version
	VerifierIdeVersions []semver.Version
	// Changed is false when the platform is already at the latest version.
	Changed bool
}

// Update moves the project to the latest platform version. buildBranch feeds
// pluginSinceBuild/pluginUntilBuild and may be empty.
//
// Nothing is computed or written when the current platform version equals
// latest.
func (u *GradleUpdater) Update(ctx context.Context, latest semver.Version, buildBranch string) (*GradleResult, error) {
	logger := zerolog.Ctx(ctx)
	key := u.VersionKey
	if key == "" {
		key = DefaultVersionKey
	}

	info, err := os.Stat(u.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to stat %s", u.Path)
	}

	data, err := os.ReadFile(u.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s", u.Path)
	}

	var props Store
	if props, err = ParseProperties(string(data)); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %s", u.Path)
	}

	rawPlatform, ok := props.Get(platformVersionKey)
	if !ok {
		return nil, errors.Errorf("no %s found in %s", platformVersionKey, u.Path)
	}

	current, err := semver.Normalize(rawPlatform)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %s in %s", platformVersionKey, u.Path)
	}

	result := &GradleResult{CurrentPlatform: current}
	if rawVerifier, ok := props.Get(verifierIdeVersionsKey); ok {
		result.VerifierIdeVersions = semver.NormalizeList(rawVerifier)
	}

	logger.Debug().Msgf("current platform %s, latest platform %s, verifier IDEs %v", current, latest, result.VerifierIdeVersions)

	if current.Equal(latest) {
		logger.Debug().Msgf("%s already at platform %s", u.Path, latest)
		return result, nil
	}

	rawPlugin, _ := props.Get(key)
	plugin, err := semver.Normalize(rawPlugin)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %s in %s", key, u.Path)
	}
	result.PluginVersion = plugin

	next, err := u.Bumper.NextPluginVersion(plugin, current, latest)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to compute the next %s from %s", key, plugin)
	}
	result.NextPluginVersion = next

	logger.Debug().Msgf("%s: %s -> %s", key, plugin, next)

	text := string(data)
	if text, ok = replaceProperty(text, key, rawPlugin, next.String(), false); !ok {
		return nil, errors.Wrapf(ErrNotRewritten, "%s = %s in %s", key, rawPlugin, u.Path)
	}
	if text, ok = replaceProperty(text, platformVersionKey, rawPlatform, latest.Identifier(), false); !ok {
		return nil, errors.Wrapf(ErrNotRewritten, "%s = %s in %s", platformVersionKey, rawPlatform, u.Path)
	}

	// The verifier list and build range are best effort.
	text, _ = replaceProperty(text, verifierIdeVersionsKey, current.Identifier(), latest.Identifier(), true)
	if buildBranch != "" {
		if since, ok := props.Get(sinceBuildKey); ok {
			text, _ = replaceProperty(text, sinceBuildKey, since, buildBranch, false)
		}
		if until, ok := props.Get(untilBuildKey); ok {
			text, _ = replaceProperty(text, untilBuildKey, until, buildBranch+".*", false)
		}
	}

	if text == string(data) {
		return result, nil
	}

	if err := os.WriteFile(u.Path, []byte(text), info.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(err, "Failed to write %s", u.Path)
	}

	result.Changed = true
	logger.Debug().Msgf("wrote %s:\n%s", u.Path, strings.TrimSpace(text))

	return result, nil
}
