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
	"fmt"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ij-update-bot/ij-update-bot/go/semver"
)

const ChangelogFile = "CHANGELOG.md"

var changedSectionRegexp = regexp.MustCompile(`(?m)^### Changed$`)

func UpgradeLine(current, latest semver.Version) string {
	return fmt.Sprintf("- Upgrading IntelliJ from %s to %s", current.Identifier(), latest.Identifier())
}

// UpdateChangelog records the platform upgrade under the first "### Changed"
// heading, which is the Unreleased section in a keep-a-changelog file. It
// reports whether the file was rewritten; a file that already mentions the
// upgrade is left alone.
func UpdateChangelog(ctx context.Context, path string, current, latest semver.Version) (bool, error) {
	logger := zerolog.Ctx(ctx)
	line := UpgradeLine(current, latest)

	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(err, "Failed to stat %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "Failed to read %s", path)
	}

	if regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(line) + `$`).Match(data) {
		logger.Info().Msgf("Skipping %s, already found %q in file", path, line)
		return false, nil
	}

	loc := changedSectionRegexp.FindIndex(data)
	if loc == nil {
		logger.Warn().Msgf("No \"### Changed\" section in %s, not recording the upgrade", path)
		return false, nil
	}

	out := make([]byte, 0, len(data)+len(line)+1)
	out = append(out, data[:loc[1]]...)
	out = append(out, '\n')
	out = append(out, line...)
	out = append(out, data[loc[1]:]...)

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, errors.Wrapf(err, "Failed to write %s", path)
	}

	return true, nil
}
