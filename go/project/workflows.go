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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ij-update-bot/ij-update-bot/go/semver"
)

const DefaultVerifierAction = "ChrisCarini/intellij-platform-plugin-verifier-action"

type workflowFile struct {
	Jobs map[string]struct {
		Steps []struct {
			Uses string `yaml:"uses"`
		} `yaml:"steps"`
	} `yaml:"jobs"`
}

// WorkflowUpdater bumps the IDE versions passed to the plugin verifier action
// in the GitHub workflows of a project.
type WorkflowUpdater struct {
	// Dir is the project root.
	Dir string
	// Action is the verifier action reference without "@ref". Defaults to
	// DefaultVerifierAction.
	Action string
}

func (u *WorkflowUpdater) action() string {
	if u.Action == "" {
		return DefaultVerifierAction
	}

	return u.Action
}

// Files returns the workflow files that use the verifier action.
func (u *WorkflowUpdater) Files(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := filepath.Glob(filepath.Join(u.Dir, ".github", "workflows", "*"))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list workflow files")
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to stat %s", path)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read %s", path)
		}

		uses, err := usesAction(data, u.action())
		if err != nil {
			logger.Warn().Err(err).Msgf("Failed to parse workflow %s, falling back to a text search", path)
			uses = bytes.Contains(data, []byte("uses: "+u.action()))
		}

		if uses {
			files = append(files, path)
		}
	}

	logger.Debug().Msgf("Found %d of %d workflow files using %s", len(files), len(paths), u.action())
	return files, nil
}

func usesAction(data []byte, action string) (bool, error) {
	var wf workflowFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return false, err
	}

	for _, job := range wf.Jobs {
		for _, step := range job.Steps {
			ref, _, _ := strings.Cut(step.Uses, "@")
			if strings.EqualFold(ref, action) {
				return true, nil
			}
		}
	}

	return false, nil
}

// Update replaces ideaIC:<current> and ideaIU:<current> with the latest
// platform identifier and returns the files it rewrote.
func (u *WorkflowUpdater) Update(ctx context.Context, current, latest semver.Version) ([]string, error) {
	files, err := u.Files(ctx)
	if err != nil {
		return nil, err
	}

	re := regexp.MustCompile(`(ideaI[CU]):` + regexp.QuoteMeta(current.Identifier()) + `([^\w.]|$)`)
	repl := "${1}:" + latest.Identifier() + "${2}"

	var changed []string
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to stat %s", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read %s", path)
		}

		out := re.ReplaceAll(data, []byte(repl))
		if bytes.Equal(out, data) {
			continue
		}

		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return nil, errors.Wrapf(err, "Failed to write %s", path)
		}

		changed = append(changed, path)
	}

	return changed, nil
}
