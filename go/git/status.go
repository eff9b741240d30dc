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

package git

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// ModifiedFiles lists tracked files with staged or unstaged modifications.
// Untracked, added and deleted files are not reported.
func (r *Repo) ModifiedFiles() ([]string, error) {
	repo, err := gogit.PlainOpenWithOptions(r.LocalDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open repository at %s", r.LocalDir)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open worktree at %s", r.LocalDir)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get status of %s", r.LocalDir)
	}

	var files []string
	for path, s := range status {
		if s.Staging == gogit.Modified || s.Worktree == gogit.Modified {
			files = append(files, path)
		}
	}
	sort.Strings(files)

	return files, nil
}
