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
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir
}

func TestModifiedFiles(t *testing.T) {
	t.Parallel()

	dir := initRepo(t, map[string]string{
		"gradle.properties": "platformVersion = 2024.3\n",
		"CHANGELOG.md":      "# Changelog\n",
		"README.md":         "# Readme\n",
	})
	r := NewRepo("acme", "plugin").WithLocalDir(dir)

	files, err := r.ModifiedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gradle.properties"), []byte("platformVersion = 2025.1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), []byte("# Changelog\n- upgrade\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("new"), 0o644))

	files, err = r.ModifiedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"CHANGELOG.md", "gradle.properties"}, files)
}

func TestModifiedFilesNotARepo(t *testing.T) {
	t.Parallel()

	_, err := NewRepo("acme", "plugin").WithLocalDir(t.TempDir()).ModifiedFiles()
	assert.Error(t, err)
}

func TestPushArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   PushOpts
		expect []string
	}{
		{
			name:   "bare",
			expect: []string{"push"},
		},
		{
			name:   "upstream",
			opts:   PushOpts{Remote: "origin", Refs: []string{"acme/upgradeIntelliJ-2025.1"}, SetUpstream: true},
			expect: []string{"push", "--set-upstream", "origin", "acme/upgradeIntelliJ-2025.1"},
		},
		{
			name:   "remote only",
			opts:   PushOpts{Remote: "origin"},
			expect: []string{"push", "origin"},
		},
		{
			name:   "refs without remote are ignored",
			opts:   PushOpts{Refs: []string{"main"}},
			expect: []string{"push"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expect, pushArgs(test.opts))
		})
	}
}

func TestCommitOnNewBranch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Parallel()

	ctx := context.Background()
	dir := initRepo(t, map[string]string{"gradle.properties": "platformVersion = 2024.3\n"})
	r := NewRepo("acme", "plugin").WithLocalDir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gradle.properties"), []byte("platformVersion = 2025.1\n"), 0o644))
	require.NoError(t, r.Add(ctx, "gradle.properties"))
	require.NoError(t, r.CheckoutNewBranch(ctx, "acme/upgradeIntelliJ-2025.1"))
	require.NoError(t, r.SetConfig(ctx, "user.name", "Update Bot"))
	require.NoError(t, r.SetConfig(ctx, "user.email", "bot@example.com"))
	require.NoError(t, r.Commit(ctx, "Upgrading IntelliJ to 2025.1"))

	files, err := r.ModifiedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	repo, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/acme/upgradeIntelliJ-2025.1", head.Name().String())

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Upgrading IntelliJ to 2025.1\n", commit.Message)
	assert.Equal(t, "Update Bot", commit.Author.Name)
}
