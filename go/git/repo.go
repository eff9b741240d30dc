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

	"github.com/ij-update-bot/ij-update-bot/go/shell"
)

// Repo is a GitHub repository checked out at LocalDir.
type Repo struct {
	Owner    string
	Name     string
	LocalDir string
}

func NewRepo(owner, name string) *Repo {
	return &Repo{
		Owner:    owner,
		Name:     name,
		LocalDir: ".",
	}
}

// WithLocalDir sets the working tree of the repo and returns it.
func (r *Repo) WithLocalDir(dir string) *Repo {
	r.LocalDir = dir
	return r
}

func (r *Repo) git(ctx context.Context, arg ...string) error {
	_, err := shell.NewContext(ctx, "git", arg...).InDir(r.LocalDir).Output()
	return err
}

func (r *Repo) Add(ctx context.Context, arg ...string) error {
	return r.git(ctx, append([]string{"add", "--"}, arg...)...)
}

// CheckoutNewBranch creates branch at HEAD and switches to it, carrying over
// staged changes.
func (r *Repo) CheckoutNewBranch(ctx context.Context, branch string) error {
	return r.git(ctx, "checkout", "-b", branch)
}

// SetConfig sets a repository-local git config value.
func (r *Repo) SetConfig(ctx context.Context, key, value string) error {
	return r.git(ctx, "config", key, value)
}

// Commit records the staged changes with msg.
func (r *Repo) Commit(ctx context.Context, msg string) error {
	return r.git(ctx, "commit", "-m", msg)
}

type PushOpts struct {
	Remote      string
	Refs        []string
	SetUpstream bool
}

func (r *Repo) Push(ctx context.Context, opts PushOpts) error {
	return r.git(ctx, pushArgs(opts)...)
}

func pushArgs(opts PushOpts) []string {
	args := []string{
		"push",
	}

	if opts.SetUpstream {
		args = append(args, "--set-upstream")
	}

	if opts.Remote != "" {
		args = append(args, opts.Remote)
		if len(opts.Refs) > 0 {
			args = append(args, opts.Refs...)
		}
	}

	return args
}
