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

	"github.com/google/go-github/v53/github"
	"github.com/pkg/errors"
)

const rowsPerPage = 100

func (r *Repo) ListPRs(ctx context.Context, client *github.Client, opts github.PullRequestListOptions) (pulls []*github.PullRequest, err error) {
	cont := true
	for page := 1; cont; page++ {
		opts.ListOptions = github.ListOptions{
			PerPage: rowsPerPage,
			Page:    page,
		}
		prs, _, err := client.PullRequests.List(ctx, r.Owner, r.Name, &opts)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to list pull requests in %s/%s - at page %d", r.Owner, r.Name, page)
		}

		pulls = append(pulls, prs...)
		if len(prs) < rowsPerPage {
			cont = false
			break
		}
	}

	return pulls, nil
}

// ListBranches returns every branch of the repo on GitHub.
func (r *Repo) ListBranches(ctx context.Context, client *github.Client) (branches []*github.Branch, err error) {
	cont := true
	for page := 1; cont; page++ {
		bs, _, err := client.Repositories.ListBranches(ctx, r.Owner, r.Name, &github.BranchListOptions{
			ListOptions: github.ListOptions{
				PerPage: rowsPerPage,
				Page:    page,
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to list branches in %s/%s - at page %d", r.Owner, r.Name, page)
		}

		branches = append(branches, bs...)
		if len(bs) < rowsPerPage {
			cont = false
			break
		}
	}

	return branches, nil
}

// DefaultBranch returns the default branch of the repo on GitHub.
func (r *Repo) DefaultBranch(ctx context.Context, client *github.Client) (string, error) {
	repo, _, err := client.Repositories.Get(ctx, r.Owner, r.Name)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to get repository %s/%s", r.Owner, r.Name)
	}

	return repo.GetDefaultBranch(), nil
}
