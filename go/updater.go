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

package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"

	"github.com/ij-update-bot/ij-update-bot/go/git"
	"github.com/ij-update-bot/ij-update-bot/go/jetbrains"
	"github.com/ij-update-bot/ij-update-bot/go/project"
	"github.com/ij-update-bot/ij-update-bot/go/semver"
)

const branchSuffix = "upgradeIntelliJ-"

type releaseSource interface {
	LatestRelease(ctx context.Context) (*jetbrains.ReleaseInfo, error)
}

// Updater upgrades the IntelliJ platform of a plugin repository and publishes
// the change as a pull request.
type Updater struct {
	Releases releaseSource
	Repo     *git.Repo
	Bumper   project.Bumper
	Client   *github.Client
	Registry metrics.Registry

	VersionKey     string
	VerifierAction string
	BranchPrefix   string
	BaseBranch     string
	AuthorName     string
	AuthorEmail    string
}

// Run performs a full upgrade. It is a no-op when the repository is already
// on the latest platform version, or when the upgrade branch and its pull
// request both exist.
func (u *Updater) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	defer metrics.GetOrRegisterTimer("ijupdate.run", u.Registry).UpdateSince(time.Now())

	release, err := u.Releases.LatestRelease(ctx)
	if err != nil {
		return err
	}

	latest, err := semver.Normalize(release.Version)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse the latest release version %q", release.Version)
	}
	logger.Info().Msgf("Latest IntelliJ release is %s (build %s)", latest.Identifier(), release.Build)

	files, err := u.updateFiles(ctx, release, latest)
	if err != nil {
		return err
	}

	if len(files) > 0 {
		if err := u.Repo.Add(ctx, files...); err != nil {
			return errors.Wrap(err, "Failed to stage updated files")
		}
	}

	modified, err := u.Repo.ModifiedFiles()
	if err != nil {
		return err
	}
	if len(modified) == 0 {
		logger.Info().Msg("No files have changed, must be on latest version!")
		return nil
	}
	logger.Info().Strs("files", modified).Msgf("%d files changed", len(modified))

	branch := branchName(u.BranchPrefix, latest)

	branches, err := u.Repo.ListBranches(ctx, u.Client)
	if err != nil {
		return err
	}
	prs, err := u.Repo.ListPRs(ctx, u.Client, github.PullRequestListOptions{State: "open"})
	if err != nil {
		return err
	}

	branchNames := make([]string, 0, len(branches))
	for _, b := range branches {
		branchNames = append(branchNames, b.GetName())
	}
	prHeads := make([]string, 0, len(prs))
	for _, pr := range prs {
		prHeads = append(prHeads, pr.GetHead().GetRef())
	}

	plan := planPublish(branchNames, prHeads, branch)
	if !plan.push && !plan.open {
		logger.Info().Msgf("Branch %s and its Pull Request already exist, nothing to do", branch)
		return nil
	}

	if plan.push {
		if err := u.pushBranch(ctx, branch, latest); err != nil {
			return err
		}
	} else {
		logger.Info().Msgf("Branch %s already exists, not pushing", branch)
	}

	if plan.open {
		pr, err := u.openPR(ctx, branch, release, latest)
		if err != nil {
			return err
		}
		metrics.GetOrRegisterCounter("ijupdate.pull_requests.created", u.Registry).Inc(1)
		logger.Info().Msgf("Created Pull Request %s", pr.GetHTMLURL())
	} else {
		logger.Info().Msgf("Pull Request for %s already open", branch)
	}

	return nil
}

// updateFiles rewrites the project files and returns the ones that changed.
// Nothing else is touched when gradle.properties is already on latest.
func (u *Updater) updateFiles(ctx context.Context, release *jetbrains.ReleaseInfo, latest semver.Version) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	dir := u.Repo.LocalDir

	gradle := &project.GradleUpdater{
		Path:       filepath.Join(dir, project.GradlePropertiesFile),
		VersionKey: u.VersionKey,
		Bumper:     u.Bumper,
	}
	res, err := gradle.Update(ctx, latest, release.BuildBranch())
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return nil, nil
	}
	logger.Info().Msgf("Upgrading plugin from %s to %s (platform %s -> %s)",
		res.PluginVersion.Identifier(), res.NextPluginVersion.Identifier(),
		res.CurrentPlatform.Identifier(), latest.Identifier())

	files := []string{gradle.Path}

	changelog := filepath.Join(dir, project.ChangelogFile)
	changed, err := project.UpdateChangelog(ctx, changelog, res.CurrentPlatform, latest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().Msgf("No %s found, not recording the upgrade", project.ChangelogFile)
	case err != nil:
		return nil, err
	case changed:
		files = append(files, changelog)
	}

	workflows := &project.WorkflowUpdater{Dir: dir, Action: u.VerifierAction}
	rewritten, err := workflows.Update(ctx, res.CurrentPlatform, latest)
	if err != nil {
		return nil, err
	}

	return append(files, rewritten...), nil
}

func (u *Updater) pushBranch(ctx context.Context, branch string, latest semver.Version) error {
	if err := u.Repo.CheckoutNewBranch(ctx, branch); err != nil {
		return errors.Wrapf(err, "Failed to create branch %s", branch)
	}
	if err := u.Repo.SetConfig(ctx, "user.name", u.AuthorName); err != nil {
		return errors.Wrap(err, "Failed to configure the commit author")
	}
	if err := u.Repo.SetConfig(ctx, "user.email", u.AuthorEmail); err != nil {
		return errors.Wrap(err, "Failed to configure the commit author")
	}
	if err := u.Repo.Commit(ctx, commitMessage(latest)); err != nil {
		return errors.Wrapf(err, "Failed to commit on %s", branch)
	}
	if err := u.Repo.Push(ctx, git.PushOpts{
		Remote:      "origin",
		Refs:        []string{branch},
		SetUpstream: true,
	}); err != nil {
		return errors.Wrapf(err, "Failed to push %s", branch)
	}

	return nil
}

func (u *Updater) openPR(ctx context.Context, branch string, release *jetbrains.ReleaseInfo, latest semver.Version) (*github.PullRequest, error) {
	base := u.BaseBranch
	if base == "" {
		var err error
		if base, err = u.Repo.DefaultBranch(ctx, u.Client); err != nil {
			return nil, err
		}
	}

	newPR := &github.NewPullRequest{
		Title:               github.String(commitMessage(latest)),
		Head:                github.String(branch),
		Base:                github.String(base),
		Body:                github.String(prBody(release)),
		MaintainerCanModify: github.Bool(true),
	}
	pr, _, err := u.Client.PullRequests.Create(ctx, u.Repo.Owner, u.Repo.Name, newPR)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create Pull Request using branch %s on %s/%s", branch, u.Repo.Owner, u.Repo.Name)
	}

	return pr, nil
}

type publishPlan struct {
	push bool
	open bool
}

// planPublish decides whether the upgrade branch must be pushed and whether a
// pull request must be opened for it.
func planPublish(branches, prHeads []string, branch string) publishPlan {
	return publishPlan{
		push: !slices.Contains(branches, branch),
		open: !slices.Contains(prHeads, branch),
	}
}

func branchName(prefix string, latest semver.Version) string {
	return prefix + branchSuffix + latest.Format()
}

func commitMessage(latest semver.Version) string {
	return fmt.Sprintf("Upgrading IntelliJ to %s", latest.Format())
}

func prBody(release *jetbrains.ReleaseInfo) string {
	var sb strings.Builder

	sb.WriteString("# IntelliJ Platform Upgrade\n\n")
	fmt.Fprintf(&sb, "This upgrades the IntelliJ platform to %s (build %s).\n", release.Version, release.Build)
	if release.NotesLink != "" {
		fmt.Fprintf(&sb, "\nRelease notes: %s\n", release.NotesLink)
	}
	if release.WhatsNew != "" {
		fmt.Fprintf(&sb, "\n## What's New\n\n%s\n", release.WhatsNew)
	}

	return sb.String()
}
