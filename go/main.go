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
	"io"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/palantir/go-githubapp/githubapp"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ij-update-bot/ij-update-bot/go/bump"
	"github.com/ij-update-bot/ij-update-bot/go/git"
	"github.com/ij-update-bot/ij-update-bot/go/jetbrains"
)

const userAgent = "ij-update-bot/1.0.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir     string
		logFile string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:          "ij-update-bot",
		Short:        "Upgrade the IntelliJ platform of a plugin repository and open a Pull Request",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("dir") {
				cfg.dir = dir
			}
			if flags.Changed("log-file") {
				cfg.logFile = logFile
			}
			if flags.Changed("debug") {
				cfg.debug = debug
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Path to the plugin repository checkout (defaults to $GITHUB_WORKSPACE)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stdout")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	var f io.Writer
	if cfg.logFile != "" {
		file, err := os.OpenFile(cfg.logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "Failed to open log file %s", cfg.logFile)
		}
		defer file.Close()
		f = file
	} else {
		f = os.Stdout
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(f).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	metricsRegistry := metrics.DefaultRegistry

	cc, err := githubapp.NewDefaultCachingClientCreator(
		cfg.Github,
		githubapp.WithClientUserAgent(userAgent),
		githubapp.WithClientTimeout(30*time.Second),
		githubapp.WithClientCaching(false, func() httpcache.Cache { return httpcache.NewMemoryCache() }),
		githubapp.WithClientMiddleware(
			githubapp.ClientMetrics(metricsRegistry),
		),
	)
	if err != nil {
		return errors.Wrap(err, "Failed to create GitHub client creator")
	}

	client, err := cc.NewTokenClient(cfg.token)
	if err != nil {
		return errors.Wrap(err, "Failed to create GitHub client")
	}

	updater := &Updater{
		Releases:       jetbrains.NewClient(jetbrains.WithProductCode(cfg.productCode)),
		Repo:           git.NewRepo(cfg.owner, cfg.repo).WithLocalDir(cfg.dir),
		Bumper:         bump.Engine{},
		Client:         client,
		Registry:       metricsRegistry,
		VersionKey:     cfg.versionKey,
		VerifierAction: cfg.verifierAction,
		BranchPrefix:   cfg.branchPrefix,
		BaseBranch:     cfg.baseBranch,
		AuthorName:     cfg.authorName,
		AuthorEmail:    cfg.authorEmail,
	}

	logger.Info().Msgf("Checking %s/%s in %s for an IntelliJ platform upgrade", cfg.owner, cfg.repo, cfg.dir)
	if err := updater.Run(logger.WithContext(ctx)); err != nil {
		logger.Error().Err(err).Msg("Upgrade failed")
		return err
	}

	if t := metricsRegistry.Get("ijupdate.run"); t != nil {
		if timer, ok := t.(metrics.Timer); ok {
			logger.Info().Dur("elapsed", time.Duration(timer.Max())).Msg("Upgrade finished")
		}
	}

	return nil
}
