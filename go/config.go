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
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/palantir/go-githubapp/githubapp"
	"github.com/pkg/errors"

	"github.com/ij-update-bot/ij-update-bot/go/jetbrains"
	"github.com/ij-update-bot/ij-update-bot/go/project"
)

const (
	defaultV3APIURL    = "https://api.github.com/"
	defaultV4APIURL    = "https://api.github.com/graphql"
	defaultAuthorName  = "github-actions[bot]"
	defaultAuthorEmail = "41898282+github-actions[bot]@users.noreply.github.com"
)

type config struct {
	Github githubapp.Config `yaml:"github"`

	token string
	owner string
	repo  string

	dir     string
	logFile string
	debug   bool

	productCode    string
	versionKey     string
	verifierAction string

	branchPrefix string
	baseBranch   string
	authorName   string
	authorEmail  string
}

// readConfig reads the configuration from the environment, after loading an
// optional .env file. Action inputs use the INPUT_<NAME> convention of GitHub
// Actions.
func readConfig() (*config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	var c config

	c.Github.SetValuesFromEnv("")
	if c.Github.V3APIURL == "" {
		c.Github.V3APIURL = getenv("GITHUB_API_URL", defaultV3APIURL)
	}
	if c.Github.V4APIURL == "" {
		c.Github.V4APIURL = getenv("GITHUB_GRAPHQL_URL", defaultV4APIURL)
	}

	c.token = getenv("INPUT_PAT_TOKEN_FOR_IJ_UPDATE_ACTION", os.Getenv("GITHUB_TOKEN"))
	if c.token == "" {
		return nil, errors.New("no GitHub token found, please set the INPUT_PAT_TOKEN_FOR_IJ_UPDATE_ACTION or GITHUB_TOKEN environment variable")
	}

	repository := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, errors.Errorf("GITHUB_REPOSITORY must be set to <owner>/<repo>, got %q", repository)
	}
	c.owner, c.repo = owner, repo

	c.dir = getenv("GITHUB_WORKSPACE", ".")
	c.logFile = os.Getenv("LOG_FILE")
	c.debug = os.Getenv("RUNNER_DEBUG") == "1"

	c.productCode = getenv("INPUT_PRODUCT_CODE", jetbrains.DefaultProductCode)
	c.versionKey = getenv("INPUT_GRADLE_PROPERTY_VERSION_NAME", project.DefaultVersionKey)
	c.verifierAction = getenv("INPUT_VERIFIER_ACTION", project.DefaultVerifierAction)

	c.branchPrefix = getenv("INPUT_BRANCH_PREFIX", owner+"/")
	c.baseBranch = os.Getenv("INPUT_BASE_BRANCH")
	c.authorName = getenv("INPUT_GIT_AUTHOR_NAME", defaultAuthorName)
	c.authorEmail = getenv("INPUT_GIT_AUTHOR_EMAIL", defaultAuthorEmail)

	return &c, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}
