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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"GITHUB_REPOSITORY",
	"GITHUB_TOKEN",
	"GITHUB_WORKSPACE",
	"GITHUB_API_URL",
	"GITHUB_GRAPHQL_URL",
	"GITHUB_V3_API_URL",
	"GITHUB_V4_API_URL",
	"INPUT_PAT_TOKEN_FOR_IJ_UPDATE_ACTION",
	"INPUT_PRODUCT_CODE",
	"INPUT_GRADLE_PROPERTY_VERSION_NAME",
	"INPUT_VERIFIER_ACTION",
	"INPUT_BRANCH_PREFIX",
	"INPUT_BASE_BRANCH",
	"INPUT_GIT_AUTHOR_NAME",
	"INPUT_GIT_AUTHOR_EMAIL",
	"LOG_FILE",
	"RUNNER_DEBUG",
}

// clearEnv blanks every variable readConfig looks at for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "acme/plugin")
	t.Setenv("GITHUB_TOKEN", "ghs_default")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.owner)
	assert.Equal(t, "plugin", cfg.repo)
	assert.Equal(t, "ghs_default", cfg.token)
	assert.Equal(t, ".", cfg.dir)
	assert.False(t, cfg.debug)
	assert.Equal(t, "IIU", cfg.productCode)
	assert.Equal(t, "pluginVersion", cfg.versionKey)
	assert.Equal(t, "ChrisCarini/intellij-platform-plugin-verifier-action", cfg.verifierAction)
	assert.Equal(t, "acme/", cfg.branchPrefix)
	assert.Empty(t, cfg.baseBranch)
	assert.Equal(t, defaultAuthorName, cfg.authorName)
	assert.Equal(t, defaultAuthorEmail, cfg.authorEmail)
	assert.Equal(t, defaultV3APIURL, cfg.Github.V3APIURL)
	assert.Equal(t, defaultV4APIURL, cfg.Github.V4APIURL)
}

func TestReadConfigInputs(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "acme/plugin")
	t.Setenv("GITHUB_TOKEN", "ghs_default")
	t.Setenv("INPUT_PAT_TOKEN_FOR_IJ_UPDATE_ACTION", "ghp_personal")
	t.Setenv("GITHUB_WORKSPACE", "/home/runner/work/plugin/plugin")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("INPUT_PRODUCT_CODE", "IIC")
	t.Setenv("INPUT_GRADLE_PROPERTY_VERSION_NAME", "version")
	t.Setenv("INPUT_BRANCH_PREFIX", "bot/")
	t.Setenv("INPUT_BASE_BRANCH", "develop")
	t.Setenv("RUNNER_DEBUG", "1")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, "ghp_personal", cfg.token)
	assert.Equal(t, "/home/runner/work/plugin/plugin", cfg.dir)
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.Github.V3APIURL)
	assert.Equal(t, "IIC", cfg.productCode)
	assert.Equal(t, "version", cfg.versionKey)
	assert.Equal(t, "bot/", cfg.branchPrefix)
	assert.Equal(t, "develop", cfg.baseBranch)
	assert.True(t, cfg.debug)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		token      string
	}{
		{name: "no token", repository: "acme/plugin"},
		{name: "no repository", token: "ghs_default"},
		{name: "repository without owner", repository: "/plugin", token: "ghs_default"},
		{name: "repository without name", repository: "plugin", token: "ghs_default"},
		{name: "nested repository", repository: "acme/plugin/extra", token: "ghs_default"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GITHUB_REPOSITORY", test.repository)
			t.Setenv("GITHUB_TOKEN", test.token)

			_, err := readConfig()
			assert.Error(t, err)
		})
	}
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"dir", "log-file", "debug"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Error(t, cmd.Args(cmd, []string{"unexpected"}))
}
