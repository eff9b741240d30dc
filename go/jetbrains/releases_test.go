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

package jetbrains

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesBody = `{
  "IIU": [
    {
      "date": "2025-05-13",
      "type": "release",
      "notesLink": "https://youtrack.jetbrains.com/articles/IDEA-A-2100662431",
      "licenseRequired": true,
      "version": "2025.1.1.1",
      "majorVersion": "2025.1",
      "build": "251.25410.129",
      "whatsnew": "<p>Bug fixes</p>",
      "downloads": {}
    }
  ]
}`

func TestLatestRelease(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/releases", r.URL.Path)
		assert.Equal(t, "IIU", r.URL.Query().Get("code"))
		assert.Equal(t, "true", r.URL.Query().Get("latest"))
		assert.Equal(t, "release", r.URL.Query().Get("release.type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(releasesBody))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	release, err := c.LatestRelease(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025.1.1.1", release.Version)
	assert.Equal(t, "2025.1", release.MajorVersion)
	assert.Equal(t, "release", release.Type)
	assert.True(t, release.LicenseRequired)
	assert.Equal(t, "251.25410.129", release.Build)
	assert.Equal(t, "251", release.BuildBranch())
	assert.Equal(t, "<p>Bug fixes</p>", release.WhatsNew)
	assert.Equal(t, "https://youtrack.jetbrains.com/articles/IDEA-A-2100662431", release.NotesLink)
}

func TestLatestReleaseProductCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "IIC", r.URL.Query().Get("code"))
		_, _ = w.Write([]byte(`{"IIC": [{"version": "2025.1", "build": "251.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithProductCode("IIC"))
	assert.Equal(t, "IIC", c.ProductCode())

	release, err := c.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025.1", release.Version)
}

func TestLatestReleaseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "bad json", status: http.StatusOK, body: "{"},
		{name: "no releases", status: http.StatusOK, body: `{"IIU": []}`},
		{name: "other product", status: http.StatusOK, body: `{"IIC": [{"version": "2025.1"}]}`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			}))
			defer srv.Close()

			release, err := NewClient(WithBaseURL(srv.URL)).LatestRelease(context.Background())
			assert.Error(t, err)
			assert.Nil(t, release)
		})
	}
}

func TestLatestReleaseCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(releasesBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithBaseURL(srv.URL)).LatestRelease(ctx)
	assert.Error(t, err)
}
