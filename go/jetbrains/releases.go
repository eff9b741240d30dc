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
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL     = "https://data.services.jetbrains.com"
	DefaultProductCode = "IIU"
)

// ReleaseInfo is the subset of a JetBrains product release we care about.
type ReleaseInfo struct {
	Date            string `json:"date"`
	Type            string `json:"type"`
	NotesLink       string `json:"notesLink"`
	LicenseRequired bool   `json:"licenseRequired"`
	Version         string `json:"version"`
	MajorVersion    string `json:"majorVersion"`
	Build           string `json:"build"`
	WhatsNew        string `json:"whatsnew"`
}

// BuildBranch returns the branch number of the build, e.g. 251 for
// 251.23774.435.
func (r *ReleaseInfo) BuildBranch() string {
	branch, _, _ := strings.Cut(r.Build, ".")
	return branch
}

type Client struct {
	baseURL     string
	productCode string
	httpClient  *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

func WithProductCode(code string) ClientOption {
	return func(c *Client) {
		c.productCode = code
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a release client backed by an in-memory HTTP cache.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		productCode: DefaultProductCode,
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) ProductCode() string {
	return c.productCode
}

// LatestRelease fetches the most recent GA release of the configured product.
func (c *Client) LatestRelease(ctx context.Context) (*ReleaseInfo, error) {
	u, err := url.Parse(c.baseURL + "/products/releases")
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build release URL from %s", c.baseURL)
	}

	q := u.Query()
	q.Set("code", c.productCode)
	q.Set("latest", "true")
	q.Set("release.type", "release")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build request for %s", u)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get the latest %s release", c.productCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Failed to get the latest %s release: %s", c.productCode, resp.Status)
	}

	var releases map[string][]*ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %s releases", c.productCode)
	}

	list := releases[c.productCode]
	if len(list) == 0 || list[0] == nil {
		return nil, errors.Errorf("no %s release found", c.productCode)
	}

	return list[0], nil
}
