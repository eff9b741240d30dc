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

// Package semver normalizes IntelliJ platform identifiers (2022.3, 2024.3.1,
// 2024.3.1.1) and plugin versions into a single totally ordered version type.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	msemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

var (
	// ErrMissingInput is returned when there is no version string to parse.
	ErrMissingInput = errors.New("no version to parse")
	// ErrMalformed is returned for version strings outside the accepted grammar.
	ErrMalformed = errors.New("malformed version")
)

// Zero is the version returned alongside every parse failure. It also marks
// placeholder entries (LATEST-EAP-SNAPSHOT and friends) in version lists.
var Zero = Version{}

// Version is a canonical major.minor.patch version. A fourth numeric group of a
// platform identifier is kept in Extra and orders after the plain triple.
type Version struct {
	Major, Minor, Patch uint64

	Extra    uint64
	HasExtra bool
}

// New returns the version major.minor.patch without an extra group.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// NewWithExtra returns major.minor.patch with a fourth group extra.
func NewWithExtra(major, minor, patch, extra uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Extra: extra, HasExtra: true}
}

// Normalize parses s into a Version. Two groups get an implicit ".0" patch and
// a fourth group becomes Extra. On failure it returns Zero and an error
// wrapping ErrMissingInput or ErrMalformed.
func Normalize(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrMissingInput
	}

	groups := strings.Split(s, ".")
	for _, g := range groups {
		if !isDigits(g) {
			return Zero, errors.Wrapf(ErrMalformed, "%q: group %q is not numeric", s, g)
		}
	}

	var core string
	switch len(groups) {
	case 2:
		core = s + ".0"
	case 3:
		core = s
	case 4:
		core = strings.Join(groups[:3], ".") + "-" + groups[3]
	default:
		return Zero, errors.Wrapf(ErrMalformed, "%q: want 2 to 4 dot-separated groups, got %d", s, len(groups))
	}

	parsed, err := msemver.StrictNewVersion(core)
	if err != nil {
		return Zero, errors.Wrapf(ErrMalformed, "%q: %s", s, err)
	}

	v := New(parsed.Major(), parsed.Minor(), parsed.Patch())
	if pre := parsed.Prerelease(); pre != "" {
		extra, err := strconv.ParseUint(pre, 10, 64)
		if err != nil {
			return Zero, errors.Wrapf(ErrMalformed, "%q: %s", s, err)
		}

		v.Extra, v.HasExtra = extra, true
	}

	return v, nil
}

// MustNormalize is like Normalize but panics on failure.
func MustNormalize(s string) Version {
	v, err := Normalize(s)
	if err != nil {
		panic(err)
	}

	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// IsZero reports whether v is the Zero sentinel.
func (v Version) IsZero() bool {
	return v == Zero
}

// String returns the canonical form, 2025.1.0 or 2025.1.1-1 with an extra
// group.
func (v Version) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d.%d.%d", v.Major, v.Minor, v.Patch)

	if v.HasExtra {
		fmt.Fprintf(&buf, "-%d", v.Extra)
	}

	return buf.String()
}

// Format returns the display form of v: a ".0" patch is dropped when there is
// no extra group, so 2025.1.0 displays as 2025.1.
func Format(v Version) string {
	s := v.String()
	if v.HasExtra {
		return s
	}

	return strings.TrimSuffix(s, ".0")
}

// Format is the method form of Format.
func (v Version) Format() string {
	return Format(v)
}

// Identifier renders v the way the platform spells it in project files. It is
// the inverse of Normalize: 2024.3.1.1 stays 2024.3.1.1 and 2025.1.0 becomes
// 2025.1.
func (v Version) Identifier() string {
	if !v.HasExtra {
		return Format(v)
	}

	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Extra)
}
