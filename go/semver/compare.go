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

package semver

import (
	"cmp"
	"slices"
	"strings"
)

// Compare returns -1, 0 or +1. Versions order by major, minor and patch; for
// an equal triple a missing extra group sorts first.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
		return c
	}

	switch {
	case a.HasExtra != b.HasExtra:
		if a.HasExtra {
			return 1
		}
		return -1
	case a.HasExtra:
		return cmp.Compare(a.Extra, b.Extra)
	}

	return 0
}

// Compare is the method form of Compare.
func (v Version) Compare(other Version) int { return Compare(v, other) }

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool { return Compare(v, other) < 0 }

// Equal reports whether v and other order the same.
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

// Sort orders versions ascending in place.
func Sort(versions []Version) {
	slices.SortFunc(versions, Compare)
}

// FilterZero drops Zero entries.
//
// Zero doubles as "parse failed" and "not a version" here, so a literal 0.0.0
// in the input is dropped as well.
func FilterZero(versions []Version) []Version {
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		if !v.IsZero() {
			out = append(out, v)
		}
	}

	return out
}

// NormalizeList parses a comma separated list such as
// "2024.3, 2024.2.4, LATEST-EAP-SNAPSHOT", keeping only the real versions in
// their original order.
func NormalizeList(csv string) []Version {
	var versions []Version
	for _, entry := range strings.Split(csv, ",") {
		v, _ := Normalize(entry)
		versions = append(versions, v)
	}

	return FilterZero(versions)
}
