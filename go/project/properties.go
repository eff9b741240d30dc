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

package project

import (
	"regexp"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// ErrNotRewritten is returned when a property that must change could not be
// located in the file text.
var ErrNotRewritten = errors.New("property not rewritten")

// Store is a read-only key/value view of a project config file.
type Store interface {
	Get(key string) (string, bool)
}

// PropertiesStore holds the values of a gradle.properties file, read with Java
// properties syntax ("key = value", "key: value" and "key value" lines, # and !
// comments, backslash continuations). ${key} references are returned as
// written.
type PropertiesStore struct {
	props *properties.Properties
}

func ParseProperties(data string) (*PropertiesStore, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	props, err := l.LoadBytes([]byte(data))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse properties")
	}

	return &PropertiesStore{props: props}, nil
}

func (p *PropertiesStore) Get(key string) (string, bool) {
	return p.props.Get(key)
}

// replaceProperty rewrites the value of every "key = old" line to value,
// keeping the original spacing and separator, and reports whether any line
// matched. With list set, old only has to be the first entry of a comma
// separated value.
func replaceProperty(text, key, old, value string, list bool) (string, bool) {
	tail := `([ \t\r]*)$`
	if list {
		tail = `([ \t]*(?:,.*)?)$`
	}

	re := regexp.MustCompile(`(?m)^([ \t]*` + regexp.QuoteMeta(key) + `[ \t]*[=:][ \t]*)` + regexp.QuoteMeta(old) + tail)
	if !re.MatchString(text) {
		return text, false
	}

	return re.ReplaceAllString(text, "${1}"+strings.ReplaceAll(value, "$", "$$")+"${2}"), true
}
