// Package versioning classifies destination paths against the directory-based
// legacy versioning scheme and derives published version strings from
// registered model names.
package versioning

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is used when a registered name carries no valid semantic
// version suffix.
const DefaultVersion = "0.1.0"

// pathVersionRe matches a directory segment of the legacy scheme:
// v<major>[.<minor>[.<patch>]].
var pathVersionRe = regexp.MustCompile(`^v\d+(\.\d+){0,2}$`)

// Scheme is the versioning scheme a destination path belongs to.
type Scheme int

const (
	// SchemeCurrent tags versions inside registered names; files are fully
	// processed and indexed.
	SchemeCurrent Scheme = iota
	// SchemeLegacy tags versions as vN path segments; files are copied but
	// never generated against or indexed.
	SchemeLegacy
)

func (s Scheme) String() string {
	if s == SchemeLegacy {
		return "legacy"
	}
	return "current"
}

// Classify inspects the destination directory for version-looking path
// segments. Exactly one such segment means the legacy scheme; zero or
// multiple mean the current scheme.
func Classify(destDir string) Scheme {
	count := 0
	for _, seg := range strings.Split(filepath.ToSlash(destDir), "/") {
		if pathVersionRe.MatchString(seg) {
			count++
		}
	}
	if count == 1 {
		return SchemeLegacy
	}
	return SchemeCurrent
}

// PublishedVersion derives the published version string from a registered
// model name: the portion after the last '@', minus its trailing extension.
// Anything that is not a valid semantic version yields DefaultVersion.
func PublishedVersion(registeredName string) string {
	at := strings.LastIndex(registeredName, "@")
	if at < 0 {
		return DefaultVersion
	}
	v := registeredName[at+1:]
	if ext := filepath.Ext(v); ext != "" {
		// Only strip a non-numeric extension; "1.2.3" must survive intact.
		if _, err := semver.StrictNewVersion(v); err != nil {
			v = strings.TrimSuffix(v, ext)
		}
	}
	if _, err := semver.StrictNewVersion(v); err != nil {
		return DefaultVersion
	}
	return v
}
