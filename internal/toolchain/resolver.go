package toolchain

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version directives recognized in source text, checked in order:
//
//	concerto version "^3.0.0"
//	// requires: concerto-core:>=2.0.0 <3.0.0
//
// The comment form captures to end-of-line or comment close so compound
// ranges keep all their comparators.
var (
	versionDirectiveRe = regexp.MustCompile(`concerto\s+version\s+"([^"]+)"`)
	requiresCommentRe  = regexp.MustCompile(`requires:\s*concerto-core:([^*\n]+)`)
)

// Resolve selects the binding that must process the given source text.
//
// It scans for a version directive and returns the first registry entry, in
// insertion order, whose version satisfies the extracted range. Resolution
// never fails: a missing directive, an unparseable range, or a range no entry
// satisfies all degrade to the registry default.
func Resolve(r *Registry, source string) *Binding {
	rng, ok := extractRange(source)
	if !ok {
		return r.Default()
	}
	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		// Matched the directive shape but not a valid range. Treated the same
		// as no directive at all.
		slog.Debug("Ignoring unparseable version range", "range", rng, "error", err.Error())
		return r.Default()
	}
	for _, b := range r.Entries() {
		v, err := semver.NewVersion(b.Version)
		if err != nil {
			continue
		}
		if constraint.Check(v) {
			return b
		}
	}
	return r.Default()
}

// extractRange pulls the version-range expression out of the source text.
func extractRange(source string) (string, bool) {
	if m := versionDirectiveRe.FindStringSubmatch(source); m != nil {
		if rng := normalizeRange(m[1]); rng != "" {
			return rng, true
		}
	}
	if m := requiresCommentRe.FindStringSubmatch(source); m != nil {
		if rng := normalizeRange(m[1]); rng != "" {
			return rng, true
		}
	}
	return "", false
}

// normalizeRange collapses surrounding and internal whitespace to single
// spaces. Space-separated comparators AND together, so compound ranges like
// ">=2.0.0 <3.0.0" must keep exactly one space between comparators.
func normalizeRange(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
