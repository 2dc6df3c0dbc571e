// Package platforms implements target-triple matching and expansion.
//
// A platform triple is a hyphen-segmented string such as
// "x86_64-unknown-linux-gnu". A pattern is a triple where any segment may be
// the wildcard "*", which matches exactly one literal segment. Patterns never
// match triples with a different segment count, so "*-unknown-linux-gnu" does
// not match "x86_64-unknown-linux-gnux32".
//
// The set of known triples used for wildcard expansion comes either from a
// curated tier list (no subprocess involved) or from the host toolchain via
// HostTargets.
package platforms

import "strings"

// Wildcard is the segment that matches any literal segment in a pattern.
const Wildcard = "*"

// Match reports whether the concrete triple matches the pattern.
// Segment counts must be equal; a "*" segment matches any literal segment;
// every other segment must be byte-equal.
func Match(triple, pattern string) bool {
	ts := strings.Split(triple, "-")
	ps := strings.Split(pattern, "-")
	if len(ts) != len(ps) {
		return false
	}
	for i, p := range ps {
		if p == Wildcard {
			continue
		}
		if ts[i] != p {
			return false
		}
	}
	return true
}

// HasWildcard reports whether the pattern contains a wildcard segment.
func HasWildcard(pattern string) bool {
	for _, seg := range strings.Split(pattern, "-") {
		if seg == Wildcard {
			return true
		}
	}
	return false
}

// Expand resolves each pattern against the known triples. A pattern without a
// wildcard passes through unchanged even when absent from known, so users can
// name platforms the toolchain does not list. A wildcard pattern expands to
// every known triple it matches. The result preserves first-seen order and
// contains no duplicates.
func Expand(patterns, known []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, p := range patterns {
		if !HasWildcard(p) {
			add(p)
			continue
		}
		for _, t := range known {
			if Match(t, p) {
				add(t)
			}
		}
	}
	return out
}

// NeedsKnownTriples reports whether any pattern requires a known-triple list
// to expand, i.e. whether any pattern contains a wildcard.
func NeedsKnownTriples(patterns []string) bool {
	for _, p := range patterns {
		if HasWildcard(p) {
			return true
		}
	}
	return false
}
