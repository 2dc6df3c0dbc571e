// Package vendorfilter implements the filtering, reconciliation, and
// deterministic-output engine that narrows a full vendor directory down to
// the packages required for the configured platforms, features, and
// dependency kinds.
//
// The pipeline is sequential by design: every stage consumes the full output
// of the previous one before any shared state is mutated, and the destructive
// stages (stub replacement, path pruning) assume exclusive ownership of the
// output directory. There is no rollback; a failed run leaves the output in
// whatever partial state it reached.
package vendorfilter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
	"github.com/coreos/cargo-vendor-filterer/pkg/platforms"
)

// MetadataKey is the table under package.metadata that holds embedded filter
// configuration in a Cargo.toml.
const MetadataKey = "vendor-filter"

// ExcludeRule removes paths inside a retained crate. Name is an exact crate
// name or the wildcard "*", which applies to every retained crate. Path is a
// relative path pattern, optionally containing glob metacharacters.
type ExcludeRule struct {
	Name string
	Path string
}

// ParseExcludeRule parses the CLI "name#relative-path" rule form.
func ParseExcludeRule(s string) (ExcludeRule, error) {
	name, path, ok := strings.Cut(s, "#")
	if !ok {
		return ExcludeRule{}, errors.New(errors.ErrCodeConfig,
			"invalid exclude rule %q: expected name#relative-path", s)
	}
	return newExcludeRule(name, path, s)
}

func newExcludeRule(name, path, raw string) (ExcludeRule, error) {
	if name == "" || path == "" {
		return ExcludeRule{}, errors.New(errors.ErrCodeConfig,
			"invalid exclude rule %q: name and path must be non-empty", raw)
	}
	if filepath.IsAbs(path) {
		return ExcludeRule{}, errors.New(errors.ErrCodeConfig,
			"invalid exclude rule %q: path must be relative", raw)
	}
	if clean := filepath.Clean(path); clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return ExcludeRule{}, errors.New(errors.ErrCodeConfig,
			"invalid exclude rule %q: path must stay inside the crate", raw)
	}
	return ExcludeRule{Name: name, Path: path}, nil
}

// Filter is the complete filter configuration of one vendoring run, whether
// it came from CLI flags or from the embedded manifest section.
type Filter struct {
	Platforms     []string             // platform patterns, literal or wildcard-segmented
	Tier          platforms.Tier       // curated tier for wildcard expansion, if any
	Features      cargo.FeatureConfig  // feature-activation mode
	KeepDepKinds  cargo.DepKind        // empty or "all" means no kind filtering
	Exclude       []ExcludeRule
	VersionedDirs bool // every crate directory carries its version suffix
}

// FiltersByKind reports whether a dependency-kind constraint other than "all"
// is configured, i.e. whether the edge-listing collaborator must be consulted.
func (f *Filter) FiltersByKind() bool {
	return f.KeepDepKinds != "" && f.KeepDepKinds != cargo.DepKindAll
}

// embeddedFile models just enough of a Cargo.toml to reach the
// package.metadata.vendor-filter table.
type embeddedFile struct {
	Package struct {
		Metadata struct {
			VendorFilter *embeddedFilter `toml:"vendor-filter"`
		} `toml:"metadata"`
	} `toml:"package"`
}

// embeddedFilter mirrors the CLI filter fields in their manifest spelling.
type embeddedFilter struct {
	Platforms         []string       `toml:"platforms"`
	Tier              string         `toml:"tier"`
	AllFeatures       bool           `toml:"all-features"`
	NoDefaultFeatures bool           `toml:"no-default-features"`
	Features          []string       `toml:"features"`
	KeepDepKinds      string         `toml:"keep-dep-kinds"`
	ExcludeCratePaths []embeddedRule `toml:"exclude-crate-paths"`
	VersionedDirs     bool           `toml:"versioned-dirs"`
}

type embeddedRule struct {
	Name    string `toml:"name"`
	Exclude string `toml:"exclude"`
}

// LoadEmbedded reads the vendor-filter section embedded in the manifest.
// Returns nil when the section is absent. A missing or unreadable manifest is
// a LAYOUT_ERROR; malformed TOML is a PARSE_ERROR. Unknown keys inside the
// section are returned as warnings, not errors, so newer configuration
// degrades gracefully on older tool versions.
func LoadEmbedded(manifestPath string) (*Filter, []string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeLayout, err, "reading manifest %s", manifestPath)
	}
	var doc embeddedFile
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeParse, err, "parsing manifest %s", manifestPath)
	}
	emb := doc.Package.Metadata.VendorFilter
	if emb == nil {
		return nil, nil, nil
	}

	var warnings []string
	prefix := "package.metadata." + MetadataKey + "."
	for _, key := range md.Undecoded() {
		if s := key.String(); strings.HasPrefix(s, prefix) {
			warnings = append(warnings, "unknown configuration key "+s)
		}
	}

	f := &Filter{
		Platforms: emb.Platforms,
		Features: cargo.FeatureConfig{
			AllFeatures:       emb.AllFeatures,
			NoDefaultFeatures: emb.NoDefaultFeatures,
			Features:          emb.Features,
		},
		VersionedDirs: emb.VersionedDirs,
	}
	if emb.Tier != "" {
		tier, err := platforms.ParseTier(emb.Tier)
		if err != nil {
			return nil, warnings, err
		}
		f.Tier = tier
	}
	if emb.KeepDepKinds != "" {
		kind, err := cargo.ParseDepKind(emb.KeepDepKinds)
		if err != nil {
			return nil, warnings, err
		}
		f.KeepDepKinds = kind
	}
	for _, r := range emb.ExcludeCratePaths {
		rule, err := newExcludeRule(r.Name, r.Exclude, r.Name+"#"+r.Exclude)
		if err != nil {
			return nil, warnings, err
		}
		f.Exclude = append(f.Exclude, rule)
	}
	return f, warnings, nil
}
