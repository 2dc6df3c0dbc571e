package cargo

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// NameVersion is a (package name, exact version) pair as reported by the
// edge listing. The source origin is not part of cargo tree output, so kind
// intersection works on name and version only.
type NameVersion struct {
	Name    string
	Version string
}

// TreeOptions parameterize one cargo tree edge-listing query.
type TreeOptions struct {
	ManifestPath string        // --manifest-path; empty uses the working directory
	Platform     string        // --target; empty means all targets
	Offline      bool          // --offline
	Features     FeatureConfig // feature-activation mode
	Kind         DepKind       // --edges selection
}

// minVersionToken is the shortest version token worth parsing: a "v" prefix
// plus a three-part version. Shorter tokens are tree-drawing artifacts, not
// versions.
const minVersionToken = 5

// Tree runs the dependency-edge listing restricted to the configured kind and
// returns every (name, version) pair it reports. cargo metadata cannot filter
// by edge kind, so this is the only source of kind information; the output is
// line-oriented and intended for humans, which is why parsing lives behind
// this boundary.
func Tree(ctx context.Context, opts TreeOptions) ([]NameVersion, error) {
	args := []string{"tree", "--quiet", "--prefix", "none", "--edges", opts.Kind.EdgeArg()}
	if opts.Offline {
		args = append(args, "--offline")
	}
	if opts.ManifestPath != "" {
		args = append(args, "--manifest-path", opts.ManifestPath)
	}
	args = append(args, opts.Features.args()...)
	if opts.Platform != "" {
		args = append(args, "--target="+opts.Platform)
	} else {
		// Unlike cargo metadata, cargo tree defaults to the current platform.
		args = append(args, "--target=all")
	}

	out, err := runCargo(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseTreeOutput(string(out))
}

// parseTreeOutput parses the line-oriented cargo tree listing. Each line is
// "<name> v<version>" with optional trailing workspace and dedup markers.
// Lines whose second token is too short or is part of a feature list are
// skipped; a version that fails to parse is a hard error naming the package
// and the raw token.
func parseTreeOutput(out string) ([]NameVersion, error) {
	var pkgs []NameVersion
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		tokens := strings.Split(line, " ")
		if len(tokens) < 2 {
			return nil, errors.New(errors.ErrCodeParse, "invalid cargo tree line %q", line)
		}
		name, version := tokens[0], tokens[1]
		if len(version) < minVersionToken || strings.Contains(version, "feature") {
			continue
		}
		stripped, ok := strings.CutPrefix(version, "v")
		if !ok {
			return nil, errors.New(errors.ErrCodeParse,
				"invalid version token %q for package %s in cargo tree line %q", version, name, line)
		}
		if !semver.IsValid("v" + stripped) {
			return nil, errors.New(errors.ErrCodeParse,
				"cannot parse version %q for package %s", stripped, name)
		}
		pkgs = append(pkgs, NameVersion{Name: name, Version: stripped})
	}
	return pkgs, nil
}
