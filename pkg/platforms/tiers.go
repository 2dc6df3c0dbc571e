package platforms

import "github.com/coreos/cargo-vendor-filterer/pkg/errors"

// tier1 lists the targets with host tools at Rust support tier 1.
// See https://doc.rust-lang.org/nightly/rustc/platform-support.html
var tier1 = []string{
	"aarch64-unknown-linux-gnu",
	"i686-pc-windows-gnu",
	"i686-pc-windows-msvc",
	"i686-unknown-linux-gnu",
	"x86_64-apple-darwin",
	"x86_64-pc-windows-gnu",
	"x86_64-pc-windows-msvc",
	"x86_64-unknown-linux-gnu",
}

// tier2 lists the additional targets with host tools at Rust support tier 2.
var tier2 = []string{
	"aarch64-apple-darwin",
	"aarch64-pc-windows-msvc",
	"aarch64-unknown-linux-musl",
	"arm-unknown-linux-gnueabi",
	"arm-unknown-linux-gnueabihf",
	"armv7-unknown-linux-gnueabihf",
	"mips-unknown-linux-gnu",
	"mips64-unknown-linux-gnuabi64",
	"mips64el-unknown-linux-gnuabi64",
	"mipsel-unknown-linux-gnu",
	"powerpc-unknown-linux-gnu",
	"powerpc64-unknown-linux-gnu",
	"powerpc64le-unknown-linux-gnu",
	"riscv64gc-unknown-linux-gnu",
	"s390x-unknown-linux-gnu",
	"x86_64-unknown-freebsd",
	"x86_64-unknown-illumos",
	"x86_64-unknown-linux-musl",
	"x86_64-unknown-netbsd",
}

// Tier selects one of the curated target lists. There is a third Rust tier,
// but this API is about limited, curated tiers only.
type Tier int

const (
	// TierNone means no tier was configured.
	TierNone Tier = 0
	// Tier1 is the small curated list of tier-1 targets.
	Tier1 Tier = 1
	// Tier2 is Tier1 plus the curated tier-2 additions.
	Tier2 Tier = 2
)

// ParseTier parses a tier selector; only "1" and "2" are valid.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "1":
		return Tier1, nil
	case "2":
		return Tier2, nil
	default:
		return TierNone, errors.New(errors.ErrCodeConfig, "invalid tier %q (valid: 1, 2)", s)
	}
}

// String returns the selector form of the tier.
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "1"
	case Tier2:
		return "2"
	default:
		return ""
	}
}

// Targets returns the curated triple list for the tier. Tier2 is the union of
// both lists. The result is a fresh slice the caller may modify.
func (t Tier) Targets() []string {
	switch t {
	case Tier1:
		return append([]string(nil), tier1...)
	case Tier2:
		out := append([]string(nil), tier1...)
		return append(out, tier2...)
	default:
		return nil
	}
}
