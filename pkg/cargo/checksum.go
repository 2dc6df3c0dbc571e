package cargo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// ChecksumFile is the filename cargo writes in vendored crates with per-file
// content digests.
const ChecksumFile = ".cargo-checksum.json"

// Checksum is the per-crate checksum manifest. The field names and layout are
// a compatibility contract with cargo and must be preserved exactly. Package
// is the aggregate crate digest; it is kept as raw JSON so an untouched value
// round-trips byte-identically. cargo validates the per-file digests, not the
// aggregate, for vendored content.
type Checksum struct {
	Files   map[string]string `json:"files"`
	Package json.RawMessage   `json:"package,omitempty"`
}

// LoadChecksum reads the checksum manifest of the crate directory. A missing
// or malformed file is a hard error: every vendored crate must carry one.
func LoadChecksum(crateDir string) (*Checksum, error) {
	path := filepath.Join(crateDir, ChecksumFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "reading checksum manifest %s", path)
	}
	var c Checksum
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parsing checksum manifest %s", path)
	}
	if c.Files == nil {
		c.Files = make(map[string]string)
	}
	return &c, nil
}

// Save rewrites the checksum manifest in the crate directory.
func (c *Checksum) Save(crateDir string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "serializing checksum manifest")
	}
	path := filepath.Join(crateDir, ChecksumFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "writing checksum manifest %s", path)
	}
	return nil
}

// SHA256File computes the hex content digest of a file, streaming rather than
// loading it whole: vendored crates can carry large assets.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLayout, err, "hashing %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(errors.ErrCodeLayout, err, "hashing %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SHA256Bytes computes the hex content digest of a byte slice.
func SHA256Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
