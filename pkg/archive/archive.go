// Package archive produces byte-reproducible tar archives of a vendor
// directory.
//
// Reproducibility is achieved by visiting entries in full-path lexicographic
// order instead of filesystem iteration order, normalizing ownership to
// uid/gid 0, pinning every modification time to one shared timestamp, and
// using a gzip encoding whose embedded header fields do not depend on the
// wall clock. The zstd encoding pipes the tar stream through the external
// zstd compressor.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// Format selects the output encoding of a vendoring run.
type Format string

const (
	FormatDir     Format = "dir"
	FormatTar     Format = "tar"
	FormatTarGz   Format = "tar.gz"
	FormatTarZstd Format = "tar.zstd"
)

// ParseFormat validates an output-format selector.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDir, FormatTar, FormatTarGz, FormatTarZstd:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeConfig,
			"invalid format %q (valid: dir, tar, tar.gz, tar.zstd)", s)
	}
}

// String returns the selector form of the format.
func (f Format) String() string { return string(f) }

// DefaultOutput returns the conventional output path for the format when the
// user gives none.
func (f Format) DefaultOutput() string {
	switch f {
	case FormatTar:
		return "vendor.tar"
	case FormatTarGz:
		return "vendor.tar.gz"
	case FormatTarZstd:
		return "vendor.tar.zstd"
	default:
		return "vendor"
	}
}

// BuildOptions configure one archive build.
type BuildOptions struct {
	Format Format
	Prefix string               // optional path prefix prepended to every entry
	MTime  time.Time            // shared modification time for every entry
	Warnf  func(string, ...any) // sink for skipped-entry warnings (optional)
}

// Build archives srcDir into dest using the configured encoding. The archive
// is written to a uniquely named temporary file next to dest and renamed into
// place, so a failed build never leaves a half-written destination.
func Build(ctx context.Context, srcDir, dest string, opts BuildOptions) error {
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	tmp := dest + ".tmp-" + uuid.NewString()
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "creating archive %s", tmp)
	}
	defer os.Remove(tmp)

	switch opts.Format {
	case FormatTar:
		err = writeTar(f, srcDir, opts)
	case FormatTarGz:
		err = writeTarGz(f, srcDir, opts)
	case FormatTarZstd:
		err = writeTarZstd(ctx, f, srcDir, opts)
	default:
		err = errors.New(errors.ErrCodeConfig, "format %q is not an archive encoding", opts.Format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "renaming archive into place at %s", dest)
	}
	return nil
}

// writeTarGz wraps the tar stream in a gzip encoding with a zeroed header
// timestamp and a fixed compression level, keeping the output independent of
// the wall clock.
func writeTarGz(w io.Writer, srcDir string, opts BuildOptions) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "initializing gzip encoder")
	}
	gz.ModTime = time.Time{}
	if err := writeTar(gz, srcDir, opts); err != nil {
		return err
	}
	return gz.Close()
}

// writeTarZstd pipes the tar stream through the external zstd compressor.
func writeTarZstd(ctx context.Context, w io.Writer, srcDir string, opts BuildOptions) error {
	if _, err := exec.LookPath("zstd"); err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "zstd compressor not found")
	}

	cmd := exec.CommandContext(ctx, "zstd", "-q", "-")
	cmd.Stdout = w
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "starting zstd")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "starting zstd")
	}

	tarErr := writeTar(stdin, srcDir, opts)
	if cerr := stdin.Close(); tarErr == nil && cerr != nil {
		tarErr = errors.Wrap(errors.ErrCodeExternalTool, cerr, "writing to zstd")
	}
	if err := cmd.Wait(); err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err,
			"zstd: %s", strings.TrimSpace(errBuf.String()))
	}
	return tarErr
}

// archiveEntry is one filesystem entry scheduled for the tar stream.
type archiveEntry struct {
	rel  string // slash-separated path relative to the source root
	path string // absolute filesystem path
}

// writeTar emits the tar stream for srcDir. All entries are collected and
// sorted by full path before anything is written, so the byte stream never
// depends on directory enumeration order.
func writeTar(w io.Writer, srcDir string, opts BuildOptions) error {
	var files []archiveEntry
	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		files = append(files, archiveEntry{rel: filepath.ToSlash(rel), path: path})
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "walking %s", srcDir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	prefix := opts.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	tw := tar.NewWriter(w)
	mtime := opts.MTime.UTC().Truncate(time.Second)
	for _, entry := range files {
		if err := writeEntry(tw, entry, prefix, mtime, opts.Warnf); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "finalizing tar stream")
	}
	return nil
}

func writeEntry(tw *tar.Writer, entry archiveEntry, prefix string, mtime time.Time, warnf func(string, ...any)) error {
	info, err := os.Lstat(entry.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "inspecting %s", entry.path)
	}

	var link string
	switch {
	case info.Mode().IsRegular(), info.IsDir():
	case info.Mode()&os.ModeSymlink != 0:
		// Symlinks are archived as links, never followed.
		if link, err = os.Readlink(entry.path); err != nil {
			return errors.Wrap(errors.ErrCodeLayout, err, "reading symlink %s", entry.path)
		}
	default:
		warnf("skipping special file %s (%s)", entry.rel, info.Mode().Type())
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "building tar header for %s", entry.rel)
	}
	hdr.Name = prefix + entry.rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	hdr.Uid = 0
	hdr.Gid = 0
	hdr.Uname = ""
	hdr.Gname = ""
	hdr.ModTime = mtime
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}

	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "writing tar header for %s", entry.rel)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(entry.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "opening %s", entry.path)
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "archiving %s", entry.rel)
	}
	return nil
}
