package engine

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/entrhq/phasma/pkg/logging"
)

// InstallOptions configures an engine install.
type InstallOptions struct {
	// Dir is the install root. Defaults to ~/.phasma; the binary lands
	// at <Dir>/phantomjs/bin/phantomjs.
	Dir string

	// Version selects a manifest entry. Defaults to the manifest's
	// default version.
	Version string

	// OS and Arch override platform detection (GOOS/GOARCH values).
	OS   string
	Arch string

	// Force reinstalls over an existing installation.
	Force bool

	// BaseURL overrides the manifest's download base, for mirrors.
	BaseURL string

	Logger *logging.Logger
}

// Install downloads, verifies and extracts the engine release for the
// target platform and returns the path to the installed binary. An
// existing installation is reused unless Force is set.
func Install(ctx context.Context, opts InstallOptions) (string, error) {
	m, err := LoadManifest()
	if err != nil {
		return "", err
	}
	return install(ctx, m, opts)
}

func install(ctx context.Context, m *Manifest, opts InstallOptions) (string, error) {
	if opts.OS == "" {
		opts.OS = runtime.GOOS
	}
	if opts.Arch == "" {
		opts.Arch = hostArch(opts.OS)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Dir == "" {
		root, err := InstallRoot()
		if err != nil {
			return "", err
		}
		opts.Dir = root
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = m.BaseURL
	}

	rel, err := m.Find(opts.OS, opts.Arch, opts.Version)
	if err != nil {
		return "", err
	}

	target := filepath.Join(opts.Dir, "phantomjs")
	binary := filepath.Join(target, "bin", binaryName())

	if _, err := os.Stat(target); err == nil {
		if !opts.Force {
			opts.Logger.Infof("engine already installed at %s", target)
			return binary, ensureExecutable(binary)
		}
		if err := os.RemoveAll(target); err != nil {
			return "", fmt.Errorf("failed to remove existing installation %s: %w", target, err)
		}
	}

	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create install directory %s: %w", opts.Dir, err)
	}

	url := rel.URL(baseURL)
	archivePath := filepath.Join(opts.Dir, rel.Archive)
	opts.Logger.Infof("downloading %s to %s", url, archivePath)
	if err := downloadArchive(ctx, url, archivePath, rel.SHA256); err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	opts.Logger.Infof("extracting %s", rel.Archive)
	if err := extractArchive(archivePath, opts.Dir); err != nil {
		return "", err
	}

	// Archives unpack to phantomjs-<version>-<platform>/; normalize to
	// a stable directory name so callers never care about the version.
	extracted := filepath.Join(opts.Dir, stripArchiveSuffix(rel.Archive))
	if extracted != target {
		if err := os.Rename(extracted, target); err != nil {
			return "", fmt.Errorf("failed to move %s into place: %w", extracted, err)
		}
	}

	if err := ensureExecutable(binary); err != nil {
		return "", err
	}
	opts.Logger.Infof("engine installed at %s", binary)
	return binary, nil
}

// hostArch maps the running platform to a manifest arch. Apple silicon
// runs the amd64 build under Rosetta; there is no native arm build.
func hostArch(osName string) string {
	if osName == "darwin" && runtime.GOARCH == "arm64" {
		return "amd64"
	}
	return runtime.GOARCH
}

func stripArchiveSuffix(name string) string {
	for _, suffix := range []string{".tar.bz2", ".zip"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// downloadArchive fetches url into dst, verifying its SHA-256 along the
// way. A checksum mismatch removes the file and fails.
func downloadArchive(ctx context.Context, url, dst, wantSHA string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	hash := sha256.New()
	_, copyErr := io.Copy(io.MultiWriter(f, hash), resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to download %s: %w", url, copyErr)
	}
	if closeErr != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to write %s: %w", dst, closeErr)
	}

	if got := hex.EncodeToString(hash.Sum(nil)); got != wantSHA {
		os.Remove(dst)
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filepath.Base(dst), got, wantSHA)
	}
	return nil
}

func extractArchive(archive, dst string) error {
	switch {
	case strings.HasSuffix(archive, ".zip"):
		return extractZip(archive, dst)
	case strings.HasSuffix(archive, ".tar.bz2"):
		f, err := os.Open(archive)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", archive, err)
		}
		defer f.Close()
		return extractTar(bzip2.NewReader(f), dst)
	default:
		return fmt.Errorf("unknown archive format: %s", filepath.Base(archive))
	}
}

func extractZip(archive, dst string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archive, err)
	}
	defer r.Close()

	for _, f := range r.File {
		path, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o750); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		if err := writeFile(path, src, f.Mode()); err != nil {
			src.Close()
			return err
		}
		src.Close()
	}
	return nil
}

// extractTar unpacks an uncompressed tar stream. The .tar.bz2 archives
// are fed through a bzip2 reader first.
func extractTar(r io.Reader, dst string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		path, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return err
			}
			if err := writeFile(path, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return err
			}
			os.Remove(path)
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, src io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins an archive entry name under dst and rejects entries
// that would escape it.
func safeJoin(dst, name string) (string, error) {
	path := filepath.Join(dst, name)
	if path != filepath.Clean(dst) && !strings.HasPrefix(path, filepath.Clean(dst)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return path, nil
}
