package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// envBinPath overrides binary resolution; it matches the driver's
// PHASMA_PHANTOMJS option so both layers agree on the binary.
const envBinPath = "PHASMA_PHANTOMJS"

// InstallRoot returns the directory installs are placed under,
// ~/.phasma by default.
func InstallRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".phasma"), nil
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "phantomjs.exe"
	}
	return "phantomjs"
}

// DefaultBinaryPath returns where an installed engine binary lives:
// <install root>/phantomjs/bin/phantomjs.
func DefaultBinaryPath() (string, error) {
	root, err := InstallRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "phantomjs", "bin", binaryName()), nil
}

// Locate resolves the engine binary to spawn. Resolution order: the
// explicit path if given, the PHASMA_PHANTOMJS environment variable, a
// $PATH lookup, and finally the default install location. The resolved
// binary is marked executable when the bit is missing (archives do not
// always preserve it).
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("engine binary %s not found: %w", explicit, err)
		}
		return explicit, ensureExecutable(explicit)
	}

	if fromEnv := os.Getenv(envBinPath); fromEnv != "" {
		if _, err := os.Stat(fromEnv); err != nil {
			return "", fmt.Errorf("engine binary %s from %s not found: %w", fromEnv, envBinPath, err)
		}
		return fromEnv, ensureExecutable(fromEnv)
	}

	if fromPath, err := exec.LookPath("phantomjs"); err == nil {
		return fromPath, nil
	}

	installed, err := DefaultBinaryPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(installed); err != nil {
		return "", fmt.Errorf("no engine binary found; run `phasma driver install` or set %s", envBinPath)
	}
	return installed, ensureExecutable(installed)
}

// ensureExecutable sets the executable bits if missing. Best effort: a
// chmod failure on a binary we can still exec is not fatal.
func ensureExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode()&0o111 != 0 {
		return nil
	}
	if err := os.Chmod(path, info.Mode()|0o755); err != nil {
		return fmt.Errorf("failed to mark %s executable: %w", path, err)
	}
	return nil
}
