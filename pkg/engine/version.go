package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Version runs the engine binary with --version and returns the trimmed
// output, e.g. "2.1.1".
func Version(ctx context.Context, binPath string) (string, error) {
	cmd := exec.CommandContext(ctx, binPath, "--version")
	// PhantomJS crashes on modern OpenSSL configs; neutralize the same
	// way the driver does when spawning sessions.
	cmd.Env = append(os.Environ(), "OPENSSL_CONF=")

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", binPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}
