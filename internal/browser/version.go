package browser

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

var versionPattern = regexp.MustCompile(`[a-zA-Z ]*?([\d.]+\d+)`)

// ParseVersion extracts the version number from the output of a browser
// binary invoked with --version. It returns an empty string if the output
// does not carry a version.
func ParseVersion(output string) string {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(output))
	if m == nil {
		return ""
	}

	return m[1]
}

// Version runs the browser binary with --version and returns the reported
// version. If the binary cannot be run, the error is returned.
func Version(ctx context.Context, binaryPath string) (string, error) {
	out, err := exec.CommandContext(ctx, binaryPath, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get version of %s: %w", binaryPath, err)
	}
	log.Debugf("version output of %s: %s", binaryPath, out)

	return ParseVersion(string(out)), nil
}
