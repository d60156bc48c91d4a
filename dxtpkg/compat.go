package dxtpkg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// UnsupportedPlatformError reports that the current platform isn't in the
// manifest's declared platforms list.
type UnsupportedPlatformError struct{ Supported []string }

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("dxtpkg: unsupported platform (supported: %s)", strings.Join(e.Supported, ", "))
}

// RuntimeNotInstalledError reports that a declared runtime could not be
// located on PATH.
type RuntimeNotInstalledError struct{ Runtime string }

func (e *RuntimeNotInstalledError) Error() string {
	return fmt.Sprintf("dxtpkg: runtime not installed: %s", e.Runtime)
}

// RuntimeVersionMismatchError reports that the installed runtime version
// does not satisfy the manifest's semver requirement.
type RuntimeVersionMismatchError struct {
	Runtime, Required, Installed string
}

func (e *RuntimeVersionMismatchError) Error() string {
	return fmt.Sprintf("dxtpkg: runtime %s version %s does not satisfy %s", e.Runtime, e.Installed, e.Required)
}

// runtimeAliases lists alternative executable names to probe for a runtime,
// per spec §4.5 ("python" <-> "python3").
var runtimeAliases = map[string][]string{
	"python": {"python", "python3"},
	"node":   {"node", "nodejs"},
}

// CurrentPlatform returns the platform identifier validated against a
// manifest's compatibility.platforms list ("darwin", "linux", "win32").
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	default:
		return runtime.GOOS
	}
}

// ValidateCompatibility checks platform, runtime and host-application
// constraints declared in compat, per spec §4.5 step 3.
func ValidateCompatibility(ctx context.Context, compat *Compatibility, hostAppVersion string) error {
	if compat == nil {
		return nil
	}

	if len(compat.Platforms) > 0 {
		platform := CurrentPlatform()
		found := false
		for _, p := range compat.Platforms {
			if p == platform {
				found = true
				break
			}
		}
		if !found {
			return &UnsupportedPlatformError{Supported: compat.Platforms}
		}
	}

	for runtimeName, constraint := range compat.Runtimes {
		if err := validateRuntimeVersion(ctx, runtimeName, constraint); err != nil {
			return err
		}
	}

	if compat.Context != "" && hostAppVersion != "" {
		c, err := semver.NewConstraint(compat.Context)
		if err == nil {
			v, verr := semver.NewVersion(hostAppVersion)
			if verr == nil && !c.Check(v) {
				return &RuntimeVersionMismatchError{Runtime: "host", Required: compat.Context, Installed: hostAppVersion}
			}
		}
	}

	return nil
}

var semverToken = regexp.MustCompile(`\d+\.\d+(\.\d+)?(-[0-9A-Za-z.-]+)?`)

func validateRuntimeVersion(ctx context.Context, runtimeName, constraintStr string) error {
	names := runtimeAliases[runtimeName]
	if len(names) == 0 {
		names = []string{runtimeName}
	}

	var lastErr error
	for _, name := range names {
		version, err := probeRuntimeVersion(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}
		if constraintStr == "" {
			return nil
		}
		constraint, err := semver.NewConstraint(constraintStr)
		if err != nil {
			return fmt.Errorf("dxtpkg: invalid runtime constraint %q: %w", constraintStr, err)
		}
		parsed, err := semver.NewVersion(version)
		if err != nil {
			return fmt.Errorf("dxtpkg: could not parse %s version %q: %w", runtimeName, version, err)
		}
		if !constraint.Check(parsed) {
			return &RuntimeVersionMismatchError{Runtime: runtimeName, Required: constraintStr, Installed: version}
		}
		return nil
	}
	if lastErr != nil {
		return &RuntimeNotInstalledError{Runtime: runtimeName}
	}
	return nil
}

// probeRuntimeVersion runs "<name> --version" and extracts the first
// semver-like token from combined stdout/stderr.
func probeRuntimeVersion(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("dxtpkg: probing %s: %w", name, err)
	}
	token := semverToken.FindString(string(out))
	if token == "" {
		return "", fmt.Errorf("dxtpkg: could not find a version in %s --version output", name)
	}
	if strings.Count(token, ".") == 1 {
		token += ".0"
	}
	return token, nil
}
