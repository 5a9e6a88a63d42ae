package gitrepo

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// gitFeature ties a git behavior the CLI provider shells out to, to the git
// release that introduced it. The provider's version floor is the newest
// entry in the table, and a too-old installation is reported against the
// feature that set the floor.
type gitFeature struct {
	name       string
	introduced gitVersion
}

var requiredGitFeatures = []gitFeature{
	// Running every command in the target repository without chdir.
	{name: "git -C <path>", introduced: gitVersion{1, 8, 5}},
	// Machine-readable branch listings for branch containment and the
	// remote branch database.
	{name: "git branch --format=%(refname:short)", introduced: gitVersion{2, 13, 0}},
	// NUL-delimited full-history streaming.
	{name: "git log --pretty=tformat: with %x00", introduced: gitVersion{1, 8, 5}},
}

type gitVersion struct {
	major, minor, patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// checkGitFeatures reports the first required feature the installed git
// predates.
func checkGitFeatures(installed gitVersion) error {
	for _, feature := range requiredGitFeatures {
		if installed.less(feature.introduced) {
			return fmt.Errorf("git %s is too old for revtrace: `%s` needs git >= %s",
				installed, feature.name, feature.introduced)
		}
	}
	return nil
}

// gitVersionPattern pulls the numeric core out of outputs like
// "git version 2.39.3 (Apple Git-146)" or "git version 2.39.3.windows.1".
var gitVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

func parseGitVersionOutput(out string) (gitVersion, bool) {
	match := gitVersionPattern.FindStringSubmatch(out)
	if match == nil {
		return gitVersion{}, false
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return gitVersion{}, false
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return gitVersion{}, false
	}
	patch := 0
	if match[3] != "" {
		if patch, err = strconv.Atoi(match[3]); err != nil {
			return gitVersion{}, false
		}
	}
	return gitVersion{major: major, minor: minor, patch: patch}, true
}

// gitVersionOutput runs `git --version` once per process.
var gitVersionOutput = sync.OnceValues(func() (string, error) {
	outBytes, err := exec.Command("git", "--version").CombinedOutput()
	out := strings.TrimSpace(string(outBytes))
	if err != nil {
		if out != "" {
			return out, fmt.Errorf("git --version: %v: %s", err, out)
		}
		return "", fmt.Errorf("git --version: %w", err)
	}
	return out, nil
})

// GitVersion returns the raw `git --version` output.
func GitVersion() (string, error) {
	return gitVersionOutput()
}

var gitVersionGate = sync.OnceValue(func() error {
	out, err := gitVersionOutput()
	if err != nil {
		return err
	}
	installed, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", out)
	}
	return checkGitFeatures(installed)
})

func ensureMinGitVersion() error {
	return gitVersionGate()
}
