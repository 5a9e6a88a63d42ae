package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type gitCLI struct {
	path string
}

// OpenCLI opens the repository at repoPath using the git executable.
func OpenCLI(repoPath string) (Provider, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	if version, err := GitVersion(); err == nil {
		slog.Debug("using git executable", slog.String("version", version))
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	tmp := &gitCLI{path: abs}
	root, err := tmp.runGitCommand([]string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return &gitCLI{path: root}, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.path
}

func (g *gitCLI) runGitCommand(args []string, allowExit1 bool, context string) (string, error) {
	if g == nil || g.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path}, args...)
	cmd := exec.Command("git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// exit code 1 without stderr is how some git subcommands signal
			// an empty result rather than a failure
		} else {
			if stderr.Len() > 0 {
				return "", fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
			}
			return "", fmt.Errorf("%s: %w", context, err)
		}
	}
	if !utf8.Valid(stdout.Bytes()) {
		return "", fmt.Errorf("%s: output is not valid UTF-8", context)
	}
	return stdout.String(), nil
}

func (g *gitCLI) RevList(revspec string, opts RevListOptions) ([]string, error) {
	revspec = strings.TrimSpace(revspec)
	if revspec == "" {
		return nil, fmt.Errorf("revspec not specified")
	}
	args := []string{"log", "--pretty=format:%H"}
	if !opts.IncludeMerges {
		args = append(args, "--no-merges")
	}
	args = append(args, strings.Fields(revspec)...)
	if len(opts.Paths) > 0 {
		// the separator keeps git from treating paths as revisions
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}
	out, err := g.runGitCommand(args, false, "git log")
	if err != nil {
		return nil, err
	}
	var revisions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		revisions = append(revisions, line)
	}
	return revisions, nil
}

func (g *gitCLI) BranchesContaining(revision string) ([]string, error) {
	revision = strings.TrimSpace(revision)
	if revision == "" {
		return nil, fmt.Errorf("revision not specified")
	}
	out, err := g.runGitCommand(
		[]string{"branch", "--all", "--format=%(refname:short)", "--contains", revision},
		false,
		"git branch --contains",
	)
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "HEAD") {
			continue
		}
		branches = append(branches, line)
	}
	return branches, nil
}

func (g *gitCLI) Remotes() ([]string, error) {
	out, err := g.runGitCommand([]string{"remote"}, false, "git remote")
	if err != nil {
		return nil, err
	}
	var remotes []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		remotes = append(remotes, line)
	}
	return remotes, nil
}

func (g *gitCLI) RemoteBranches() ([]string, error) {
	out, err := g.runGitCommand(
		[]string{"branch", "--list", "--remotes"},
		false,
		"git branch --remotes",
	)
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		branches = append(branches, line)
	}
	return branches, nil
}
