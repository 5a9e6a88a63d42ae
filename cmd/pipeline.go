package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/kballard/go-shellquote"

	"github.com/revtrace/revtrace/internal/clipboard"
	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/index"
)

// load streams the full repository history and builds the index over it.
func load(provider gitrepo.Provider, includeMentioned bool) ([]*commit.Commit, *index.Index, error) {
	commits, err := commit.Collect(provider, commit.NewParser(includeMentioned))
	if err != nil {
		return nil, nil, fmt.Errorf("build the complete commit list from the repo: %w", err)
	}
	slog.Debug("collected repository history", slog.Int("commits", len(commits)))

	idx, err := index.Build(commits)
	if err != nil {
		return nil, nil, fmt.Errorf("build the commit index: %w", err)
	}
	return commits, idx, nil
}

// flattenPathSets splits each --path value on shell words and merges the
// results, so `--path "a b" --path c` and `--path a --path b --path c` mean
// the same thing.
func flattenPathSets(pathSets []string) ([]string, error) {
	var paths []string
	for _, pathSet := range pathSets {
		words, err := shellquote.Split(pathSet)
		if err != nil {
			return nil, fmt.Errorf("split path set %q: %w", pathSet, err)
		}
		paths = append(paths, words...)
	}
	sort.Strings(paths)
	return paths, nil
}

// upstreamRevspec qualifies bare branch names in the revspec with the remote
// that carries them, when --upstream is set.
func (opts *globalOptions) upstreamRevspec(provider gitrepo.Provider, revspec string) (string, error) {
	if !opts.upstream {
		return revspec, nil
	}
	database, err := gitrepo.BuildRemoteBranchDatabase(provider)
	if err != nil {
		return "", fmt.Errorf("build the remote branch database: %w", err)
	}
	qualified := gitrepo.UpstreamRevspec(database, revspec)
	if qualified != revspec {
		slog.Debug("qualified revspec with remote branches",
			slog.String("revspec", revspec),
			slog.String("qualified", qualified))
	}
	return qualified, nil
}

// output tees everything printed to stdout into a buffer so the full report
// can be copied to the clipboard afterwards.
type output struct {
	io.Writer
	captured bytes.Buffer
}

func newOutput() *output {
	out := &output{}
	out.Writer = io.MultiWriter(os.Stdout, &out.captured)
	return out
}

func (out *output) finish(copyToClipboard bool) error {
	if !copyToClipboard {
		return nil
	}
	if err := clipboard.Copy(out.captured.String()); err != nil {
		return fmt.Errorf("copy the output to the clipboard: %w", err)
	}
	fmt.Fprintln(os.Stderr, "\nNote: The output has been copied to the clipboard!")
	return nil
}
