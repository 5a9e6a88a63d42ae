package cmd

import (
	"github.com/spf13/cobra"

	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/report"
	"github.com/revtrace/revtrace/internal/search"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		pathSets            []string
		includeMergeCommits bool
		showCommits         bool
	)
	cmd := &cobra.Command{
		Use:   "list REVSPEC",
		Short: "List the tickets reachable from a revspec, grouped by ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], pathSets, includeMergeCommits, showCommits)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&pathSets, "path", nil, "only consider commits that affected these paths (shell-word split, repeatable)")
	flags.BoolVar(&includeMergeCommits, "include-merge-commits", false, "keep structural merge commits in the result")
	flags.BoolVar(&showCommits, "show-commits", false, "expand each ticket into its commit reference tree")
	return cmd
}

func runList(opts *globalOptions, revspec string, pathSets []string, includeMergeCommits, showCommits bool) error {
	out := newOutput()
	r := report.NewRenderer(out, opts.hashLength, opts.ticketPrefix, showCommits)

	if err := r.Printf("Using the following revspec: `%s`\n", revspec); err != nil {
		return err
	}
	paths, err := flattenPathSets(pathSets)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		if err := r.Printf("Only considering commits that affected the following filepaths:\n"); err != nil {
			return err
		}
		for _, path := range paths {
			if err := r.Printf("- `%s`\n", path); err != nil {
				return err
			}
		}
	}

	provider, err := opts.openProvider()
	if err != nil {
		return err
	}
	_, idx, err := load(provider, opts.includeMentioned)
	if err != nil {
		return err
	}

	revspec, err = opts.upstreamRevspec(provider, revspec)
	if err != nil {
		return err
	}
	results, err := search.ByRevspec(idx, provider, revspec, gitrepo.RevListOptions{
		IncludeMerges: includeMergeCommits,
		Paths:         paths,
	}, search.Options{Direction: search.Forward})
	if err != nil {
		return err
	}

	if err := r.Printf("\n"); err != nil {
		return err
	}
	if err := r.TicketGroups("Jira tickets", report.GroupByTicket(results)); err != nil {
		return err
	}
	return out.finish(opts.copyToClipboard)
}
