package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/report"
	"github.com/revtrace/revtrace/internal/search"
)

func newCompareCmd(opts *globalOptions) *cobra.Command {
	var (
		pathSets            []string
		includeMergeCommits bool
		includeCherryPicks  bool
		showCommits         bool
	)
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Compare the tickets reachable from two references",
		Long: `Compare resolves the commits reachable only from A, and the commits
reachable only from B, then reports which tickets are unique to each side and
which appear on both. Cherry-picks between the two sides are filtered out
unless --include-cherry-picks is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args[0], args[1], pathSets,
				includeMergeCommits, includeCherryPicks, showCommits)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&pathSets, "path", nil, "only consider commits that affected these paths (shell-word split, repeatable)")
	flags.BoolVar(&includeMergeCommits, "include-merge-commits", false, "keep structural merge commits in the results")
	flags.BoolVar(&includeCherryPicks, "include-cherry-picks", false, "keep commits that were cherry-picked or merged to the other side")
	flags.BoolVar(&showCommits, "show-commits", false, "expand each ticket into its commit reference tree")
	return cmd
}

func runCompare(opts *globalOptions, objectA, objectB string, pathSets []string,
	includeMergeCommits, includeCherryPicks, showCommits bool) error {
	out := newOutput()
	r := report.NewRenderer(out, opts.hashLength, opts.ticketPrefix, showCommits)

	if err := r.Printf("Comparing the following two references: `%s` against `%s`\n", objectA, objectB); err != nil {
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

	refA, err := opts.upstreamRevspec(provider, objectA)
	if err != nil {
		return err
	}
	refB, err := opts.upstreamRevspec(provider, objectB)
	if err != nil {
		return err
	}

	// The `A ^B` syntax matches the commits reachable from A that are not
	// reachable from B.
	listOpts := gitrepo.RevListOptions{IncludeMerges: includeMergeCommits, Paths: paths}
	onlyOnA, onlyOnB, err := search.CompareByRevspecs(idx, provider,
		fmt.Sprintf("%s ^%s", refA, refB), fmt.Sprintf("%s ^%s", refB, refA),
		listOpts, search.Options{Direction: search.Forward})
	if err != nil {
		return fmt.Errorf("compare `%s` against `%s`: %w", objectA, objectB, err)
	}

	if !includeCherryPicks {
		onlyOnA, onlyOnB = search.Deduplicate(onlyOnA, onlyOnB)
	}

	cmp := report.Intersect(report.GroupByTicket(onlyOnA), report.GroupByTicket(onlyOnB))

	if err := r.Printf("\n"); err != nil {
		return err
	}
	heading := fmt.Sprintf("Jira tickets only on `%s`", objectA)
	if err := r.TicketGroups(heading, cmp.OnlyA); err != nil {
		return err
	}
	if err := r.Printf("\n"); err != nil {
		return err
	}
	heading = fmt.Sprintf("Jira tickets only on `%s`", objectB)
	if err := r.TicketGroups(heading, cmp.OnlyB); err != nil {
		return err
	}
	if err := r.Printf("\n"); err != nil {
		return err
	}
	heading = fmt.Sprintf("Jira tickets on both `%s` and `%s`", objectA, objectB)
	if err := r.TicketGroupPairs(heading, cmp.Both, objectA, objectB); err != nil {
		return err
	}
	return out.finish(opts.copyToClipboard)
}
