package cmd

import (
	"github.com/spf13/cobra"

	"github.com/revtrace/revtrace/internal/report"
	"github.com/revtrace/revtrace/internal/search"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search TICKET...",
		Short: "Find every place a ticket's commits were merged to",
		Long: `Search finds the commits that carry the given tickets, follows the
back-references to every commit that merged or cherry-picked them elsewhere,
and reports which branches contain which subset of the results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args)
		},
	}
	return cmd
}

func runSearch(opts *globalOptions, tickets []string) error {
	out := newOutput()
	r := report.NewRenderer(out, opts.hashLength, opts.ticketPrefix, true)

	if err := r.Printf("Searching for all locations where any commits were merged for the following:\n"); err != nil {
		return err
	}
	for _, ticket := range tickets {
		if err := r.Printf("- %s%s\n", opts.ticketPrefix, ticket); err != nil {
			return err
		}
	}
	if err := r.Printf("\n"); err != nil {
		return err
	}

	provider, err := opts.openProvider()
	if err != nil {
		return err
	}
	commits, idx, err := load(provider, opts.includeMentioned)
	if err != nil {
		return err
	}

	direct := search.DirectByTickets(commits, tickets)
	forest := search.Resolve(idx, direct, search.Options{
		Direction:        search.Backward,
		OnlyLikelyMerges: true,
	})

	if err := r.Printf("Commit list being searched, with commits that merge them elsewhere as sub-entries:\n"); err != nil {
		return err
	}
	if err := r.CommitTree(forest, 0); err != nil {
		return err
	}
	if err := r.Printf("\n"); err != nil {
		return err
	}

	sets, err := search.LocateBranches(provider, search.Flatten(forest))
	if err != nil {
		return err
	}
	if err := r.BranchSets(sets); err != nil {
		return err
	}
	return out.finish(opts.copyToClipboard)
}
