// Package cmd wires the revtrace subcommands together.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/revtrace/revtrace/internal/buildinfo"
	"github.com/revtrace/revtrace/internal/gitrepo"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	repoPath         string
	hashLength       int
	ticketPrefix     string
	copyToClipboard  bool
	includeMentioned bool
	native           bool
	upstream         bool
	verbose          bool
}

func Run() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "revtrace",
		Short: "Trace tickets, merges and SVN revisions through a git repository's history",
		Long: `revtrace reads the complete history of a git repository (typically one
converted from SVN by git-svn with --metadata), parses the ticket, commit and
SVN revision references out of every commit message, and answers questions
like "which tickets are on this branch but not that one" or "where was this
ticket's work merged to".`,
		Version:       buildinfo.Describe(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.repoPath, "repo", ".", "path to the git repository to read from")
	flags.IntVar(&opts.hashLength, "hash-length", 8, "how many characters of each revision id to display")
	flags.StringVar(&opts.ticketPrefix, "ticket-prefix", "", "string prepended to every displayed ticket, e.g. a browse URL")
	flags.BoolVar(&opts.copyToClipboard, "copy", false, "copy the output to the clipboard")
	flags.BoolVar(&opts.includeMentioned, "include-mentioned", false, "associate commits with tickets mentioned anywhere in the message, not just the start")
	flags.BoolVar(&opts.native, "native", false, "read the repository with the built-in git implementation instead of the git executable")
	flags.BoolVar(&opts.upstream, "upstream", false, "qualify bare branch names in revspecs with the remote that carries them")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newListCmd(opts),
		newCompareCmd(opts),
		newSearchCmd(opts),
		newRevmapCmd(opts),
	)
	return root
}

func (opts *globalOptions) openProvider() (gitrepo.Provider, error) {
	if opts.native {
		return gitrepo.OpenNative(opts.repoPath)
	}
	return gitrepo.OpenCLI(opts.repoPath)
}
