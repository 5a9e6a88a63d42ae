package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revtrace/revtrace/internal/report"
)

func newRevmapCmd(opts *globalOptions) *cobra.Command {
	var binaryPath, markdownPath string
	cmd := &cobra.Command{
		Use:   "revmap",
		Short: "Write the SVN-to-git revision map to disk",
		Long: `Revmap extracts the git-svn-id metadata from every commit and writes the
resulting SVN-to-git revision table, sorted by SVN revision number. The binary
format matches git-svn's .rev_map files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevmap(opts, binaryPath, markdownPath)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&binaryPath, "binary", "", "write the revision map to a binary file at this path")
	flags.StringVar(&markdownPath, "markdown", "", "write the revision map to a markdown file at this path")
	return cmd
}

func runRevmap(opts *globalOptions, binaryPath, markdownPath string) error {
	if binaryPath == "" && markdownPath == "" {
		return errors.New("at least one of --binary or --markdown is required")
	}

	provider, err := opts.openProvider()
	if err != nil {
		return err
	}
	_, idx, err := load(provider, false)
	if err != nil {
		return err
	}
	mappings := idx.SVNMappings()

	if binaryPath != "" {
		err := writeFile(binaryPath, func(f *os.File) error {
			return report.WriteRevmapBinary(f, mappings)
		})
		if err != nil {
			return fmt.Errorf("write the revision map to binary: %w", err)
		}
	}
	if markdownPath != "" {
		err := writeFile(markdownPath, func(f *os.File) error {
			return report.WriteRevmapMarkdown(f, mappings, opts.hashLength)
		})
		if err != nil {
			return fmt.Errorf("write the revision map to markdown: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
