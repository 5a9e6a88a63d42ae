package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/search"
)

const (
	noTicketLabel     = "*No Jira Ticket*"
	likelyMergeMarker = " (M)"
)

// Renderer writes the human-readable report format. Wrap the writer in an
// io.MultiWriter to capture a copy of everything printed.
type Renderer struct {
	// HashLength is how many leading characters of each revision id to print.
	HashLength int
	// TicketPrefix is prepended to every ticket, e.g. a browse URL.
	TicketPrefix string
	// ShowCommits expands each ticket into its commit reference tree instead
	// of a bare count.
	ShowCommits bool

	w io.Writer
}

// NewRenderer returns a Renderer writing to w.
func NewRenderer(w io.Writer, hashLength int, ticketPrefix string, showCommits bool) *Renderer {
	return &Renderer{
		HashLength:   hashLength,
		TicketPrefix: ticketPrefix,
		ShowCommits:  showCommits,
		w:            w,
	}
}

// Printf writes a formatted line outside the structured sections, for the
// headers a subcommand prints about its own query.
func (r *Renderer) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.w, format, args...)
	return err
}

// TicketGroups writes a heading with the real-ticket count, then one entry
// per group.
func (r *Renderer) TicketGroups(heading string, groups []Group) error {
	if err := r.Printf("%s: (%d total)\n", heading, TicketCount(groups)); err != nil {
		return err
	}
	for _, group := range groups {
		if !r.ShowCommits {
			if err := r.Printf("- %s (%d)\n", r.ticketLabel(group.Ticket), len(group.Commits)); err != nil {
				return err
			}
			continue
		}
		if err := r.Printf("- %s:\n", r.ticketLabel(group.Ticket)); err != nil {
			return err
		}
		if err := r.CommitTree(group.Commits, 1); err != nil {
			return err
		}
	}
	return nil
}

// TicketGroupPairs writes the intersection section of a comparison, labeling
// each side with the reference it was resolved from.
func (r *Renderer) TicketGroupPairs(heading string, pairs []GroupPair, labelA, labelB string) error {
	if err := r.Printf("%s: (%d total)\n", heading, PairTicketCount(pairs)); err != nil {
		return err
	}
	for _, pair := range pairs {
		if !r.ShowCommits {
			err := r.Printf("- %s (%d : %d)\n", r.ticketLabel(pair.Ticket), len(pair.A), len(pair.B))
			if err != nil {
				return err
			}
			continue
		}
		if err := r.Printf("- %s:\n", r.ticketLabel(pair.Ticket)); err != nil {
			return err
		}
		if err := r.Printf("\t- On `%s`:\n", labelA); err != nil {
			return err
		}
		if err := r.CommitTree(pair.A, 2); err != nil {
			return err
		}
		if err := r.Printf("\t- On `%s`:\n", labelB); err != nil {
			return err
		}
		if err := r.CommitTree(pair.B, 2); err != nil {
			return err
		}
	}
	return nil
}

// CommitTree writes an inclusion forest as a nested bullet list, one level of
// indentation per reference hop.
func (r *Renderer) CommitTree(forest []*search.IncludedCommit, indent int) error {
	for _, node := range forest {
		if err := r.commitLine(node.Commit, indent); err != nil {
			return err
		}
		if err := r.CommitTree(node.Linked, indent+1); err != nil {
			return err
		}
	}
	return nil
}

// BranchSets writes the branch containment section of a ticket search.
func (r *Renderer) BranchSets(sets []search.BranchSet) error {
	if err := r.Printf("Results:\n"); err != nil {
		return err
	}
	for i, set := range sets {
		if err := r.Printf("- Set %d:\n\t- Commits:\n", i); err != nil {
			return err
		}
		for _, c := range set.Commits {
			if err := r.commitLine(c, 2); err != nil {
				return err
			}
		}
		if err := r.Printf("\t- Branches:\n"); err != nil {
			return err
		}
		for _, branch := range set.Branches {
			if err := r.Printf("\t\t- `%s`\n", branch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) commitLine(c *commit.Commit, indent int) error {
	marker := ""
	if c.LikelyMerge {
		marker = likelyMergeMarker
	}
	return r.Printf("%s- `%s`%s\n", strings.Repeat("\t", indent), r.truncate(c.Revision), marker)
}

func (r *Renderer) ticketLabel(ticket string) string {
	if ticket == "" {
		return noTicketLabel
	}
	return r.TicketPrefix + ticket
}

func (r *Renderer) truncate(revision string) string {
	if r.HashLength <= 0 || r.HashLength >= len(revision) {
		return revision
	}
	return revision[:r.HashLength]
}
