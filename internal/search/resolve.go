// Package search walks the commit reference graph: it expands seed commits
// into inclusion forests, compares two forests, and locates the branches
// containing a result set.
package search

import (
	"fmt"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/index"
)

// Direction selects which reference edges to follow during expansion.
type Direction int

const (
	// Forward follows what a commit claims to merge or resolve.
	Forward Direction = iota
	// Backward follows what later commits claim to merge of this one.
	Backward
)

// IncludedCommit is one node of an inclusion forest: a commit plus the
// commits its references resolved to. It is a read-only view over the
// collection; nothing is copied.
type IncludedCommit struct {
	Commit *commit.Commit
	Linked []*IncludedCommit
}

// Options controls one resolution.
type Options struct {
	Direction Direction
	// OnlyLikelyMerges restricts expansion to edges whose target classifies
	// as a likely merge or cherry-pick, yielding just the migration skeleton
	// instead of every textual mention.
	OnlyLikelyMerges bool
}

// Resolve expands the seed commits into an inclusion forest.
//
// Every seed is marked visited before any expansion starts and is always
// emitted at the top level, so a direct query result can never be hidden as
// some other node's sub-entry. Each commit is expanded at most once; commits
// already visited are skipped, which keeps cycles and shared references from
// recursing forever or duplicating work.
func Resolve(idx *index.Index, seeds []*commit.Commit, opts Options) []*IncludedCommit {
	visited := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		visited[seed.Revision] = true
	}

	var expand func(c *commit.Commit) *IncludedCommit
	expand = func(c *commit.Commit) *IncludedCommit {
		node := &IncludedCommit{Commit: c}

		var refs []*commit.Commit
		if opts.Direction == Forward {
			refs = idx.ForwardReferences(c)
		} else {
			refs = idx.BackwardReferences(c)
		}
		for _, ref := range refs {
			if opts.OnlyLikelyMerges && !ref.LikelyMerge {
				continue
			}
			if visited[ref.Revision] {
				continue
			}
			visited[ref.Revision] = true
			node.Linked = append(node.Linked, expand(ref))
		}
		return node
	}

	forest := make([]*IncludedCommit, 0, len(seeds))
	emitted := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		if emitted[seed.Revision] {
			continue
		}
		emitted[seed.Revision] = true
		forest = append(forest, expand(seed))
	}
	return forest
}

// ByRevspec resolves the commits matched by a scoped history query into an
// inclusion forest.
func ByRevspec(idx *index.Index, provider gitrepo.Provider, revspec string, listOpts gitrepo.RevListOptions, opts Options) ([]*IncludedCommit, error) {
	revisions, err := provider.RevList(revspec, listOpts)
	if err != nil {
		return nil, fmt.Errorf("get the repo log: %w", err)
	}
	return ResolveRevisions(idx, revisions, opts)
}

// ResolveRevisions looks the revision ids up in the index and expands them
// into an inclusion forest.
func ResolveRevisions(idx *index.Index, revisions []string, opts Options) ([]*IncludedCommit, error) {
	seeds := make([]*commit.Commit, 0, len(revisions))
	for _, revision := range revisions {
		c, err := idx.LookupRevision(revision)
		if err != nil {
			// Scoped queries run against the same history the index was
			// built from, so every result should resolve.
			return nil, fmt.Errorf("search result %s is not in the index: %w", revision, err)
		}
		seeds = append(seeds, c)
	}
	return Resolve(idx, seeds, opts), nil
}

// DirectByTickets returns the commits that carry any of the given tickets,
// preserving collection order.
func DirectByTickets(commits []*commit.Commit, tickets []string) []*commit.Commit {
	wanted := make(map[string]bool, len(tickets))
	for _, ticket := range tickets {
		wanted[ticket] = true
	}
	var direct []*commit.Commit
	for _, c := range commits {
		for _, ticket := range c.Tickets {
			if wanted[ticket] {
				direct = append(direct, c)
				break
			}
		}
	}
	return direct
}

// Flatten returns the forest's commits in first-visit order.
func Flatten(forest []*IncludedCommit) []*commit.Commit {
	var commits []*commit.Commit
	var walk func(node *IncludedCommit)
	walk = func(node *IncludedCommit) {
		commits = append(commits, node.Commit)
		for _, linked := range node.Linked {
			walk(linked)
		}
	}
	for _, node := range forest {
		walk(node)
	}
	return commits
}
