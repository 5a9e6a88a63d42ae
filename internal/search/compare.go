package search

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/index"
)

// CompareByRevspecs runs the two exclusion searches of a comparison. The
// provider is queried one revspec at a time; providers are not required to
// support concurrent history walks (go-git's object storage in particular is
// not goroutine-safe). Only the expansion over the read-only index runs
// concurrently.
func CompareByRevspecs(idx *index.Index, provider gitrepo.Provider, revspecA, revspecB string,
	listOpts gitrepo.RevListOptions, opts Options) (a, b []*IncludedCommit, err error) {
	revisionsA, err := provider.RevList(revspecA, listOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("get the repo log for `%s`: %w", revspecA, err)
	}
	revisionsB, err := provider.RevList(revspecB, listOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("get the repo log for `%s`: %w", revspecB, err)
	}

	var group errgroup.Group
	group.Go(func() error {
		forest, err := ResolveRevisions(idx, revisionsA, opts)
		if err != nil {
			return err
		}
		a = forest
		return nil
	})
	group.Go(func() error {
		forest, err := ResolveRevisions(idx, revisionsB, opts)
		if err != nil {
			return err
		}
		b = forest
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Deduplicate removes heuristically identified cross-set cherry-picks from a
// pair of independently resolved forests. When a likely-merge commit in one
// set has a linked child that also appears at the other set's top level, the
// child is removed from the other set: it is almost certainly the original of
// a cherry-pick whose copy is the merge commit.
//
// The cleanup is bounded to three passes: mark removals from B while scanning
// A, filter B while marking removals from A, then filter A. Nested
// cherry-picks (a cherry-pick of a cherry-pick) are not covered; they
// basically never happen.
func Deduplicate(a, b []*IncludedCommit) (outA, outB []*IncludedCommit) {
	aTop := topLevelRevisions(a)
	bTop := topLevelRevisions(b)
	removeFromA := make(map[string]bool)
	removeFromB := make(map[string]bool)

	for _, node := range a {
		if !node.Commit.LikelyMerge {
			continue
		}
		for _, child := range node.Linked {
			if bTop[child.Commit.Revision] {
				removeFromB[child.Commit.Revision] = true
			}
		}
	}

	outB = make([]*IncludedCommit, 0, len(b))
	for _, node := range b {
		if removeFromB[node.Commit.Revision] {
			continue
		}
		outB = append(outB, node)
		if !node.Commit.LikelyMerge {
			continue
		}
		for _, child := range node.Linked {
			if aTop[child.Commit.Revision] {
				removeFromA[child.Commit.Revision] = true
			}
		}
	}

	outA = make([]*IncludedCommit, 0, len(a))
	for _, node := range a {
		if removeFromA[node.Commit.Revision] {
			continue
		}
		outA = append(outA, node)
	}
	return outA, outB
}

func topLevelRevisions(forest []*IncludedCommit) map[string]bool {
	revisions := make(map[string]bool, len(forest))
	for _, node := range forest {
		revisions[node.Commit.Revision] = true
	}
	return revisions
}
